package kalyna

import "github.com/Qwertymart/aes-kalyna/gf"

// Максимальное число 64-битных слов в блоке (512 бит).
const maxNb = 8

var (
	invSBoxes [4][256]byte

	// mdsMul[k][x] = x * mdsRow[k] в GF(2^8)
	mdsMul    [8][256]byte
	invMDSMul [8][256]byte
)

func init() {
	for t := range sBoxes {
		for i, v := range sBoxes[t] {
			invSBoxes[t][v] = byte(i)
		}
	}

	for k := 0; k < 8; k++ {
		for x := 0; x < 256; x++ {
			mdsMul[k][x] = gf.Mul(byte(x), mdsRow[k], gf.KalynaModulus)
			invMDSMul[k][x] = gf.Mul(byte(x), invMDSRow[k], gf.KalynaModulus)
		}
	}
}

// at возвращает индекс байта строки row столбца col: столбец - это
// одно 64-битное слово.
func at(row, col int) int {
	return row + col*8
}

func subBytes(s []byte, boxes *[4][256]byte) {
	for i := range s {
		s[i] = boxes[i%4][s[i]]
	}
}

// shiftRows циклически сдвигает строку row вправо на row*nb/8 столбцов.
func shiftRows(dst, src []byte, nb int) {
	for row := 0; row < 8; row++ {
		shift := row * nb / 8
		for col := 0; col < nb; col++ {
			dst[at(row, (col+shift)%nb)] = src[at(row, col)]
		}
	}
}

func invShiftRows(dst, src []byte, nb int) {
	for row := 0; row < 8; row++ {
		shift := row * nb / 8
		for col := 0; col < nb; col++ {
			dst[at(row, col)] = src[at(row, (col+shift)%nb)]
		}
	}
}

// mixColumns умножает каждый столбец на циркулянтную матрицу, заданную
// таблицами умножения ее первой строки.
func mixColumns(dst, src []byte, nb int, mul *[8][256]byte) {
	for col := 0; col < nb; col++ {
		for row := 0; row < 8; row++ {
			var product byte
			for k := 0; k < 8; k++ {
				product ^= mul[(k-row)&7][src[at(k, col)]]
			}
			dst[at(row, col)] = product
		}
	}
}

// encipherRound: S-блоки, сдвиг строк, перемешивание столбцов.
func encipherRound(s []uint64) {
	nb := len(s)
	var a, b [maxNb * 8]byte
	bytesA, bytesB := a[:nb*8], b[:nb*8]

	wordsToBytes(bytesA, s)
	subBytes(bytesA, &sBoxes)
	shiftRows(bytesB, bytesA, nb)
	mixColumns(bytesA, bytesB, nb, &mdsMul)
	bytesToWords(s, bytesA)
}

func decipherRound(s []uint64) {
	nb := len(s)
	var a, b [maxNb * 8]byte
	bytesA, bytesB := a[:nb*8], b[:nb*8]

	wordsToBytes(bytesA, s)
	mixColumns(bytesB, bytesA, nb, &invMDSMul)
	invShiftRows(bytesA, bytesB, nb)
	subBytes(bytesA, &invSBoxes)
	bytesToWords(s, bytesA)
}

// Внесение ключа: сложение и вычитание по модулю 2^64 пословно либо XOR.

func addKey(s, k []uint64) {
	for i := range s {
		s[i] += k[i]
	}
}

func subKey(s, k []uint64) {
	for i := range s {
		s[i] -= k[i]
	}
}

func xorKey(s, k []uint64) {
	for i := range s {
		s[i] ^= k[i]
	}
}

// rotateWords циклически сдвигает слова влево на одну позицию.
func rotateWords(w []uint64) {
	first := w[0]
	copy(w, w[1:])
	w[len(w)-1] = first
}

// shiftLeft сдвигает каждое слово влево на один бит.
func shiftLeft(w []uint64) {
	for i := range w {
		w[i] <<= 1
	}
}

// rotateBytesLeft циклически сдвигает байтовое представление слов
// влево на n байт.
func rotateBytesLeft(w []uint64, n int) {
	var buf, rotated [maxNb * 8]byte
	size := len(w) * 8
	wordsToBytes(buf[:size], w)
	n %= size
	copy(rotated[:], buf[n:size])
	copy(rotated[size-n:], buf[:n])
	bytesToWords(w, rotated[:size])
}
