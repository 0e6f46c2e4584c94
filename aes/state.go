package aes

import "github.com/Qwertymart/aes-kalyna/gf"

// state - блок 4xNb байт, хранимый по столбцам: байт строки row
// столбца col лежит в позиции at(row, col). Такой порядок совпадает
// с порядком байтов входного блока.
type state [BlockSize]byte

func at(row, col int) int {
	return row + 4*col
}

func (s *state) addRoundKey(key *state) {
	for i := range s {
		s[i] ^= key[i]
	}
}

func (s *state) subBytes() {
	for i := range s {
		s[i] = sBox[s[i]]
	}
}

func (s *state) invSubBytes() {
	for i := range s {
		s[i] = invSBox[s[i]]
	}
}

// shiftRows сдвигает строку row циклически влево на row позиций.
func (s *state) shiftRows() {
	old := *s
	for row := 1; row < 4; row++ {
		for col := 0; col < nb; col++ {
			s[at(row, col)] = old[at(row, (col+row)%nb)]
		}
	}
}

func (s *state) invShiftRows() {
	old := *s
	for row := 1; row < 4; row++ {
		for col := 0; col < nb; col++ {
			s[at(row, (col+row)%nb)] = old[at(row, col)]
		}
	}
}

func (s *state) mixColumns() {
	for col := 0; col < nb; col++ {
		a0, a1, a2, a3 := s[at(0, col)], s[at(1, col)], s[at(2, col)], s[at(3, col)]

		s[at(0, col)] = gfMul(0x02, a0) ^ gfMul(0x03, a1) ^ a2 ^ a3
		s[at(1, col)] = a0 ^ gfMul(0x02, a1) ^ gfMul(0x03, a2) ^ a3
		s[at(2, col)] = a0 ^ a1 ^ gfMul(0x02, a2) ^ gfMul(0x03, a3)
		s[at(3, col)] = gfMul(0x03, a0) ^ a1 ^ a2 ^ gfMul(0x02, a3)
	}
}

func (s *state) invMixColumns() {
	for col := 0; col < nb; col++ {
		a0, a1, a2, a3 := s[at(0, col)], s[at(1, col)], s[at(2, col)], s[at(3, col)]

		s[at(0, col)] = gfMul(0x0E, a0) ^ gfMul(0x0B, a1) ^ gfMul(0x0D, a2) ^ gfMul(0x09, a3)
		s[at(1, col)] = gfMul(0x09, a0) ^ gfMul(0x0E, a1) ^ gfMul(0x0B, a2) ^ gfMul(0x0D, a3)
		s[at(2, col)] = gfMul(0x0D, a0) ^ gfMul(0x09, a1) ^ gfMul(0x0E, a2) ^ gfMul(0x0B, a3)
		s[at(3, col)] = gfMul(0x0B, a0) ^ gfMul(0x0D, a1) ^ gfMul(0x09, a2) ^ gfMul(0x0E, a3)
	}
}

func gfMul(a, b byte) byte {
	return gf.Mul(a, b, gf.AESModulus)
}
