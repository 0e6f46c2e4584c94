package modes

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
)

// Во всех функциях len(dst) == len(src). Для ECB и CBC длина кратна блоку.

func encryptECB(b cipher.Block, dst, src []byte) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		b.Encrypt(dst[i:i+bs], src[i:i+bs])
	}
}

func decryptECB(b cipher.Block, dst, src []byte) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		b.Decrypt(dst[i:i+bs], src[i:i+bs])
	}
}

func encryptCBC(b cipher.Block, dst, src, iv []byte) {
	bs := b.BlockSize()
	prev := iv
	for i := 0; i < len(src); i += bs {
		out := dst[i : i+bs]
		subtle.XORBytes(out, src[i:i+bs], prev)
		b.Encrypt(out, out)
		prev = out
	}
}

func decryptCBC(b cipher.Block, dst, src, iv []byte) {
	bs := b.BlockSize()
	prev := iv
	for i := 0; i < len(src); i += bs {
		out := dst[i : i+bs]
		b.Decrypt(out, src[i:i+bs])
		subtle.XORBytes(out, out, prev)
		prev = src[i : i+bs]
	}
}

// processCFB: на каждом шаге шифруется регистр, гамма накладывается на
// целый блок, затем регистр сдвигается влево на s байт и в конец
// дописываются первые s байт только что полученного шифртекста.
func processCFB(b cipher.Block, dst, src, iv []byte, s int, decrypt bool) {
	bs := b.BlockSize()
	register := make([]byte, bs)
	copy(register, iv)
	keystream := make([]byte, bs)

	for i := 0; i < len(src); i += bs {
		end := min(i+bs, len(src))
		b.Encrypt(keystream, register)
		subtle.XORBytes(dst[i:end], src[i:end], keystream)

		// неполный блок бывает только последним
		if end-i < bs {
			break
		}

		ciphertext := dst[i:end]
		if decrypt {
			ciphertext = src[i:end]
		}
		copy(register, register[s:])
		copy(register[bs-s:], ciphertext[:s])
	}
}

// processOFB одинаков для шифрования и расшифрования.
func processOFB(b cipher.Block, dst, src, iv []byte) {
	bs := b.BlockSize()
	register := make([]byte, bs)
	copy(register, iv)

	for i := 0; i < len(src); i += bs {
		end := min(i+bs, len(src))
		b.Encrypt(register, register)
		subtle.XORBytes(dst[i:end], src[i:end], register)
	}
}

// Блок счетчика CTR: nonce в первой половине, big-endian счетчик во второй.
func processCTR(b cipher.Block, dst, src, counterBlock []byte) {
	bs := b.BlockSize()
	counter := counterBlock[bs/2:]
	keystream := make([]byte, bs)

	for i := 0; i < len(src); i += bs {
		end := min(i+bs, len(src))
		b.Encrypt(keystream, counterBlock)
		subtle.XORBytes(dst[i:end], src[i:end], keystream)
		incrementCounter(counter)
	}
}

// initialCounterBlock собирает nonce||counter из iv. Пустой iv дает nonce
// 00 01 02 ... и нулевой счетчик, iv в полблока задает nonce, iv в целый
// блок задает nonce и начальное значение счетчика.
func initialCounterBlock(iv []byte, blockSize int) ([]byte, error) {
	half := blockSize / 2
	block := make([]byte, blockSize)

	switch len(iv) {
	case 0:
		for i := 0; i < half; i++ {
			block[i] = byte(i)
		}
	case half, blockSize:
		copy(block, iv)
	default:
		return nil, fmt.Errorf("%w: неверная длина nonce CTR: ожидается 0, %d или %d, получено %d",
			cryptoerr.ErrInvalidInput, half, blockSize, len(iv))
	}

	return block, nil
}

// incrementCounter увеличивает big-endian счетчик на 1; после FF..FF
// счетчик обнуляется.
func incrementCounter(counter []byte) {
	for i := len(counter) - 1; i >= 0; i-- {
		counter[i]++
		if counter[i] != 0 {
			break
		}
	}
}
