package aes

import (
	"math/bits"

	"github.com/Qwertymart/aes-kalyna/gf"
)

// Таблицы замены строятся один раз при загрузке пакета и дальше
// только читаются.
var (
	sBox    [256]byte
	invSBox [256]byte
)

func init() {
	field, err := gf.NewField(gf.AESModulus)
	if err != nil {
		panic(err)
	}

	for i := 0; i < 256; i++ {
		// 0 переходит в 0
		var inv byte
		if i != 0 {
			if inv, err = field.Inverse(byte(i)); err != nil {
				panic(err)
			}
		}

		sBox[i] = affineTransform(inv)
		invSBox[sBox[i]] = byte(i)
	}
}

// affineTransform: b ^ rotl(b,1) ^ rotl(b,2) ^ rotl(b,3) ^ rotl(b,4) ^ 0x63.
func affineTransform(b byte) byte {
	return b ^
		bits.RotateLeft8(b, 1) ^
		bits.RotateLeft8(b, 2) ^
		bits.RotateLeft8(b, 3) ^
		bits.RotateLeft8(b, 4) ^
		0x63
}
