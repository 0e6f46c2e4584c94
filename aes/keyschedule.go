package aes

import "github.com/Qwertymart/aes-kalyna/gf"

type word [4]byte

// keyExpansion разворачивает Nk слов ключа в Nb*(Nr+1) слов и
// раскладывает их по раундовым ключам.
func (a *AES) keyExpansion(key []byte) []state {
	totalWords := nb * (a.nr + 1)
	w := make([]word, totalWords)

	for i := 0; i < a.nk; i++ {
		copy(w[i][:], key[i*4:(i+1)*4])
	}

	for i := a.nk; i < totalWords; i++ {
		temp := w[i-1]

		if i%a.nk == 0 {
			temp = subWord(rotWord(temp))
			temp[0] ^= rcon(i / a.nk)
		} else if a.nk > 6 && i%a.nk == 4 {
			temp = subWord(temp)
		}

		for j := range temp {
			w[i][j] = w[i-a.nk][j] ^ temp[j]
		}
	}

	roundKeys := make([]state, a.nr+1)
	for round := range roundKeys {
		for col := 0; col < nb; col++ {
			for row := 0; row < 4; row++ {
				roundKeys[round][at(row, col)] = w[round*nb+col][row]
			}
		}
	}

	return roundKeys
}

func rotWord(w word) word {
	return word{w[1], w[2], w[3], w[0]}
}

func subWord(w word) word {
	return word{sBox[w[0]], sBox[w[1]], sBox[w[2]], sBox[w[3]]}
}

// rcon - x^(i-1) в GF(2^8).
func rcon(i int) byte {
	rc := byte(1)
	for j := 1; j < i; j++ {
		rc = gf.Double(rc, gf.AESModulus)
	}
	return rc
}
