package kalyna

// Начальное значение tmv: 1 в младших 16 битах каждой четверти слова.
const tweakSeed uint64 = 0x0001000100010001

// expandKey строит Nr+1 раундовых ключей по Nb слов.
func (k *Kalyna) expandKey(key []uint64) [][]uint64 {
	kt := k.intermediateKey(key)

	roundKeys := make([][]uint64, k.nr+1)
	k.evenRoundKeys(roundKeys, key, kt)
	k.oddRoundKeys(roundKeys)

	return roundKeys
}

// intermediateKey вычисляет kt из затравки [Nb+Nk+1, 0, ..., 0].
func (k *Kalyna) intermediateKey(key []uint64) []uint64 {
	s := make([]uint64, k.nb)
	s[0] = uint64(k.nb + k.nk + 1)

	k0 := key[:k.nb]
	k1 := k0
	if k.nk != k.nb {
		k1 = key[k.nb:]
	}

	addKey(s, k0)
	encipherRound(s)
	xorKey(s, k1)
	encipherRound(s)
	addKey(s, k0)
	encipherRound(s)

	return s
}

func (k *Kalyna) evenRoundKeys(roundKeys [][]uint64, key, kt []uint64) {
	material := append([]uint64(nil), key...)

	tmv := make([]uint64, k.nb)
	for i := range tmv {
		tmv[i] = tweakSeed
	}

	for round := 0; ; round += 2 {
		roundKeys[round] = evenRoundKey(material[:k.nb], kt, tmv)
		if round == k.nr {
			return
		}

		// Ключ вдвое шире блока: вторая половина дает следующий четный ключ.
		if k.nk != k.nb {
			round += 2
			shiftLeft(tmv)
			roundKeys[round] = evenRoundKey(material[k.nb:], kt, tmv)
			if round == k.nr {
				return
			}
		}

		shiftLeft(tmv)
		rotateWords(material)
	}
}

func evenRoundKey(half, kt, tmv []uint64) []uint64 {
	mask := append([]uint64(nil), kt...)
	addKey(mask, tmv)

	rk := append([]uint64(nil), half...)
	addKey(rk, mask)
	encipherRound(rk)
	xorKey(rk, mask)
	encipherRound(rk)
	addKey(rk, mask)

	return rk
}

// oddRoundKeys: нечетный ключ - предыдущий четный, сдвинутый
// влево на 2*Nb+3 байта.
func (k *Kalyna) oddRoundKeys(roundKeys [][]uint64) {
	for round := 1; round < k.nr; round += 2 {
		rk := append([]uint64(nil), roundKeys[round-1]...)
		rotateBytesLeft(rk, 2*k.nb+3)
		roundKeys[round] = rk
	}
}
