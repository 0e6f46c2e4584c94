package kalyna

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// Слова состояния в ДСТУ 7624 - little-endian. Преобразование читает
// слово в порядке байтов хоста и переставляет байты на big-endian хостах,
// так что результат не зависит от архитектуры.

func toLittleEndian(w uint64) uint64 {
	if cpu.IsBigEndian {
		return bits.ReverseBytes64(w)
	}
	return w
}

// bytesToWords заполняет dst словами из src (len(src) >= 8*len(dst)).
func bytesToWords(dst []uint64, src []byte) {
	for i := range dst {
		dst[i] = toLittleEndian(binary.NativeEndian.Uint64(src[i*8:]))
	}
}

// wordsToBytes записывает слова src в dst (len(dst) >= 8*len(src)).
func wordsToBytes(dst []byte, src []uint64) {
	for i, w := range src {
		binary.NativeEndian.PutUint64(dst[i*8:], toLittleEndian(w))
	}
}
