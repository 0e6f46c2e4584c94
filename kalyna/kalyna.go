// Package kalyna реализует блочный шифр "Калина" (ДСТУ 7624:2014).
//
// Поддерживаются пары блок/ключ 128/128, 128/256, 256/256, 256/512 и
// 512/512 бит. Состояние хранится как Nb 64-битных little-endian слов;
// раундовые ключи вносятся сложением по модулю 2^64 на первом и последнем
// шаге и XOR на промежуточных.
package kalyna

import (
	"crypto/cipher"
	"fmt"

	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
)

// Kalyna - конфигурация шифра без ключа.
type Kalyna struct {
	nb int // слов в блоке
	nk int // слов в ключе
	nr int
}

// New создает конфигурацию для пары blockBits/keyBits.
func New(blockBits, keyBits int) (*Kalyna, error) {
	var nr int
	switch {
	case blockBits == 128 && keyBits == 128:
		nr = 10
	case blockBits == 128 && keyBits == 256, blockBits == 256 && keyBits == 256:
		nr = 14
	case blockBits == 256 && keyBits == 512, blockBits == 512 && keyBits == 512:
		nr = 18
	default:
		return nil, fmt.Errorf("%w: неподдерживаемая пара блок/ключ Калины: %d/%d бит",
			cryptoerr.ErrInvalidConfiguration, blockBits, keyBits)
	}

	return &Kalyna{nb: blockBits / 64, nk: keyBits / 64, nr: nr}, nil
}

// BlockSize возвращает размер блока в байтах.
func (k *Kalyna) BlockSize() int {
	return k.nb * 8
}

// KeySize возвращает длину ключа в байтах.
func (k *Kalyna) KeySize() int {
	return k.nk * 8
}

func (k *Kalyna) Rounds() int {
	return k.nr
}

func (k *Kalyna) String() string {
	return fmt.Sprintf("Kalyna-%d/%d", k.nb*64, k.nk*64)
}

// NewCipher выводит расписание ключей и возвращает cipher.Block.
func (k *Kalyna) NewCipher(key []byte) (cipher.Block, error) {
	return k.ExpandKey(key)
}

// ExpandKey выводит расписание из байтового ключа.
func (k *Kalyna) ExpandKey(key []byte) (*Cipher, error) {
	if len(key) != k.KeySize() {
		return nil, fmt.Errorf("%w: неверная длина ключа: ожидается %d, получено %d",
			cryptoerr.ErrInvalidInput, k.KeySize(), len(key))
	}

	words := make([]uint64, k.nk)
	bytesToWords(words, key)
	return k.ExpandKeyWords(words)
}

// ExpandKeyWords выводит расписание из ключа, заданного словами.
func (k *Kalyna) ExpandKeyWords(key []uint64) (*Cipher, error) {
	if len(key) != k.nk {
		return nil, fmt.Errorf("%w: неверная длина ключа: ожидается %d слов, получено %d",
			cryptoerr.ErrInvalidInput, k.nk, len(key))
	}

	return &Cipher{
		nb:        k.nb,
		nr:        k.nr,
		roundKeys: k.expandKey(key),
	}, nil
}

// Cipher - Калина с выведенным расписанием ключей. Расписание только
// читается, поэтому Cipher безопасен для конкурентного использования.
type Cipher struct {
	nb        int
	nr        int
	roundKeys [][]uint64
}

var _ cipher.Block = (*Cipher)(nil)

func (c *Cipher) BlockSize() int {
	return c.nb * 8
}

func (c *Cipher) Rounds() int {
	return c.nr
}

// RoundKeys возвращает копию расписания: Nr+1 ключей по Nb слов.
func (c *Cipher) RoundKeys() [][]uint64 {
	keys := make([][]uint64, len(c.roundKeys))
	for i, rk := range c.roundKeys {
		keys[i] = append([]uint64(nil), rk...)
	}
	return keys
}

// Encrypt шифрует первый блок src в dst.
func (c *Cipher) Encrypt(dst, src []byte) {
	c.checkBuffers(dst, src)

	var s [maxNb]uint64
	words := s[:c.nb]
	bytesToWords(words, src)
	c.encipher(words)
	wordsToBytes(dst, words)
}

// Decrypt расшифровывает первый блок src в dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	c.checkBuffers(dst, src)

	var s [maxNb]uint64
	words := s[:c.nb]
	bytesToWords(words, src)
	c.decipher(words)
	wordsToBytes(dst, words)
}

func (c *Cipher) checkBuffers(dst, src []byte) {
	if len(src) < c.BlockSize() {
		panic("kalyna: входные данные меньше блока")
	}
	if len(dst) < c.BlockSize() {
		panic("kalyna: выходной буфер меньше блока")
	}
}

// EncryptBlock шифрует ровно один блок.
func (c *Cipher) EncryptBlock(plaintext []byte) ([]byte, error) {
	if err := c.checkBlock(len(plaintext)); err != nil {
		return nil, err
	}

	out := make([]byte, c.BlockSize())
	c.Encrypt(out, plaintext)
	return out, nil
}

// DecryptBlock расшифровывает ровно один блок.
func (c *Cipher) DecryptBlock(ciphertext []byte) ([]byte, error) {
	if err := c.checkBlock(len(ciphertext)); err != nil {
		return nil, err
	}

	out := make([]byte, c.BlockSize())
	c.Decrypt(out, ciphertext)
	return out, nil
}

// EncipherWords шифрует блок, заданный Nb словами.
func (c *Cipher) EncipherWords(plaintext []uint64) ([]uint64, error) {
	if len(plaintext) != c.nb {
		return nil, fmt.Errorf("%w: неверный размер блока: ожидается %d слов, получено %d",
			cryptoerr.ErrInvalidInput, c.nb, len(plaintext))
	}

	out := append([]uint64(nil), plaintext...)
	c.encipher(out)
	return out, nil
}

// DecipherWords расшифровывает блок, заданный Nb словами.
func (c *Cipher) DecipherWords(ciphertext []uint64) ([]uint64, error) {
	if len(ciphertext) != c.nb {
		return nil, fmt.Errorf("%w: неверный размер блока: ожидается %d слов, получено %d",
			cryptoerr.ErrInvalidInput, c.nb, len(ciphertext))
	}

	out := append([]uint64(nil), ciphertext...)
	c.decipher(out)
	return out, nil
}

func (c *Cipher) checkBlock(n int) error {
	if n != c.BlockSize() {
		return fmt.Errorf("%w: неверный размер блока: ожидается %d, получено %d",
			cryptoerr.ErrInvalidInput, c.BlockSize(), n)
	}
	return nil
}

func (c *Cipher) encipher(s []uint64) {
	addKey(s, c.roundKeys[0])

	for round := 1; round < c.nr; round++ {
		encipherRound(s)
		xorKey(s, c.roundKeys[round])
	}

	encipherRound(s)
	addKey(s, c.roundKeys[c.nr])
}

func (c *Cipher) decipher(s []uint64) {
	subKey(s, c.roundKeys[c.nr])

	for round := c.nr - 1; round > 0; round-- {
		decipherRound(s)
		xorKey(s, c.roundKeys[round])
	}

	decipherRound(s)
	subKey(s, c.roundKeys[0])
}
