// Package aes реализует блочный шифр AES (FIPS-197): блок 128 бит,
// ключи 128, 192 и 256 бит.
//
// Работа разделена на два шага, как в исходной конструкции Rijndael:
// New фиксирует конфигурацию (Nk, Nr), а ExpandKey/NewCipher выводит
// расписание раундовых ключей и возвращает готовый к работе Cipher.
package aes

import (
	"crypto/cipher"
	"fmt"

	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
)

// BlockSize - размер блока AES в байтах.
const BlockSize = 16

// Количество 32-битных слов в блоке.
const nb = 4

// AES - конфигурация шифра без ключа.
type AES struct {
	nk int
	nr int
}

// New создает конфигурацию для длины ключа keyBits (128, 192 или 256).
func New(keyBits int) (*AES, error) {
	switch keyBits {
	case 128:
		return &AES{nk: 4, nr: 10}, nil
	case 192:
		return &AES{nk: 6, nr: 12}, nil
	case 256:
		return &AES{nk: 8, nr: 14}, nil
	default:
		return nil, fmt.Errorf("%w: неподдерживаемая длина ключа AES: %d бит", cryptoerr.ErrInvalidConfiguration, keyBits)
	}
}

func (a *AES) BlockSize() int {
	return BlockSize
}

// KeySize возвращает длину ключа в байтах.
func (a *AES) KeySize() int {
	return a.nk * 4
}

func (a *AES) Rounds() int {
	return a.nr
}

func (a *AES) String() string {
	return fmt.Sprintf("AES-%d", a.nk*32)
}

// NewCipher выводит расписание ключей и возвращает cipher.Block.
func (a *AES) NewCipher(key []byte) (cipher.Block, error) {
	return a.ExpandKey(key)
}

// ExpandKey выводит расписание из Nb*(Nr+1) слов.
func (a *AES) ExpandKey(key []byte) (*Cipher, error) {
	if len(key) != a.KeySize() {
		return nil, fmt.Errorf("%w: неверная длина ключа: ожидается %d, получено %d", cryptoerr.ErrInvalidInput, a.KeySize(), len(key))
	}

	return &Cipher{
		nr:        a.nr,
		roundKeys: a.keyExpansion(key),
	}, nil
}

// NewCipher выбирает конфигурацию по длине ключа (16, 24 или 32 байта).
func NewCipher(key []byte) (*Cipher, error) {
	a, err := New(len(key) * 8)
	if err != nil {
		return nil, err
	}
	return a.ExpandKey(key)
}

// Cipher - AES с выведенным расписанием ключей. Расписание не меняется
// после создания, поэтому Cipher можно использовать из нескольких горутин.
type Cipher struct {
	nr        int
	roundKeys []state
}

var _ cipher.Block = (*Cipher)(nil)

func (c *Cipher) BlockSize() int {
	return BlockSize
}

// Rounds возвращает число раундов Nr.
func (c *Cipher) Rounds() int {
	return c.nr
}

// RoundKeys возвращает копию расписания: Nr+1 ключей по 16 байт.
func (c *Cipher) RoundKeys() [][]byte {
	keys := make([][]byte, len(c.roundKeys))
	for i := range c.roundKeys {
		keys[i] = append([]byte(nil), c.roundKeys[i][:]...)
	}
	return keys
}

// Encrypt шифрует первый блок src в dst.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes: входные данные меньше блока")
	}
	if len(dst) < BlockSize {
		panic("aes: выходной буфер меньше блока")
	}

	var s state
	copy(s[:], src[:BlockSize])
	c.encrypt(&s)
	copy(dst, s[:])
}

// Decrypt расшифровывает первый блок src в dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes: входные данные меньше блока")
	}
	if len(dst) < BlockSize {
		panic("aes: выходной буфер меньше блока")
	}

	var s state
	copy(s[:], src[:BlockSize])
	c.decrypt(&s)
	copy(dst, s[:])
}

// EncryptBlock шифрует ровно один блок.
func (c *Cipher) EncryptBlock(plaintext []byte) ([]byte, error) {
	if len(plaintext) != BlockSize {
		return nil, fmt.Errorf("%w: неверный размер блока: ожидается %d, получено %d", cryptoerr.ErrInvalidInput, BlockSize, len(plaintext))
	}

	out := make([]byte, BlockSize)
	c.Encrypt(out, plaintext)
	return out, nil
}

// DecryptBlock расшифровывает ровно один блок.
func (c *Cipher) DecryptBlock(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != BlockSize {
		return nil, fmt.Errorf("%w: неверный размер блока: ожидается %d, получено %d", cryptoerr.ErrInvalidInput, BlockSize, len(ciphertext))
	}

	out := make([]byte, BlockSize)
	c.Decrypt(out, ciphertext)
	return out, nil
}

func (c *Cipher) encrypt(s *state) {
	s.addRoundKey(&c.roundKeys[0])

	for round := 1; round < c.nr; round++ {
		s.subBytes()
		s.shiftRows()
		s.mixColumns()
		s.addRoundKey(&c.roundKeys[round])
	}

	s.subBytes()
	s.shiftRows()
	s.addRoundKey(&c.roundKeys[c.nr])
}

func (c *Cipher) decrypt(s *state) {
	s.addRoundKey(&c.roundKeys[c.nr])

	for round := c.nr - 1; round > 0; round-- {
		s.invShiftRows()
		s.invSubBytes()
		s.addRoundKey(&c.roundKeys[round])
		s.invMixColumns()
	}

	s.invShiftRows()
	s.invSubBytes()
	s.addRoundKey(&c.roundKeys[0])
}
