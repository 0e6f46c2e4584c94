// Package padding содержит схемы дополнения открытого текста до
// кратного размеру блока.
package padding

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
)

// ErrInvalidPadding - набивка не соответствует схеме.
var ErrInvalidPadding = fmt.Errorf("%w: неверная набивка", cryptoerr.ErrInvalidInput)

// Padding дополняет данные до кратного blockSize и снимает дополнение.
// Pad не изменяет переданный срез.
type Padding interface {
	Pad(data []byte, blockSize int) []byte
	Unpad(data []byte, blockSize int) ([]byte, error)
	String() string
}

// Parse возвращает схему по имени: zero, pkcs7, ansix923, iso10126.
func Parse(name string) (Padding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zero", "zeros":
		return ZeroPadding{}, nil
	case "pkcs7", "pkcs#7":
		return PKCS7Padding{}, nil
	case "ansix923", "x923", "ansi-x923":
		return ANSIX923Padding{}, nil
	case "iso10126", "iso-10126":
		return ISO10126Padding{}, nil
	default:
		return nil, fmt.Errorf("%w: неизвестная схема набивки %q", cryptoerr.ErrInvalidConfiguration, name)
	}
}

// padded копирует data в новый срез длиной len(data)+n.
func padded(data []byte, n int) []byte {
	out := make([]byte, len(data)+n)
	copy(out, data)
	return out
}

// ZeroPadding дописывает нули только до ближайшей границы блока.
// Выровненные данные не дополняются. Снять такую набивку однозначно
// нельзя, поэтому Unpad возвращает данные как есть: исходную длину
// хранит вызывающий.
type ZeroPadding struct{}

func (ZeroPadding) Pad(data []byte, blockSize int) []byte {
	n := (blockSize - len(data)%blockSize) % blockSize
	return padded(data, n)
}

func (ZeroPadding) Unpad(data []byte, _ int) ([]byte, error) {
	return data, nil
}

func (ZeroPadding) String() string { return "zero" }

// PKCS7Padding: n байт со значением n, 1 <= n <= blockSize.
type PKCS7Padding struct{}

func (PKCS7Padding) Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := padded(data, n)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func (PKCS7Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := trailerLength(data, blockSize)
	if err != nil {
		return nil, err
	}

	for i := len(data) - n; i < len(data); i++ {
		if data[i] != byte(n) {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}

func (PKCS7Padding) String() string { return "pkcs7" }

// ANSIX923Padding: нули и длина набивки в последнем байте.
type ANSIX923Padding struct{}

func (ANSIX923Padding) Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := padded(data, n)
	out[len(out)-1] = byte(n)
	return out
}

func (ANSIX923Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := trailerLength(data, blockSize)
	if err != nil {
		return nil, err
	}

	for i := len(data) - n; i < len(data)-1; i++ {
		if data[i] != 0 {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}

func (ANSIX923Padding) String() string { return "ansix923" }

// ISO10126Padding: случайные байты и длина набивки в последнем байте.
type ISO10126Padding struct{}

func (ISO10126Padding) Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := padded(data, n)
	if _, err := rand.Read(out[len(data) : len(out)-1]); err != nil {
		panic(fmt.Sprintf("padding: ошибка генератора случайных чисел: %v", err))
	}
	out[len(out)-1] = byte(n)
	return out
}

func (ISO10126Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := trailerLength(data, blockSize)
	if err != nil {
		return nil, err
	}
	return data[:len(data)-n], nil
}

func (ISO10126Padding) String() string { return "iso10126" }

// trailerLength читает длину набивки из последнего байта и проверяет
// ее границы.
func trailerLength(data []byte, blockSize int) (int, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return 0, fmt.Errorf("%w: длина %d не кратна блоку %d", ErrInvalidPadding, len(data), blockSize)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return 0, ErrInvalidPadding
	}
	return n, nil
}
