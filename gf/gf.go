// Package gf реализует арифметику поля Галуа GF(2^8).
//
// Модуль (приводящий полином) везде передается без старшего бита:
// x^8 подразумевается. Так 0x1B означает x^8+x^4+x^3+x+1 (AES),
// а 0x1D означает x^8+x^4+x^3+x^2+1 (ДСТУ 7624).
package gf

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	// AESModulus соответствует x^8+x^4+x^3+x+1.
	AESModulus byte = 0x1B

	// KalynaModulus соответствует x^8+x^4+x^3+x^2+1.
	KalynaModulus byte = 0x1D
)

// ReducibleModulusError возникает при использовании приводимого модуля
type ReducibleModulusError struct {
	Modulus byte
}

func (e *ReducibleModulusError) Error() string {
	return fmt.Sprintf("модуль 0x%02X (0x1%02X) является приводимым над GF(2^8)", e.Modulus, e.Modulus)
}

// Add выполняет сложение элементов в GF(2^8)
func Add(a, b byte) byte {
	return a ^ b
}

// Mul выполняет умножение элементов в GF(2^8) по модулю.
// Умножение без переносов: удвоение a с редукцией на каждом из 8 бит b.
func Mul(a, b byte, modulus byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			result ^= a
		}
		a = Double(a, modulus)
		b >>= 1
	}
	return result
}

// Double умножает элемент на x с условной редукцией.
func Double(a byte, modulus byte) byte {
	highBit := a & 0x80
	a <<= 1
	if highBit != 0 {
		a ^= modulus
	}
	return a
}

// Inverse находит обратный элемент в GF(2^8) по модулю
func Inverse(a byte, modulus byte) (byte, error) {
	if !IsIrreducible(modulus) {
		return 0, &ReducibleModulusError{Modulus: modulus}
	}

	if a == 0 {
		return 0, errors.New("обратный элемент для 0 не существует")
	}

	// Расширенный алгоритм Евклида над GF(2)[x]: инвариант t*a = r mod m.
	r0, r1 := uint16(modulus)|0x100, uint16(a)
	t0, t1 := uint16(0), uint16(1)

	for r1 != 0 {
		q, rem := polyDivMod(r0, r1)
		r0, r1 = r1, rem
		t0, t1 = t1, t0^polyMul(q, t1)
	}

	if r0 != 1 {
		return 0, fmt.Errorf("элемент 0x%02X не обратим по модулю 0x1%02X", a, modulus)
	}

	return byte(t0), nil
}

// IsIrreducible проверяет неприводимость полинома степени 8
func IsIrreducible(modulus byte) bool {
	poly := uint16(modulus) | 0x100

	// Приводимый полином степени 8 имеет делитель степени не выше 4
	for _, div := range smallIrreducibles {
		if _, rem := polyDivMod(poly, div); rem == 0 {
			return false
		}
	}

	return true
}

// Irreducibles возвращает все неприводимые полиномы степени 8
// (без старшего бита x^8).
func Irreducibles() []byte {
	var result []byte
	for m := 0; m < 256; m++ {
		if IsIrreducible(byte(m)) {
			result = append(result, byte(m))
		}
	}
	return result
}

// Field - поле GF(2^8) с зафиксированным неприводимым модулем.
type Field struct {
	modulus byte
}

// NewField проверяет модуль и создает поле.
func NewField(modulus byte) (Field, error) {
	if !IsIrreducible(modulus) {
		return Field{}, &ReducibleModulusError{Modulus: modulus}
	}
	return Field{modulus: modulus}, nil
}

// Modulus возвращает модуль поля без старшего бита.
func (f Field) Modulus() byte {
	return f.modulus
}

func (f Field) Mul(a, b byte) byte {
	return Mul(a, b, f.modulus)
}

func (f Field) Double(a byte) byte {
	return Double(a, f.modulus)
}

// Inverse для проверенного поля ошибается только на нуле.
func (f Field) Inverse(a byte) (byte, error) {
	return Inverse(a, f.modulus)
}

// Неприводимые полиномы степеней 1-4
var smallIrreducibles = []uint16{
	0x02, 0x03, // x, x+1
	0x07,
	0x0B, 0x0D,
	0x13, 0x19, 0x1F,
}

// degree возвращает -1 для нулевого многочлена.
func degree(poly uint16) int {
	return bits.Len16(poly) - 1
}

func polyMul(a, b uint16) uint16 {
	var result uint16
	for b != 0 {
		if b&1 == 1 {
			result ^= a
		}
		a <<= 1
		b >>= 1
	}
	return result
}

// polyDivMod делит многочлены над GF(2) с остатком. b != 0.
func polyDivMod(a, b uint16) (quotient, remainder uint16) {
	degB := degree(b)
	for deg := degree(a); deg >= degB; deg = degree(a) {
		shift := deg - degB
		quotient |= 1 << shift
		a ^= b << shift
	}
	return quotient, a
}
