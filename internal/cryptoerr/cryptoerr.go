// Package cryptoerr содержит общую таксономию ошибок движка.
package cryptoerr

import "errors"

var (
	// ErrInvalidConfiguration возвращается при неподдерживаемой конфигурации
	// (пара размеров блока и ключа, режим, схема набивки, ширина обратной связи).
	ErrInvalidConfiguration = errors.New("неверная конфигурация")

	// ErrInvalidInput возвращается при неверных входных данных: длина ключа,
	// размер блока, длина IV, невыровненный шифртекст, испорченная набивка.
	ErrInvalidInput = errors.New("неверные входные данные")
)
