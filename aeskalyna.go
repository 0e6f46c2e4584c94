package aeskalyna

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Qwertymart/aes-kalyna/aes"
	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
	"github.com/Qwertymart/aes-kalyna/kalyna"
	"github.com/Qwertymart/aes-kalyna/modes"
	"github.com/Qwertymart/aes-kalyna/padding"
)

var (
	ErrInvalidConfiguration = cryptoerr.ErrInvalidConfiguration
	ErrInvalidInput         = cryptoerr.ErrInvalidInput
)

type Algorithm int

const (
	AES Algorithm = iota
	Kalyna
)

func (a Algorithm) String() string {
	switch a {
	case AES:
		return "aes"
	case Kalyna:
		return "kalyna"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm принимает "aes", "rijndael", "kalyna" или "dstu7624".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aes", "rijndael":
		return AES, nil
	case "kalyna", "dstu7624", "dstu-7624":
		return Kalyna, nil
	default:
		return 0, fmt.Errorf("%w: неизвестный алгоритм %q", ErrInvalidConfiguration, name)
	}
}

// Engine - блочный шифр без ключа, пригодный для пакета modes.
type Engine interface {
	modes.Engine
	KeySize() int
	Rounds() int
	String() string
}

var (
	_ Engine = (*aes.AES)(nil)
	_ Engine = (*kalyna.Kalyna)(nil)
)

// NewEngine создает шифр по алгоритму и размерам в битах. Для AES
// blockBits равен 128 или 0.
func NewEngine(alg Algorithm, blockBits, keyBits int) (Engine, error) {
	switch alg {
	case AES:
		if blockBits != 0 && blockBits != aes.BlockSize*8 {
			return nil, fmt.Errorf("%w: AES поддерживает только блок 128 бит, получено %d",
				ErrInvalidConfiguration, blockBits)
		}
		a, err := aes.New(keyBits)
		if err != nil {
			return nil, err
		}
		return a, nil
	case Kalyna:
		k, err := kalyna.New(blockBits, keyBits)
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, fmt.Errorf("%w: неизвестный алгоритм %v", ErrInvalidConfiguration, alg)
	}
}

// Config описывает шифр и режим целиком. Нулевые Padding, Feedback и
// Logger означают значения по умолчанию пакета modes.
type Config struct {
	Algorithm Algorithm
	BlockBits int
	KeyBits   int
	Mode      modes.Mode
	Padding   padding.Padding
	Feedback  int
	Logger    *zap.Logger
}

// New собирает modes.Cipher по конфигурации.
func New(cfg Config) (*modes.Cipher, error) {
	engine, err := NewEngine(cfg.Algorithm, cfg.BlockBits, cfg.KeyBits)
	if err != nil {
		return nil, err
	}

	return modes.New(engine, cfg.Mode,
		modes.WithPadding(cfg.Padding),
		modes.WithFeedback(cfg.Feedback),
		modes.WithLogger(cfg.Logger),
	)
}

func Encrypt(cfg Config, plaintext, key, iv []byte) ([]byte, int, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}
	return c.Encrypt(plaintext, key, iv)
}

func Decrypt(cfg Config, ciphertext, key, iv []byte) ([]byte, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, key, iv)
}
