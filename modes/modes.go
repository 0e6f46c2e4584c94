// Package modes реализует режимы шифрования ECB, CBC, CFB, OFB и CTR
// поверх любого блочного шифра с интерфейсом crypto/cipher.Block.
//
// Шифрование всегда дополняет открытый текст выбранной схемой набивки
// (по умолчанию нулями до границы блока) и возвращает длину результата.
// Исходная длина при нулевой набивке из шифртекста не восстанавливается,
// ее хранит вызывающий.
package modes

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
	"github.com/Qwertymart/aes-kalyna/padding"
)

type Mode int

const (
	ECB Mode = iota
	CBC
	CFB
	OFB
	CTR
)

var modeNames = [...]string{"ECB", "CBC", "CFB", "OFB", "CTR"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode возвращает режим по имени без учета регистра.
func ParseMode(name string) (Mode, error) {
	name = strings.TrimSpace(name)
	for i, n := range modeNames {
		if strings.EqualFold(name, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: неизвестный режим %q", cryptoerr.ErrInvalidConfiguration, name)
}

// Engine - блочный шифр без ключа: знает размер блока и выводит
// расписание ключей.
type Engine interface {
	BlockSize() int
	NewCipher(key []byte) (cipher.Block, error)
}

// Cipher связывает движок, режим и набивку. Состояние режима живет только
// внутри одного вызова, поэтому Cipher безопасен для конкурентного
// использования.
type Cipher struct {
	engine   Engine
	mode     Mode
	padding  padding.Padding
	feedback int
	logger   *zap.Logger
}

type Option func(*Cipher)

// WithPadding задает схему набивки (по умолчанию padding.ZeroPadding).
func WithPadding(p padding.Padding) Option {
	return func(c *Cipher) {
		c.padding = p
	}
}

// WithFeedback задает ширину обратной связи CFB в байтах, 1..BlockSize.
// 0 означает полный блок.
func WithFeedback(s int) Option {
	return func(c *Cipher) {
		c.feedback = s
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Cipher) {
		c.logger = l
	}
}

func New(engine Engine, mode Mode, opts ...Option) (*Cipher, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: не задан блочный шифр", cryptoerr.ErrInvalidConfiguration)
	}
	if mode < ECB || mode > CTR {
		return nil, fmt.Errorf("%w: неподдерживаемый режим %v", cryptoerr.ErrInvalidConfiguration, mode)
	}

	c := &Cipher{
		engine: engine,
		mode:   mode,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.padding == nil {
		c.padding = padding.ZeroPadding{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	blockSize := engine.BlockSize()
	if c.feedback == 0 {
		c.feedback = blockSize
	}
	if c.feedback < 1 || c.feedback > blockSize {
		return nil, fmt.Errorf("%w: ширина обратной связи %d вне диапазона 1..%d",
			cryptoerr.ErrInvalidConfiguration, c.feedback, blockSize)
	}

	return c, nil
}

func (c *Cipher) Mode() Mode {
	return c.mode
}

// Encrypt выводит расписание из key, дополняет plaintext и шифрует его.
// Возвращает шифртекст и его длину (длину дополненных данных).
func (c *Cipher) Encrypt(plaintext, key, iv []byte) ([]byte, int, error) {
	block, err := c.engine.NewCipher(key)
	if err != nil {
		return nil, 0, fmt.Errorf("вывод раундовых ключей: %w", err)
	}
	blockSize := block.BlockSize()

	data := c.padding.Pad(plaintext, blockSize)
	ciphertext := make([]byte, len(data))

	switch c.mode {
	case ECB:
		encryptECB(block, ciphertext, data)
	case CBC:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, 0, err
		}
		encryptCBC(block, ciphertext, data, iv)
	case CFB:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, 0, err
		}
		processCFB(block, ciphertext, data, iv, c.feedback, false)
	case OFB:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, 0, err
		}
		processOFB(block, ciphertext, data, iv)
	case CTR:
		start, err := initialCounterBlock(iv, blockSize)
		if err != nil {
			return nil, 0, err
		}
		processCTR(block, ciphertext, data, start)
	}

	c.logger.Debug("данные зашифрованы",
		zap.Stringer("mode", c.mode),
		zap.Stringer("padding", c.padding),
		zap.Int("block_size", blockSize),
		zap.Int("input_len", len(plaintext)),
		zap.Int("output_len", len(ciphertext)),
	)

	return ciphertext, len(ciphertext), nil
}

// Decrypt расшифровывает ciphertext и снимает набивку. ECB и CBC требуют
// длину, кратную блоку; CFB, OFB и CTR принимают любую длину.
func (c *Cipher) Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := c.engine.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("вывод раундовых ключей: %w", err)
	}
	blockSize := block.BlockSize()

	if (c.mode == ECB || c.mode == CBC) && len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: длина шифртекста %d не кратна размеру блока %d",
			cryptoerr.ErrInvalidInput, len(ciphertext), blockSize)
	}

	plaintext := make([]byte, len(ciphertext))

	switch c.mode {
	case ECB:
		decryptECB(block, plaintext, ciphertext)
	case CBC:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, err
		}
		decryptCBC(block, plaintext, ciphertext, iv)
	case CFB:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, err
		}
		processCFB(block, plaintext, ciphertext, iv, c.feedback, true)
	case OFB:
		if err := checkIV(iv, blockSize); err != nil {
			return nil, err
		}
		processOFB(block, plaintext, ciphertext, iv)
	case CTR:
		start, err := initialCounterBlock(iv, blockSize)
		if err != nil {
			return nil, err
		}
		processCTR(block, plaintext, ciphertext, start)
	}

	unpadded, err := c.padding.Unpad(plaintext, blockSize)
	if err != nil {
		return nil, fmt.Errorf("снятие набивки %v: %w", c.padding, err)
	}

	c.logger.Debug("данные расшифрованы",
		zap.Stringer("mode", c.mode),
		zap.Stringer("padding", c.padding),
		zap.Int("block_size", blockSize),
		zap.Int("input_len", len(ciphertext)),
		zap.Int("output_len", len(unpadded)),
	)

	return unpadded, nil
}

// Encrypt - однократное шифрование без создания Cipher вручную.
func Encrypt(engine Engine, mode Mode, plaintext, key, iv []byte, opts ...Option) ([]byte, int, error) {
	c, err := New(engine, mode, opts...)
	if err != nil {
		return nil, 0, err
	}
	return c.Encrypt(plaintext, key, iv)
}

func Decrypt(engine Engine, mode Mode, ciphertext, key, iv []byte, opts ...Option) ([]byte, error) {
	c, err := New(engine, mode, opts...)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, key, iv)
}

// GenerateIV возвращает случайный вектор инициализации.
func GenerateIV(blockSize int) ([]byte, error) {
	iv := make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("генерация IV: %w", err)
	}
	return iv, nil
}

func checkIV(iv []byte, blockSize int) error {
	if len(iv) != blockSize {
		return fmt.Errorf("%w: неверная длина IV: ожидается %d, получено %d",
			cryptoerr.ErrInvalidInput, blockSize, len(iv))
	}
	return nil
}
