// Package config загружает настройки CLI из .env файла и переменных
// окружения.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	aeskalyna "github.com/Qwertymart/aes-kalyna"
	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
	"github.com/Qwertymart/aes-kalyna/modes"
	"github.com/Qwertymart/aes-kalyna/padding"
)

// DefaultEnvFile читается, если путь к .env не задан явно.
const DefaultEnvFile = ".env"

const (
	EnvAlgorithm = "AESKALYNA_ALGORITHM"
	EnvBlockBits = "AESKALYNA_BLOCK_BITS"
	EnvKeyBits   = "AESKALYNA_KEY_BITS"
	EnvMode      = "AESKALYNA_MODE"
	EnvPadding   = "AESKALYNA_PADDING"
	EnvFeedback  = "AESKALYNA_FEEDBACK"
	EnvKey       = "AESKALYNA_KEY"
	EnvIV        = "AESKALYNA_IV"
	EnvLogLevel  = "AESKALYNA_LOG_LEVEL"
)

// Config - сырые настройки: строки как в окружении, числа в битах и байтах.
type Config struct {
	Algorithm string
	BlockBits int
	KeyBits   int
	Mode      string
	Padding   string
	Feedback  int
	Key       string // hex
	IV        string // hex
	LogLevel  string
}

// Default - AES-256 в режиме CBC с нулевой набивкой.
func Default() Config {
	return Config{
		Algorithm: "aes",
		BlockBits: 128,
		KeyBits:   256,
		Mode:      "CBC",
		Padding:   "zero",
		LogLevel:  "info",
	}
}

// Load читает envFile через godotenv и накладывает переменные окружения
// на значения по умолчанию. Отсутствие файла по умолчанию не ошибка.
// godotenv не перезаписывает уже заданные переменные окружения.
func Load(envFile string) (Config, error) {
	path := envFile
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("загрузка %s: %w", path, err)
		}
	}

	cfg := Default()
	setString(&cfg.Algorithm, EnvAlgorithm)
	setString(&cfg.Mode, EnvMode)
	setString(&cfg.Padding, EnvPadding)
	setString(&cfg.Key, EnvKey)
	setString(&cfg.IV, EnvIV)
	setString(&cfg.LogLevel, EnvLogLevel)

	err := multierr.Combine(
		setInt(&cfg.BlockBits, EnvBlockBits),
		setInt(&cfg.KeyBits, EnvKeyBits),
		setInt(&cfg.Feedback, EnvFeedback),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q не число", cryptoerr.ErrInvalidConfiguration, name, v)
	}
	*dst = n
	return nil
}

// Validate проверяет имена, размеры, уровень журналирования и формат
// hex. Пустые ключ и IV допустимы.
func (c Config) Validate() error {
	if _, err := c.Cipher(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.KeyBytes(); err != nil {
		return err
	}
	_, err := c.IVBytes()
	return err
}

// Cipher разбирает строковые поля в aeskalyna.Config.
func (c Config) Cipher() (aeskalyna.Config, error) {
	alg, err := aeskalyna.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return aeskalyna.Config{}, err
	}
	mode, err := modes.ParseMode(c.Mode)
	if err != nil {
		return aeskalyna.Config{}, err
	}
	pad, err := padding.Parse(c.Padding)
	if err != nil {
		return aeskalyna.Config{}, err
	}

	cfg := aeskalyna.Config{
		Algorithm: alg,
		BlockBits: c.BlockBits,
		KeyBits:   c.KeyBits,
		Mode:      mode,
		Padding:   pad,
		Feedback:  c.Feedback,
	}

	// проверка пары размеров и ширины обратной связи
	if _, err := aeskalyna.New(cfg); err != nil {
		return aeskalyna.Config{}, err
	}
	return cfg, nil
}

// KeyBytes декодирует ключ из hex.
func (c Config) KeyBytes() ([]byte, error) {
	return decodeHex("ключ", c.Key)
}

// IVBytes декодирует IV из hex. Пустая строка дает nil.
func (c Config) IVBytes() ([]byte, error) {
	return decodeHex("IV", c.IV)
}

func decodeHex(what, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s не в формате hex: %v", cryptoerr.ErrInvalidInput, what, err)
	}
	return b, nil
}

// Level разбирает уровень журналирования: debug, info, warn, error.
func (c Config) Level() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return level, fmt.Errorf("%w: уровень журналирования %q", cryptoerr.ErrInvalidConfiguration, c.LogLevel)
	}
	return level, nil
}
