// Команда aeskalyna шифрует и расшифровывает файлы шифрами AES и
// "Калина" в режимах ECB, CBC, CFB, OFB и CTR.
//
// Настройки берутся из .env и переменных окружения AESKALYNA_*, флаги
// имеют приоритет:
//
//	aeskalyna -alg kalyna -block 256 -key-bits 512 -mode cbc -key <hex> -gen-iv -in a.txt -out a.bin
//	aeskalyna -d -alg kalyna -block 256 -key-bits 512 -mode cbc -key <hex> -iv <hex> -length 1234 -in a.bin -out a.txt
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	aeskalyna "github.com/Qwertymart/aes-kalyna"
	"github.com/Qwertymart/aes-kalyna/internal/config"
	"github.com/Qwertymart/aes-kalyna/modes"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "aeskalyna: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("aeskalyna", flag.ContinueOnError)

	envFile := flags.String("env", "", "путь к .env (по умолчанию ./.env, если он есть)")
	decrypt := flags.Bool("d", false, "расшифровать вместо шифрования")
	inPath := flags.String("in", "", "входной файл")
	outPath := flags.String("out", "", "выходной файл")
	length := flags.Int("length", -1, "исходная длина: обрезать расшифрованные данные")
	genIV := flags.Bool("gen-iv", false, "сгенерировать случайный IV и вывести его")

	alg := flags.String("alg", "", "алгоритм: aes или kalyna")
	blockBits := flags.Int("block", 0, "размер блока в битах")
	keyBits := flags.Int("key-bits", 0, "длина ключа в битах")
	mode := flags.String("mode", "", "режим: ECB, CBC, CFB, OFB, CTR")
	pad := flags.String("padding", "", "набивка: zero, pkcs7, ansix923, iso10126")
	feedback := flags.Int("feedback", 0, "ширина обратной связи CFB в байтах")
	keyHex := flags.String("key", "", "ключ в hex")
	ivHex := flags.String("iv", "", "IV или nonce в hex")
	logLevel := flags.String("log-level", "", "уровень журналирования: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alg":
			cfg.Algorithm = *alg
		case "block":
			cfg.BlockBits = *blockBits
		case "key-bits":
			cfg.KeyBits = *keyBits
		case "mode":
			cfg.Mode = *mode
		case "padding":
			cfg.Padding = *pad
		case "feedback":
			cfg.Feedback = *feedback
		case "key":
			cfg.Key = *keyHex
		case "iv":
			cfg.IV = *ivHex
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("нужно указать -in и -out")
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("создание логгера: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return process(processArgs{
		cfg:     cfg,
		logger:  logger,
		decrypt: *decrypt,
		genIV:   *genIV,
		length:  *length,
		inPath:  *inPath,
		outPath: *outPath,
	}, stdout)
}

type processArgs struct {
	cfg     config.Config
	logger  *zap.Logger
	decrypt bool
	genIV   bool
	length  int
	inPath  string
	outPath string
}

func process(p processArgs, stdout io.Writer) error {
	cipherCfg, err := p.cfg.Cipher()
	if err != nil {
		return err
	}
	cipherCfg.Logger = p.logger

	key, err := p.cfg.KeyBytes()
	if err != nil {
		return err
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: ключ не задан (-key или %s)", aeskalyna.ErrInvalidInput, config.EnvKey)
	}

	iv, err := p.cfg.IVBytes()
	if err != nil {
		return err
	}
	if p.genIV {
		if p.decrypt {
			return errors.New("-gen-iv допустим только при шифровании")
		}
		engine, err := aeskalyna.NewEngine(cipherCfg.Algorithm, cipherCfg.BlockBits, cipherCfg.KeyBits)
		if err != nil {
			return err
		}
		if iv, err = modes.GenerateIV(engine.BlockSize()); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "iv: %x\n", iv)
	}

	data, err := os.ReadFile(p.inPath)
	if err != nil {
		return fmt.Errorf("чтение %s: %w", p.inPath, err)
	}

	var (
		result    []byte
		operation string
	)
	if p.decrypt {
		operation = "decrypt"
		result, err = aeskalyna.Decrypt(cipherCfg, data, key, iv)
		if err != nil {
			return err
		}
		if p.length >= 0 {
			if p.length > len(result) {
				return fmt.Errorf("%w: -length %d больше расшифрованных данных (%d байт)",
					aeskalyna.ErrInvalidInput, p.length, len(result))
			}
			result = result[:p.length]
		}
	} else {
		operation = "encrypt"
		var n int
		result, n, err = aeskalyna.Encrypt(cipherCfg, data, key, iv)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "длина шифртекста: %d байт (исходная %d)\n", n, len(data))
	}

	if err := writeFile(p.outPath, result); err != nil {
		return err
	}

	p.logger.Info("файл обработан",
		zap.String("operation", operation),
		zap.Stringer("algorithm", cipherCfg.Algorithm),
		zap.Int("block_bits", cipherCfg.BlockBits),
		zap.Int("key_bits", cipherCfg.KeyBits),
		zap.Stringer("mode", cipherCfg.Mode),
		zap.String("in", p.inPath),
		zap.String("out", p.outPath),
		zap.Int("input_bytes", len(data)),
		zap.Int("output_bytes", len(result)),
	)
	return nil
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("создание %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("запись %s: %w", path, err)
	}
	return f.Sync()
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}
