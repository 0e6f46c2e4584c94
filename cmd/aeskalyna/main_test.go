package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qwertymart/aes-kalyna/internal/config"
	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvAlgorithm, config.EnvBlockBits, config.EnvKeyBits, config.EnvMode,
		config.EnvPadding, config.EnvFeedback, config.EnvKey, config.EnvIV, config.EnvLogLevel,
	} {
		t.Setenv(name, "")
	}
	t.Setenv(config.EnvLogLevel, "error")
}

func TestEncryptDecryptFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	input := []byte(strings.Repeat("kalyna! ", 38))
	inPath := filepath.Join(dir, "plain.txt")
	encPath := filepath.Join(dir, "cipher.bin")
	decPath := filepath.Join(dir, "plain.out")
	require.NoError(t, os.WriteFile(inPath, input, 0o600))

	key := hex.EncodeToString(bytes.Repeat([]byte{0x2A}, 64))
	common := []string{"-alg", "kalyna", "-block", "256", "-key-bits", "512", "-mode", "cbc", "-key", key}

	var stdout bytes.Buffer
	err := run(append(common, "-gen-iv", "-in", inPath, "-out", encPath), &stdout)
	require.NoError(t, err)

	m := regexp.MustCompile(`iv: ([0-9a-f]+)`).FindStringSubmatch(stdout.String())
	require.Len(t, m, 2, stdout.String())
	assert.Len(t, m[1], 64)
	assert.Contains(t, stdout.String(), "длина шифртекста: 320")

	encrypted, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.Len(t, encrypted, 320)

	stdout.Reset()
	err = run(append(common, "-d", "-iv", m[1], "-in", encPath, "-out", decPath), &stdout)
	require.NoError(t, err)

	decrypted, err := os.ReadFile(decPath)
	require.NoError(t, err)
	require.Len(t, decrypted, 320)
	assert.Equal(t, input, decrypted[:len(input)])
	assert.Equal(t, make([]byte, 320-len(input)), decrypted[len(input):])

	err = run(append(common, "-d", "-iv", m[1], "-length", "304", "-in", encPath, "-out", decPath), &stdout)
	require.NoError(t, err)
	decrypted, err = os.ReadFile(decPath)
	require.NoError(t, err)
	assert.Equal(t, input, decrypted)
}

func TestTruncateToOriginalLength(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	input := []byte("короткий текст")
	inPath := filepath.Join(dir, "in")
	encPath := filepath.Join(dir, "enc")
	decPath := filepath.Join(dir, "dec")
	require.NoError(t, os.WriteFile(inPath, input, 0o600))

	t.Setenv(config.EnvMode, "ctr")
	t.Setenv(config.EnvKey, hex.EncodeToString(make([]byte, 32)))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-in", inPath, "-out", encPath}, &stdout))
	require.NoError(t, run([]string{"-d", "-length", "27", "-in", encPath, "-out", decPath}, &stdout))

	decrypted, err := os.ReadFile(decPath)
	require.NoError(t, err)
	assert.Equal(t, input, decrypted)

	err = run([]string{"-d", "-length", "100", "-in", encPath, "-out", decPath}, &stdout)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
}

func TestRunErrors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in")
	require.NoError(t, os.WriteFile(inPath, []byte("data"), 0o600))
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer

	err := run([]string{"-mode", "pcbc", "-in", inPath, "-out", out}, &stdout)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidConfiguration)

	err = run([]string{"-in", inPath, "-out", out}, &stdout)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput, "ключ не задан")

	err = run([]string{"-key", "00"}, &stdout)
	assert.Error(t, err)

	key := hex.EncodeToString(make([]byte, 32))
	err = run([]string{"-key", key, "-d", "-gen-iv", "-in", inPath, "-out", out}, &stdout)
	assert.Error(t, err)

	err = run([]string{"-key", key, "-in", filepath.Join(dir, "missing"), "-out", out}, &stdout)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
