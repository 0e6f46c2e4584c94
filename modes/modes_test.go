package modes

import (
	"bytes"
	stdaes "crypto/aes"
	"crypto/cipher"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Qwertymart/aes-kalyna/aes"
	"github.com/Qwertymart/aes-kalyna/internal/cryptoerr"
	"github.com/Qwertymart/aes-kalyna/kalyna"
	"github.com/Qwertymart/aes-kalyna/padding"
)

func testEngines(t *testing.T) []Engine {
	t.Helper()

	var engines []Engine
	for _, bits := range []int{128, 192, 256} {
		a, err := aes.New(bits)
		require.NoError(t, err)
		engines = append(engines, a)
	}
	for _, pair := range [][2]int{{128, 128}, {128, 256}, {256, 256}, {256, 512}, {512, 512}} {
		k, err := kalyna.New(pair[0], pair[1])
		require.NoError(t, err)
		engines = append(engines, k)
	}
	return engines
}

func keySize(e Engine) int {
	return e.(interface{ KeySize() int }).KeySize()
}

func randomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	rng.Read(b)
	return b
}

// Сверка с реализациями режимов из crypto/cipher поверх тех же блоков.
func TestMatchesStandardModes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, engine := range testEngines(t) {
		bs := engine.BlockSize()
		key := randomBytes(rng, keySize(engine))
		iv := randomBytes(rng, bs)

		block, err := engine.NewCipher(key)
		require.NoError(t, err)

		for _, length := range []int{5 * bs, 5*bs + 3} {
			plaintext := randomBytes(rng, length)
			padded := make([]byte, (length+bs-1)/bs*bs)
			copy(padded, plaintext)

			want := map[Mode][]byte{
				ECB: make([]byte, len(padded)),
				CBC: make([]byte, len(padded)),
				CFB: make([]byte, length),
				OFB: make([]byte, length),
				CTR: make([]byte, length),
			}
			for i := 0; i < len(padded); i += bs {
				block.Encrypt(want[ECB][i:], padded[i:i+bs])
			}
			cipher.NewCBCEncrypter(block, iv).CryptBlocks(want[CBC], padded)
			cipher.NewCFBEncrypter(block, iv).XORKeyStream(want[CFB], plaintext)
			cipher.NewOFB(block, iv).XORKeyStream(want[OFB], plaintext)

			ctrIV := append(append([]byte(nil), iv[:bs/2]...), make([]byte, bs/2)...)
			cipher.NewCTR(block, ctrIV).XORKeyStream(want[CTR], plaintext)

			for mode, expected := range want {
				modeIV := iv
				if mode == CTR {
					modeIV = iv[:bs/2]
				}

				ct, n, err := Encrypt(engine, mode, plaintext, key, modeIV)
				require.NoError(t, err)
				assert.Equal(t, len(padded), n)
				require.Len(t, ct, n)
				require.Equal(t, expected, ct[:len(expected)], "%v %v len=%d", engine, mode, length)

				// потоковым режимам не нужен хвост набивки
				input := ct
				if mode != ECB && mode != CBC {
					input = ct[:length]
				}
				pt, err := Decrypt(engine, mode, input, key, modeIV)
				require.NoError(t, err)
				require.Equal(t, plaintext, pt[:length], "%v %v", engine, mode)
			}
		}
	}
}

// AES-256, ключ 00..1F, IV из 0xFF, 32 нулевых байта в CFB: шифртекст
// равен гамме E(IV) || E(E(IV)).
func TestCFBZeroPlaintextScenario(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	iv := bytes.Repeat([]byte{0xFF}, 16)
	plaintext := make([]byte, 32)

	ref, err := stdaes.NewCipher(key)
	require.NoError(t, err)
	want := make([]byte, 32)
	ref.Encrypt(want[:16], iv)
	ref.Encrypt(want[16:], want[:16])

	engine, err := aes.New(256)
	require.NoError(t, err)

	ct, n, err := Encrypt(engine, CFB, plaintext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	assert.Equal(t, want, ct)

	pt, err := Decrypt(engine, CFB, ct, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)
}

func TestCFBPartialFeedback(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	for _, engine := range testEngines(t) {
		bs := engine.BlockSize()
		key := randomBytes(rng, keySize(engine))
		iv := randomBytes(rng, bs)
		plaintext := randomBytes(rng, 4*bs+1)

		full, _, err := Encrypt(engine, CFB, plaintext, key, iv)
		require.NoError(t, err)
		explicit, _, err := Encrypt(engine, CFB, plaintext, key, iv, WithFeedback(bs))
		require.NoError(t, err)
		assert.Equal(t, full, explicit)

		for _, s := range []int{1, 6, bs / 2, bs - 1} {
			ct, _, err := Encrypt(engine, CFB, plaintext, key, iv, WithFeedback(s))
			require.NoError(t, err)
			assert.Equal(t, full[:bs], ct[:bs], "первый блок не зависит от s")
			assert.NotEqual(t, full[bs:2*bs], ct[bs:2*bs], "s=%d", s)

			pt, err := Decrypt(engine, CFB, ct, key, iv, WithFeedback(s))
			require.NoError(t, err)
			require.Equal(t, plaintext, pt[:len(plaintext)], "%v s=%d", engine, s)
		}
	}
}

// Обратная связь s: регистр = регистр[s:] || шифртекст[:s].
func TestCFBFeedbackRegister(t *testing.T) {
	engine, err := aes.New(128)
	require.NoError(t, err)
	key := make([]byte, 16)
	iv := bytes.Repeat([]byte{0x11}, 16)
	plaintext := bytes.Repeat([]byte{0x22}, 32)
	const s = 6

	ct, _, err := Encrypt(engine, CFB, plaintext, key, iv, WithFeedback(s))
	require.NoError(t, err)

	block, err := engine.NewCipher(key)
	require.NoError(t, err)

	register := append(append([]byte(nil), iv[s:]...), ct[:s]...)
	keystream := make([]byte, 16)
	block.Encrypt(keystream, register)
	for i := 0; i < 16; i++ {
		require.Equal(t, plaintext[16+i]^keystream[i], ct[16+i])
	}
}

func TestIncrementCounter(t *testing.T) {
	tests := []struct {
		in, want []byte
	}{
		{[]byte{0x00, 0x00}, []byte{0x00, 0x01}},
		{[]byte{0x00, 0xFF}, []byte{0x01, 0x00}},
		{[]byte{0x12, 0xFF, 0xFF}, []byte{0x13, 0x00, 0x00}},
		{bytes.Repeat([]byte{0xFF}, 8), make([]byte, 8)},
		{bytes.Repeat([]byte{0xFF}, 32), make([]byte, 32)},
	}
	for _, tt := range tests {
		incrementCounter(tt.in)
		assert.Equal(t, tt.want, tt.in)
	}
}

// Переполнение счетчика не затрагивает nonce.
func TestCTRCounterWrapKeepsNonce(t *testing.T) {
	engine, err := kalyna.New(256, 256)
	require.NoError(t, err)
	key := make([]byte, 32)
	nonce := bytes.Repeat([]byte{0xAB}, 16)
	iv := append(append([]byte(nil), nonce...), bytes.Repeat([]byte{0xFF}, 16)...)

	ct, _, err := Encrypt(engine, CTR, make([]byte, 64), key, iv)
	require.NoError(t, err)

	block, err := engine.NewCipher(key)
	require.NoError(t, err)

	first := make([]byte, 32)
	block.Encrypt(first, iv)
	assert.Equal(t, first, ct[:32])

	wrapped := append(append([]byte(nil), nonce...), make([]byte, 16)...)
	second := make([]byte, 32)
	block.Encrypt(second, wrapped)
	assert.Equal(t, second, ct[32:])
}

func TestCTRDefaultNonce(t *testing.T) {
	engine, err := aes.New(128)
	require.NoError(t, err)
	key := bytes.Repeat([]byte{0x01}, 16)
	plaintext := []byte("счетчик по умолчанию")

	implicit, _, err := Encrypt(engine, CTR, plaintext, key, nil)
	require.NoError(t, err)

	explicit, _, err := Encrypt(engine, CTR, plaintext, key, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)

	full, _, err := Encrypt(engine, CTR, plaintext, key, []byte{0, 1, 2, 3, 4, 5, 6, 7, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, explicit, full)

	_, _, err = Encrypt(engine, CTR, plaintext, key, []byte{1, 2, 3})
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
}

func TestECBDeterminism(t *testing.T) {
	for _, engine := range testEngines(t) {
		bs := engine.BlockSize()
		key := bytes.Repeat([]byte{0x5C}, keySize(engine))
		plaintext := bytes.Repeat([]byte("0123456789abcdef"), 2*bs/16)

		ct, n, err := Encrypt(engine, ECB, plaintext, key, nil)
		require.NoError(t, err)
		require.Equal(t, 2*bs, n)
		assert.Equal(t, ct[:bs], ct[bs:], "%v", engine)
	}
}

func TestCBCWrongIVCorruptsFirstBlockOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, engine := range testEngines(t) {
		bs := engine.BlockSize()
		key := randomBytes(rng, keySize(engine))
		iv := randomBytes(rng, bs)
		plaintext := randomBytes(rng, 4*bs)

		ct, _, err := Encrypt(engine, CBC, plaintext, key, iv)
		require.NoError(t, err)

		wrongIV := append([]byte(nil), iv...)
		wrongIV[0] ^= 0x80
		pt, err := Decrypt(engine, CBC, ct, key, wrongIV)
		require.NoError(t, err)

		assert.NotEqual(t, plaintext[:bs], pt[:bs])
		assert.Equal(t, plaintext[bs:], pt[bs:], "%v", engine)
	}
}

func TestStreamModesArbitraryLength(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	engine, err := kalyna.New(512, 512)
	require.NoError(t, err)
	key := randomBytes(rng, 64)
	iv := randomBytes(rng, 64)

	for _, mode := range []Mode{CFB, OFB, CTR} {
		for _, length := range []int{0, 1, 63, 64, 65, 200} {
			plaintext := randomBytes(rng, length)

			ct, n, err := Encrypt(engine, mode, plaintext, key, iv)
			require.NoError(t, err)
			assert.Zero(t, n%64)

			pt, err := Decrypt(engine, mode, ct[:length], key, iv)
			require.NoError(t, err)
			require.Equal(t, plaintext, pt, "%v len=%d", mode, length)
		}
	}
}

func TestBlockModesRequireAlignment(t *testing.T) {
	engine, err := aes.New(192)
	require.NoError(t, err)
	key := make([]byte, 24)
	iv := make([]byte, 16)

	for _, mode := range []Mode{ECB, CBC} {
		_, err := Decrypt(engine, mode, make([]byte, 17), key, iv)
		assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput, "%v", mode)
	}
}

func TestZeroPaddingLength(t *testing.T) {
	engine, err := aes.New(128)
	require.NoError(t, err)
	key := make([]byte, 16)
	iv := make([]byte, 16)

	for length, want := range map[int]int{0: 0, 1: 16, 16: 16, 17: 32, 31: 32} {
		_, n, err := Encrypt(engine, CBC, make([]byte, length), key, iv)
		require.NoError(t, err)
		assert.Equal(t, want, n, "len=%d", length)
	}
}

func TestPaddingOption(t *testing.T) {
	engine, err := kalyna.New(128, 256)
	require.NoError(t, err)
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := bytes.Repeat([]byte{0x24}, 16)
	plaintext := []byte("PKCS#7 снимается при расшифровании")

	c, err := New(engine, CBC, WithPadding(padding.PKCS7Padding{}))
	require.NoError(t, err)

	ct, n, err := c.Encrypt(plaintext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, (len(plaintext)/16+1)*16, n)

	pt, err := c.Decrypt(ct, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)

	wrongKey := bytes.Repeat([]byte{0x43}, 32)
	_, err = c.Decrypt(ct, wrongKey, iv)
	if err != nil {
		assert.ErrorIs(t, err, padding.ErrInvalidPadding)
	}
}

func TestInputValidation(t *testing.T) {
	engine, err := aes.New(128)
	require.NoError(t, err)
	key := make([]byte, 16)

	_, _, err = Encrypt(engine, CBC, []byte("x"), key, make([]byte, 8))
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
	_, _, err = Encrypt(engine, OFB, []byte("x"), key, nil)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
	_, err = Decrypt(engine, CFB, []byte("x"), key, make([]byte, 17))
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
	_, _, err = Encrypt(engine, ECB, []byte("x"), make([]byte, 32), nil)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidInput)
}

func TestConfigurationValidation(t *testing.T) {
	engine, err := aes.New(128)
	require.NoError(t, err)

	for _, s := range []int{-1, 17, 32} {
		_, err := New(engine, CFB, WithFeedback(s))
		assert.ErrorIs(t, err, cryptoerr.ErrInvalidConfiguration, "s=%d", s)
	}

	_, err = New(engine, Mode(42))
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidConfiguration)
	_, err = New(nil, ECB)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidConfiguration)

	c, err := New(engine, OFB, WithPadding(nil), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, OFB, c.Mode())
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ECB, CBC, CFB, OFB, CTR} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode(" cfb ")
	require.NoError(t, err)
	assert.Equal(t, CFB, got)

	_, err = ParseMode("PCBC")
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidConfiguration)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestGenerateIV(t *testing.T) {
	a, err := GenerateIV(32)
	require.NoError(t, err)
	b, err := GenerateIV(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestLoggerOmitsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := aes.New(256)
	require.NoError(t, err)

	c, err := New(engine, CTR, WithLogger(zap.New(core)))
	require.NoError(t, err)

	key := bytes.Repeat([]byte{0x99}, 32)
	ct, _, err := c.Encrypt([]byte("hello"), key, nil)
	require.NoError(t, err)
	_, err = c.Decrypt(ct, key, nil)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "CTR", fields["mode"])
	assert.Equal(t, int64(16), fields["block_size"])
	assert.Equal(t, int64(5), fields["input_len"])
	assert.Equal(t, int64(16), fields["output_len"])
	for _, e := range entries {
		assert.NotContains(t, e.ContextMap(), "key")
		assert.NotContains(t, e.ContextMap(), "iv")
	}
}

func TestConcurrentUse(t *testing.T) {
	engine, err := kalyna.New(256, 512)
	require.NoError(t, err)
	c, err := New(engine, CBC)
	require.NoError(t, err)

	key := bytes.Repeat([]byte{0x07}, 64)
	iv := bytes.Repeat([]byte{0x70}, 32)
	plaintext := bytes.Repeat([]byte("параллельно"), 40)

	want, _, err := c.Encrypt(plaintext, key, iv)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, _ = c.Encrypt(plaintext, key, iv)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
