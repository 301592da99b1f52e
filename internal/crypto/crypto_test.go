package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	for _, plaintext := range []string{"", "short", "<@U1> can you schedule a meeting?", "unicode: привет мир"} {
		ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		got, err := c.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncrypt_NonceVariesPerCall(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewCipher_KeyValidation(t *testing.T) {
	_, err := NewCipher(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = NewCipher("not-base64!!!")
	assert.Error(t, err)

	t.Setenv("MASTER_KEY", "")
	_, err = NewCipher("")
	assert.ErrorIs(t, err, ErrNoMasterKey)
}

func TestNewCipher_EnvFallback(t *testing.T) {
	t.Setenv("MASTER_KEY", testKey(t))

	c, err := NewCipher("")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("via env key")
	require.NoError(t, err)
	got, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "via env key", got)
}

func TestDecrypt_RejectsTampering(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("sensitive context")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecrypt_RejectsShortCiphertext(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("tiny")))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	a, err := NewCipher(testKey(t))
	require.NoError(t, err)
	b, err := NewCipher(testKey(t))
	require.NoError(t, err)

	ciphertext, err := a.Encrypt("sealed under a")
	require.NoError(t, err)

	_, err = b.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
