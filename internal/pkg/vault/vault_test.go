package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptySecret)

	v, err := New("secret")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := New("system-secret")
	require.NoError(t, err)

	plaintext := "123456789012345"
	ciphertext, err := v.Encrypt("GUN123456", plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)
	assert.NotContains(t, ciphertext, plaintext)

	decrypted, err := v.Decrypt("GUN123456", ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	v, err := New("system-secret")
	require.NoError(t, err)

	first, err := v.Encrypt("GUN123456", "SBIN0001234")
	require.NoError(t, err)
	second, err := v.Encrypt("GUN123456", "SBIN0001234")
	require.NoError(t, err)

	// Fresh nonce per call
	assert.NotEqual(t, first, second)
}

func TestDecryptWrongUniqueID(t *testing.T) {
	v, err := New("system-secret")
	require.NoError(t, err)

	ciphertext, err := v.Encrypt("GUN123456", "123456789012345")
	require.NoError(t, err)

	_, err = v.Decrypt("KRI654321", ciphertext)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecryptWrongSecret(t *testing.T) {
	v1, err := New("secret-one")
	require.NoError(t, err)
	v2, err := New("secret-two")
	require.NoError(t, err)

	ciphertext, err := v1.Encrypt("GUN123456", "123456789012345")
	require.NoError(t, err)

	_, err = v2.Decrypt("GUN123456", ciphertext)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecryptGarbage(t *testing.T) {
	v, err := New("system-secret")
	require.NoError(t, err)

	for _, input := range []string{"", "not-base64!!!", "aGVsbG8="} {
		_, err := v.Decrypt("GUN123456", input)
		assert.ErrorIs(t, err, ErrDecryptFailed, "input %q", input)
	}
}
