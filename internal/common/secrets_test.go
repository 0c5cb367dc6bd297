package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsRoundTrip(t *testing.T) {
	secrets, err := NewSecrets("test-key-material")
	require.NoError(t, err)

	encrypted, err := secrets.Encrypt("my-provider-api-key")
	require.NoError(t, err)
	assert.NotEqual(t, "my-provider-api-key", encrypted)

	decrypted, err := secrets.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "my-provider-api-key", decrypted)
}

func TestSecretsEmptyRoundTrip(t *testing.T) {
	secrets, err := NewSecrets("test-key-material")
	require.NoError(t, err)

	encrypted, err := secrets.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)

	decrypted, err := secrets.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", decrypted)
}

func TestSecretsNonceVariesPerEncryption(t *testing.T) {
	secrets, err := NewSecrets("test-key-material")
	require.NoError(t, err)

	first, err := secrets.Encrypt("value")
	require.NoError(t, err)
	second, err := secrets.Encrypt("value")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSecretsWrongKeyFails(t *testing.T) {
	secrets, err := NewSecrets("key-one")
	require.NoError(t, err)

	encrypted, err := secrets.Encrypt("value")
	require.NoError(t, err)

	other, err := NewSecrets("key-two")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	require.Error(t, err)
}

func TestSecretsGarbageInput(t *testing.T) {
	secrets, err := NewSecrets("test-key-material")
	require.NoError(t, err)

	_, err = secrets.Decrypt("not-base64!!!")
	require.Error(t, err)

	_, err = secrets.Decrypt("c2hvcnQ=")
	require.Error(t, err)
}

func TestSecretsRequiresKey(t *testing.T) {
	_, err := NewSecrets("")
	require.Error(t, err)

	// The startup error tells the operator where the key comes from
	assert.Contains(t, err.Error(), "secrets.key")
	assert.Contains(t, err.Error(), "FOLIO_SECRETS_KEY")
}
