package pseudonym

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "encryption.key")

	generated, err := GenerateKey(path)
	require.NoError(t, err)
	require.Len(t, generated, KeySize)

	loaded, err := LoadKey(path, "")
	require.NoError(t, err)
	assert.Equal(t, generated, loaded)
}

func TestGenerateKeyRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption.key")

	_, err := GenerateKey(path)
	require.NoError(t, err)

	_, err = GenerateKey(path)
	require.Error(t, err)
}

func TestLoadKeyMissing(t *testing.T) {
	_, err := LoadKey(filepath.Join(t.TempDir(), "nope.key"), "")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLoadKeyWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption.key")
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0600))

	_, err := LoadKey(path, "")
	require.ErrorIs(t, err, ErrKeyCorrupt)
}

func TestLoadKeyOverridePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption.key")
	_, err := GenerateKey(path)
	require.NoError(t, err)

	override := []byte("fedcba9876543210")
	loaded, err := LoadKey(path, base64.StdEncoding.EncodeToString(override))
	require.NoError(t, err)
	assert.Equal(t, override, loaded, "override must win over the key file")
}

func TestLoadKeyOverrideCorrupt(t *testing.T) {
	_, err := LoadKey("", "not!!base64")
	require.ErrorIs(t, err, ErrKeyCorrupt)

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = LoadKey("", short)
	require.ErrorIs(t, err, ErrKeyCorrupt)
}
