package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "encryption.key", cfg.KeyFile)
	assert.Equal(t, "fpe", cfg.PseudonymMode)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 100, cfg.ChunkSize)
	assert.False(t, cfg.DebugPNG)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DEID_LOG_LEVEL", "debug")
	t.Setenv("DEID_WORKERS", "2")
	t.Setenv("DEID_PSEUDONYM_MODE", "mapper")
	t.Setenv("DEID_ENCRYPTION_KEY", "c2l4dGVlbi1ieXRlLWtleQ==")
	t.Setenv("DEID_DEBUG_PNG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "mapper", cfg.PseudonymMode)
	assert.Equal(t, "c2l4dGVlbi1ieXRlLWtleQ==", cfg.KeyBase64)
	assert.True(t, cfg.DebugPNG)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("DEID_PSEUDONYM_MODE", "rot13")
	_, err := Load()
	require.Error(t, err)
}
