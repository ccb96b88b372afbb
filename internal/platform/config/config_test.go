package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "postgres://ledger@localhost/ledger")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ledger.commits", cfg.CommitEventsChannel)
	assert.Equal(t, int64(10<<20), cfg.Ledger.MaxUploadBytes)
	assert.Empty(t, cfg.Ledger.AllowedMimeTypes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_BACKEND", "MEMORY")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("ALLOWED_MIME_TYPES", "image/png, application/pdf")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, int64(1024), cfg.Ledger.MaxUploadBytes)
	assert.Equal(t, []string{"image/png", "application/pdf"}, cfg.Ledger.AllowedMimeTypes)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLedgerConfig_MimeTypeAllowed(t *testing.T) {
	open := LedgerConfig{}
	assert.True(t, open.MimeTypeAllowed("text/plain"))

	restricted := LedgerConfig{AllowedMimeTypes: []string{"image/png"}}
	assert.True(t, restricted.MimeTypeAllowed("IMAGE/PNG"))
	assert.False(t, restricted.MimeTypeAllowed("text/plain"))
}
