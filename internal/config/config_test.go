package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "marketplace-service", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, StorageCloudinary, cfg.Storage.Provider)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, 12, cfg.Upload.MaxFiles)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORAGE_PROVIDER", "S3")
	t.Setenv("ITEM_CACHE_TTL", "2m")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, StorageS3, cfg.Storage.Provider)
	assert.Equal(t, 2*time.Minute, cfg.Redis.ItemTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsUnknownStorageProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "ftp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_PROVIDER")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Provider: StorageS3}}
	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{"MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "UPLOAD_MAX_FILE_SIZE", "UPLOAD_MAX_FILES"} {
		assert.Contains(t, err.Error(), want)
	}
}
