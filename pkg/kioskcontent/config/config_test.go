package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
	"github.com/infokiosk/kiosk-content/pkg/kioskcontent/config"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_KEY", testSessionKey)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.StorageType)
}

func TestValidate(t *testing.T) {
	base := func() config.ServerConfig {
		return config.ServerConfig{
			Port:         "8080",
			DatabaseType: "memory",
			StorageType:  "memory",
			SessionKey:   testSessionKey,
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := base()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("short session key", func(t *testing.T) {
		cfg := base()
		cfg.SessionKey = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseType = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres needs a url", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseType = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("s3 needs a bucket", func(t *testing.T) {
		cfg := base()
		cfg.StorageType = "s3"
		assert.Error(t, cfg.Validate())
	})
}

func TestBuildRuntimeMemory(t *testing.T) {
	cfg := config.ServerConfig{
		Port:          "8080",
		DatabaseType:  "memory",
		StorageType:   "memory",
		SessionKey:    testSessionKey,
		AdminUser:     "admin",
		AdminPassword: "hunter22",
	}
	require.NoError(t, cfg.Validate())

	rt, err := cfg.BuildRuntime(context.Background())
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Service)
	require.NotNil(t, rt.Sessions)

	// The gate is wired: an anonymous mutation is refused.
	_, err = rt.Service.CreatePage(context.Background(), kioskcontent.CreatePageRequest{Title: "Nope"})
	assert.ErrorIs(t, err, kioskcontent.ErrUnauthorized)
}

func TestBuildRuntimeSQLite(t *testing.T) {
	cfg := config.ServerConfig{
		Port:          "8080",
		DatabaseType:  "sqlite",
		SQLitePath:    filepath.Join(t.TempDir(), "kiosk.db"),
		StorageType:   "fs",
		UploadDir:     t.TempDir(),
		SessionKey:    testSessionKey,
		AdminUser:     "admin",
		AdminPassword: "hunter22",
	}
	require.NoError(t, cfg.Validate())

	rt, err := cfg.BuildRuntime(context.Background())
	require.NoError(t, err)
	defer rt.Close()

	pages, err := rt.Service.ListPages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pages)
}
