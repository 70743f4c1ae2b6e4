package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"AGREEMENT_APP_NAME",
	"AGREEMENT_APP_ENV",
	"AGREEMENT_APP_PORT",
	"AGREEMENT_ASSETS_SOURCE",
	"AGREEMENT_ASSETS_DIR",
	"AGREEMENT_ASSETS_S3_BUCKET",
	"AGREEMENT_ASSETS_S3_ACCESS_KEY",
	"AGREEMENT_ASSETS_S3_SECRET_KEY",
	"AGREEMENT_ASSETS_S3_ENDPOINT",
	"AGREEMENT_EXPORT_DIR",
	"AGREEMENT_EXPORT_DPI",
	"AGREEMENT_EXPORT_RETENTION",
	"AGREEMENT_HTTP_MAX_FIELD_LENGTH",
	"AGREEMENT_HTTP_CORS_ALLOW_ORIGINS",
	"AGREEMENT_REDIS_ENABLED",
	"AGREEMENT_REDIS_PORT",
	"AGREEMENT_TELEMETRY_SAMPLING_RATIO",
}

// isolateEnv clears every key used by these tests and restores them afterwards
func isolateEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(envKeys))
	for _, k := range envKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "hotel-agreement", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "5001", cfg.App.Port)
		assert.Equal(t, AssetSourceFilesystem, cfg.Assets.Source)
		assert.Equal(t, "static", cfg.Assets.Dir)
		assert.Equal(t, "hotel_agreement", cfg.Layout.Default)
		assert.Equal(t, "ALL_AGREEMENTS", cfg.Export.Dir)
		assert.Equal(t, 100.0, cfg.Export.DPI)
		assert.Equal(t, time.Hour, cfg.Export.Retention)
		assert.Equal(t, 200, cfg.HTTP.MaxFieldLength)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.False(t, cfg.Telemetry.Enabled)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with AGREEMENT prefix", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_APP_NAME", "test-app")
		os.Setenv("AGREEMENT_APP_PORT", "9000")
		os.Setenv("AGREEMENT_ASSETS_DIR", "/srv/assets")
		os.Setenv("AGREEMENT_EXPORT_DIR", "/tmp/out")
		os.Setenv("AGREEMENT_EXPORT_DPI", "150")
		os.Setenv("AGREEMENT_EXPORT_RETENTION", "30m")
		os.Setenv("AGREEMENT_HTTP_MAX_FIELD_LENGTH", "50")
		os.Setenv("AGREEMENT_REDIS_ENABLED", "true")
		os.Setenv("AGREEMENT_REDIS_PORT", "6380")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "/srv/assets", cfg.Assets.Dir)
		assert.Equal(t, "/tmp/out", cfg.Export.Dir)
		assert.Equal(t, 150.0, cfg.Export.DPI)
		assert.Equal(t, 30*time.Minute, cfg.Export.Retention)
		assert.Equal(t, 50, cfg.HTTP.MaxFieldLength)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
	})

	t.Run("rejects unknown asset source", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_ASSETS_SOURCE", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "assets.source")
	})

	t.Run("s3 source requires bucket and credentials", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_ASSETS_SOURCE", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "assets.s3.bucket is required")

		os.Setenv("AGREEMENT_ASSETS_S3_BUCKET", "assets")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access_key")

		os.Setenv("AGREEMENT_ASSETS_S3_ACCESS_KEY", "key")
		os.Setenv("AGREEMENT_ASSETS_S3_SECRET_KEY", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "assets", cfg.Assets.S3.Bucket)
		assert.Equal(t, "us-east-1", cfg.Assets.S3.Region)
	})

	t.Run("validates sampling ratio", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("negative dpi is rejected", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_EXPORT_DPI", "-10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "export.dpi")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("rejects wildcard CORS origin", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_APP_ENV", "production")
		os.Setenv("AGREEMENT_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins cannot be '*'")
	})

	t.Run("requires TLS for s3 assets", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_APP_ENV", "production")
		os.Setenv("AGREEMENT_ASSETS_SOURCE", "s3")
		os.Setenv("AGREEMENT_ASSETS_S3_BUCKET", "assets")
		os.Setenv("AGREEMENT_ASSETS_S3_ACCESS_KEY", "key")
		os.Setenv("AGREEMENT_ASSETS_S3_SECRET_KEY", "secret")
		os.Setenv("AGREEMENT_ASSETS_S3_ENDPOINT", "http://minio:9000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "use_ssl")
	})

	t.Run("passes with specific origins", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("AGREEMENT_APP_ENV", "production")
		os.Setenv("AGREEMENT_HTTP_CORS_ALLOW_ORIGINS", "https://hotel.example.com")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, []string{"https://hotel.example.com"}, cfg.HTTP.CORSAllowOrigins)
	})
}
