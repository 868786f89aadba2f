package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "disk", cfg.StorageDriver)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateS3RequiresBucket(t *testing.T) {
	cfg := &Config{
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		StorageDriver: "s3",
		CORSOrigins:   "http://localhost:5173",
	}
	assert.Error(t, cfg.Validate())

	cfg.S3Bucket = "crm-documents"
	assert.NoError(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://crm.example.com, ,http://localhost:5173 "}
	assert.Equal(t, []string{"https://crm.example.com", "http://localhost:5173"}, cfg.AllowedOrigins())
}

func TestLoadRejectsEmptyOrWildcardOrigins(t *testing.T) {
	for _, origins := range []string{"", " , ,", "*", "https://crm.example.com, *"} {
		t.Run(origins, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
			t.Setenv("STORAGE_DRIVER", "disk")
			t.Setenv("CORS_ALLOWED_ORIGINS", origins)

			cfg, err := Load()
			assert.Nil(t, cfg)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
			}
		})
	}
}
