package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "STORAGE_DRIVER", "STORAGE_AUDIO_BUCKET", "STORAGE_IMAGE_BUCKET",
		"PUBLISH_STEP_TIMEOUT", "MAX_AUDIO_MB", "MAX_IMAGE_MB", "STORAGE_PUBLIC_BASE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DriverMinio, cfg.Storage.Driver)
	assert.Equal(t, "audio-objects", cfg.Storage.AudioBucket)
	assert.Equal(t, "image-objects", cfg.Storage.ImageBucket)
	assert.Equal(t, 30*time.Second, cfg.Publish.StepTimeout)
	assert.Equal(t, int64(20<<20), cfg.Publish.MaxAudioBytes)
	assert.Equal(t, int64(5<<20), cfg.Publish.MaxImageBytes)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("STORAGE_PUBLIC_BASE", "https://cdn.example.com/")
	t.Setenv("PUBLISH_STEP_TIMEOUT", "45")
	t.Setenv("MAX_AUDIO_MB", "50")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, DriverS3, cfg.Storage.Driver)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBase)
	assert.Equal(t, 45*time.Second, cfg.Publish.StepTimeout)
	assert.Equal(t, int64(50<<20), cfg.Publish.MaxAudioBytes)
	assert.True(t, cfg.Storage.UseSSL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("PUBLISH_STEP_TIMEOUT", "soon")
	t.Setenv("MAX_IMAGE_MB", "-3")
	t.Setenv("STORAGE_FORCE_PATH_STYLE", "maybe")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.Publish.StepTimeout)
	assert.Equal(t, int64(5<<20), cfg.Publish.MaxImageBytes)
	assert.True(t, cfg.Storage.ForcePathStyle)
}
