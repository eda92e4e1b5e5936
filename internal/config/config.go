// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMinio  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Config holds all runtime configuration for the service.
type Config struct {
	DatabaseURL string // empty selects the in-memory song store
	JWTSecret   string
	Port        string
	AppEnv      string

	Storage StorageConfig
	Publish PublishConfig
}

// StorageConfig describes the object store that holds audio and image blobs.
// Both namespaces live in the same backend, each in its own bucket.
type StorageConfig struct {
	Driver         string
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
	AudioBucket    string
	ImageBucket    string
	PublicBase     string // browser-accessible base URL, e.g. "http://localhost:9000"
}

// PublishConfig bounds a single publish attempt.
type PublishConfig struct {
	StepTimeout   time.Duration
	MaxAudioBytes int64
	MaxImageBytes int64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "change_me_in_production"),
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),

		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", DriverMinio)),
			Endpoint:       getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			Region:         getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			UseSSL:         getEnvBool("STORAGE_USE_SSL", false),
			ForcePathStyle: getEnvBool("STORAGE_FORCE_PATH_STYLE", true),
			AudioBucket:    getEnv("STORAGE_AUDIO_BUCKET", "audio-objects"),
			ImageBucket:    getEnv("STORAGE_IMAGE_BUCKET", "image-objects"),
			PublicBase:     strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000"), "/"),
		},

		Publish: PublishConfig{
			StepTimeout:   getEnvDuration("PUBLISH_STEP_TIMEOUT", 30*time.Second),
			MaxAudioBytes: getEnvInt64("MAX_AUDIO_MB", 20) << 20,
			MaxImageBytes: getEnvInt64("MAX_IMAGE_MB", 5) << 20,
		},
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go duration strings ("45s") or plain seconds ("45").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("config: ignoring invalid %s=%q", key, v)
	return fallback
}
