package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TargetRoot  string
	MediaSource string
	ArtifactDir string
	ScratchDir  string
	DryRun      bool
	MirrorURI   string

	LogLevel string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelServiceName string
	OtelInsecure    bool
	Version         string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		TargetRoot:  getEnv("TARGET_ROOT", "/target"),
		MediaSource: getEnv("MEDIA_SOURCE", "/cdrom"),
		ArtifactDir: getEnv("ARTIFACT_DIR", "/var/log/installer"),
		ScratchDir:  getEnv("SCRATCH_DIR", ""),
		DryRun:      getEnvBool("DRY_RUN", false),
		MirrorURI:   getEnv("MIRROR_URI", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		OtelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "aptstage"),
		OtelInsecure:    getEnvBool("OTEL_INSECURE", true),
		Version:         getEnv("VERSION", "dev"),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
