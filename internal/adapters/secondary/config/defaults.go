package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("CAROUSELKIT_HOST", "localhost"),
			Port:            getEnvIntOrDefault("CAROUSELKIT_PORT", 8080),
			ReadTimeout:     getEnvIntOrDefault("CAROUSELKIT_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("CAROUSELKIT_WRITE_TIMEOUT", 120),
			ShutdownTimeout: getEnvIntOrDefault("CAROUSELKIT_SHUTDOWN_TIMEOUT", 5),
			MaxBodyBytes:    int64(getEnvIntOrDefault("CAROUSELKIT_MAX_BODY_BYTES", 32<<20)),
			CORSOrigins: getEnvSliceOrDefault("CAROUSELKIT_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			}),
		},
		Generator: entities.GeneratorConfig{
			Backend:           getEnvOrDefault("CAROUSELKIT_GENERATOR", string(entities.GeneratorGemini)),
			Model:             getEnvOrDefault("CAROUSELKIT_MODEL", "gemini-2.5-flash"),
			ImageModel:        getEnvOrDefault("CAROUSELKIT_IMAGE_MODEL", "gemini-2.5-flash-image"),
			Endpoint:          "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSec:        getEnvIntOrDefault("CAROUSELKIT_GENERATOR_TIMEOUT", 90),
			RequestsPerMinute: getEnvIntOrDefault("CAROUSELKIT_REQUESTS_PER_MINUTE", 30),
			MaxRetries:        2,
		},
		Export: entities.ExportConfig{
			Width:       360,
			Height:      450,
			PixelRatio:  3.0,
			Format:      getEnvOrDefault("CAROUSELKIT_EXPORT_FORMAT", "zip"),
			Concurrency: getEnvIntOrDefault("CAROUSELKIT_EXPORT_CONCURRENCY", 4),
			OutputDir:   getEnvOrDefault("CAROUSELKIT_OUTPUT_DIR", "."),
		},
		Storage: entities.StorageConfig{
			Backend: getEnvOrDefault("CAROUSELKIT_STORAGE", "file"),
			Path:    getEnvOrDefault("CAROUSELKIT_STORAGE_PATH", ""),
		},
		Sink: entities.SinkConfig{
			Backend: getEnvOrDefault("CAROUSELKIT_SINK", "local"),
			Region:  getEnvOrDefault("AWS_REGION", "us-east-1"),
		},
		Carousel: entities.CarouselDefaults{
			Theme:      string(entities.DefaultTheme),
			Tone:       string(entities.ToneViral),
			SlideCount: 5,
		},
		Logging: entities.LoggingConfig{
			Level:  getEnvOrDefault("CAROUSELKIT_LOG_LEVEL", "info"),
			Format: getEnvOrDefault("CAROUSELKIT_LOG_FORMAT", "console"),
		},
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloatOrDefault returns environment variable as float64 or default
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
