package config

import (
	"os"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}
	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if generator, ok := flags["generator"].(string); ok && generator != "" {
		result.Generator.Backend = generator
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		result.Generator.Model = model
	}

	if format, ok := flags["format"].(string); ok && format != "" {
		result.Export.Format = format
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		result.Export.OutputDir = output
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		result.Export.Concurrency = concurrency
	}
	if ratio, ok := flags["pixel-ratio"].(float64); ok && ratio > 0 {
		result.Export.PixelRatio = ratio
	}

	if storage, ok := flags["storage"].(string); ok && storage != "" {
		result.Storage.Backend = storage
	}
	if path, ok := flags["storage-path"].(string); ok && path != "" {
		result.Storage.Path = path
	}
	if sink, ok := flags["sink"].(string); ok && sink != "" {
		result.Sink.Backend = sink
	}

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Carousel.Theme = theme
	}
	if tone, ok := flags["tone"].(string); ok && tone != "" {
		result.Carousel.Tone = tone
	}
	if slides, ok := flags["slides"].(int); ok && slides > 0 {
		result.Carousel.SlideCount = slides
	}
	if username, ok := flags["username"].(string); ok && username != "" {
		result.Carousel.Username = username
	}

	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = level
	}
	if format, ok := flags["log-format"].(string); ok && format != "" {
		result.Logging.Format = format
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration.
// GEMINI_API_KEY only fills an empty key.
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	result.Server.Host = getEnvOrDefault("CAROUSELKIT_HOST", result.Server.Host)
	if port := getEnvIntOrDefault("CAROUSELKIT_PORT", 0); port > 0 {
		result.Server.Port = port
	}

	result.Generator.Backend = getEnvOrDefault("CAROUSELKIT_GENERATOR", result.Generator.Backend)
	result.Generator.Model = getEnvOrDefault("CAROUSELKIT_MODEL", result.Generator.Model)
	result.Generator.Endpoint = getEnvOrDefault("CAROUSELKIT_GENERATOR_ENDPOINT", result.Generator.Endpoint)
	result.Generator.APIKey = getEnvOrDefault("CAROUSELKIT_API_KEY", result.Generator.APIKey)
	if result.Generator.APIKey == "" {
		result.Generator.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	result.Export.Format = getEnvOrDefault("CAROUSELKIT_EXPORT_FORMAT", result.Export.Format)
	result.Export.OutputDir = getEnvOrDefault("CAROUSELKIT_OUTPUT_DIR", result.Export.OutputDir)
	result.Export.PixelRatio = getEnvFloatOrDefault("CAROUSELKIT_PIXEL_RATIO", result.Export.PixelRatio)

	result.Storage.Backend = getEnvOrDefault("CAROUSELKIT_STORAGE", result.Storage.Backend)
	result.Storage.Path = getEnvOrDefault("CAROUSELKIT_STORAGE_PATH", result.Storage.Path)

	result.Sink.Backend = getEnvOrDefault("CAROUSELKIT_SINK", result.Sink.Backend)
	result.Sink.Bucket = getEnvOrDefault("CAROUSELKIT_SINK_BUCKET", result.Sink.Bucket)
	result.Sink.Endpoint = getEnvOrDefault("CAROUSELKIT_SINK_ENDPOINT", result.Sink.Endpoint)
	result.Sink.UsePathStyle = getEnvBoolOrDefault("CAROUSELKIT_SINK_PATH_STYLE", result.Sink.UsePathStyle)
	result.Sink.AccessKeyID = getEnvOrDefault("AWS_ACCESS_KEY_ID", result.Sink.AccessKeyID)
	result.Sink.SecretAccessKey = getEnvOrDefault("AWS_SECRET_ACCESS_KEY", result.Sink.SecretAccessKey)

	result.Carousel.Username = getEnvOrDefault("CAROUSELKIT_USERNAME", result.Carousel.Username)

	result.Logging.Level = getEnvOrDefault("CAROUSELKIT_LOG_LEVEL", result.Logging.Level)
	result.Logging.Format = getEnvOrDefault("CAROUSELKIT_LOG_FORMAT", result.Logging.Format)

	return result
}

// mergeInto merges source configuration into target configuration.
// Zero values in source never overwrite target.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.MaxBodyBytes != 0 {
		target.Server.MaxBodyBytes = source.Server.MaxBodyBytes
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	// Generator config
	if source.Generator.Backend != "" {
		target.Generator.Backend = source.Generator.Backend
	}
	if source.Generator.Model != "" {
		target.Generator.Model = source.Generator.Model
	}
	if source.Generator.ImageModel != "" {
		target.Generator.ImageModel = source.Generator.ImageModel
	}
	if source.Generator.APIKey != "" {
		target.Generator.APIKey = source.Generator.APIKey
	}
	if source.Generator.Endpoint != "" {
		target.Generator.Endpoint = source.Generator.Endpoint
	}
	if source.Generator.TimeoutSec != 0 {
		target.Generator.TimeoutSec = source.Generator.TimeoutSec
	}
	if source.Generator.RequestsPerMinute != 0 {
		target.Generator.RequestsPerMinute = source.Generator.RequestsPerMinute
	}
	if source.Generator.MaxRetries != 0 {
		target.Generator.MaxRetries = source.Generator.MaxRetries
	}

	// Export config
	if source.Export.Width != 0 {
		target.Export.Width = source.Export.Width
	}
	if source.Export.Height != 0 {
		target.Export.Height = source.Export.Height
	}
	if source.Export.PixelRatio != 0 {
		target.Export.PixelRatio = source.Export.PixelRatio
	}
	if source.Export.Format != "" {
		target.Export.Format = source.Export.Format
	}
	if source.Export.Concurrency != 0 {
		target.Export.Concurrency = source.Export.Concurrency
	}
	if source.Export.OutputDir != "" {
		target.Export.OutputDir = source.Export.OutputDir
	}

	// Storage config
	if source.Storage.Backend != "" {
		target.Storage.Backend = source.Storage.Backend
	}
	if source.Storage.Path != "" {
		target.Storage.Path = source.Storage.Path
	}

	// Sink config
	if source.Sink.Backend != "" {
		target.Sink.Backend = source.Sink.Backend
	}
	if source.Sink.Bucket != "" {
		target.Sink.Bucket = source.Sink.Bucket
	}
	if source.Sink.Region != "" {
		target.Sink.Region = source.Sink.Region
	}
	if source.Sink.Prefix != "" {
		target.Sink.Prefix = source.Sink.Prefix
	}
	if source.Sink.Endpoint != "" {
		target.Sink.Endpoint = source.Sink.Endpoint
	}
	if source.Sink.AccessKeyID != "" {
		target.Sink.AccessKeyID = source.Sink.AccessKeyID
	}
	if source.Sink.SecretAccessKey != "" {
		target.Sink.SecretAccessKey = source.Sink.SecretAccessKey
	}
	if source.Sink.UsePathStyle {
		target.Sink.UsePathStyle = true
	}

	// Carousel defaults
	if source.Carousel.Theme != "" {
		target.Carousel.Theme = source.Carousel.Theme
	}
	if source.Carousel.Tone != "" {
		target.Carousel.Tone = source.Carousel.Tone
	}
	if source.Carousel.SlideCount != 0 {
		target.Carousel.SlideCount = source.Carousel.SlideCount
	}
	if source.Carousel.Username != "" {
		target.Carousel.Username = source.Carousel.Username
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Format != "" {
		target.Logging.Format = source.Logging.Format
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}
	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
