package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Generator GeneratorConfig  `toml:"generator"`
	Export    ExportConfig     `toml:"export"`
	Storage   StorageConfig    `toml:"storage"`
	Sink      SinkConfig       `toml:"sink"`
	Carousel  CarouselDefaults `toml:"carousel"`
	Logging   LoggingConfig    `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink config: %w", err)
	}

	if err := c.Carousel.Validate(); err != nil {
		return fmt.Errorf("carousel config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}

	if s.MaxBodyBytes < 0 {
		return errors.New("max body bytes must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration.
// Exports of large carousels are slow, so the default is generous.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetMaxBodyBytes returns the request body limit (default 32MB, images travel as data URIs)
func (s ServerConfig) GetMaxBodyBytes() int64 {
	if s.MaxBodyBytes <= 0 {
		return 32 << 20
	}
	return s.MaxBodyBytes
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}
	return s.CORSOrigins
}

// GeneratorBackend selects the content generator implementation
type GeneratorBackend string

const (
	GeneratorGemini  GeneratorBackend = "gemini"
	GeneratorOutline GeneratorBackend = "outline"
)

// GeneratorConfig configures the content generation collaborator
type GeneratorConfig struct {
	Backend           string `toml:"backend"`
	Model             string `toml:"model"`
	ImageModel        string `toml:"image_model"`
	APIKey            string `toml:"api_key"`
	Endpoint          string `toml:"endpoint"`
	TimeoutSec        int    `toml:"timeout"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	MaxRetries        int    `toml:"max_retries"`
}

// Validate validates generator configuration. A missing API key is not an
// error here: it only blocks generation, not the rest of the application.
func (g GeneratorConfig) Validate() error {
	switch GeneratorBackend(g.Backend) {
	case "", GeneratorGemini, GeneratorOutline:
	default:
		return fmt.Errorf("invalid generator backend: %s (must be gemini or outline)", g.Backend)
	}

	if g.Endpoint != "" && !strings.HasPrefix(g.Endpoint, "http://") && !strings.HasPrefix(g.Endpoint, "https://") {
		return fmt.Errorf("generator endpoint must start with http:// or https://: %s", g.Endpoint)
	}

	if g.TimeoutSec < 0 || g.RequestsPerMinute < 0 || g.MaxRetries < 0 {
		return errors.New("generator limits must be non-negative")
	}

	return nil
}

// GetBackend returns the backend with default
func (g GeneratorConfig) GetBackend() GeneratorBackend {
	if g.Backend == "" {
		return GeneratorGemini
	}
	return GeneratorBackend(g.Backend)
}

// GetModel returns the text model with default
func (g GeneratorConfig) GetModel() string {
	if g.Model == "" {
		return "gemini-2.5-flash"
	}
	return g.Model
}

// GetImageModel returns the image model with default
func (g GeneratorConfig) GetImageModel() string {
	if g.ImageModel == "" {
		return "gemini-2.5-flash-image"
	}
	return g.ImageModel
}

// GetEndpoint returns the API base URL with default
func (g GeneratorConfig) GetEndpoint() string {
	if g.Endpoint == "" {
		return "https://generativelanguage.googleapis.com/v1beta"
	}
	return strings.TrimRight(g.Endpoint, "/")
}

// GetAPIKey returns the configured key, falling back to GEMINI_API_KEY
func (g GeneratorConfig) GetAPIKey() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}

// GetTimeout returns the per-request timeout
func (g GeneratorConfig) GetTimeout() time.Duration {
	if g.TimeoutSec <= 0 {
		return 90 * time.Second
	}
	return time.Duration(g.TimeoutSec) * time.Second
}

// GetRequestsPerMinute returns the rate limit with default
func (g GeneratorConfig) GetRequestsPerMinute() int {
	if g.RequestsPerMinute <= 0 {
		return 30
	}
	return g.RequestsPerMinute
}

// GetMaxRetries returns the retry budget with default
func (g GeneratorConfig) GetMaxRetries() int {
	if g.MaxRetries <= 0 {
		return 2
	}
	return g.MaxRetries
}

// MinRasterEdge is the smallest short edge accepted for exported images
const MinRasterEdge = 1000

// ExportConfig controls the capture stage and archive output
type ExportConfig struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	PixelRatio  float64 `toml:"pixel_ratio"`
	Format      string  `toml:"format"`
	Concurrency int     `toml:"concurrency"`
	OutputDir   string  `toml:"output_dir"`
}

// Validate validates export configuration
func (e ExportConfig) Validate() error {
	if e.Width < 0 || e.Height < 0 || e.PixelRatio < 0 || e.Concurrency < 0 {
		return errors.New("export dimensions must be non-negative")
	}

	switch e.Format {
	case "", "zip", "pdf":
	default:
		return fmt.Errorf("invalid export format: %s (must be zip or pdf)", e.Format)
	}

	short := float64(min(e.GetWidth(), e.GetHeight())) * e.GetPixelRatio()
	if short < MinRasterEdge {
		return fmt.Errorf("exported short edge is %.0fpx, at least %dpx required", short, MinRasterEdge)
	}

	return nil
}

// GetWidth returns the logical slide width
func (e ExportConfig) GetWidth() int {
	if e.Width <= 0 {
		return 360
	}
	return e.Width
}

// GetHeight returns the logical slide height
func (e ExportConfig) GetHeight() int {
	if e.Height <= 0 {
		return 450
	}
	return e.Height
}

// GetPixelRatio returns the density multiplier
func (e ExportConfig) GetPixelRatio() float64 {
	if e.PixelRatio <= 0 {
		return 3.0
	}
	return e.PixelRatio
}

// GetFormat returns the archive format
func (e ExportConfig) GetFormat() string {
	if e.Format == "" {
		return "zip"
	}
	return e.Format
}

// GetConcurrency returns the number of parallel rasterizations
func (e ExportConfig) GetConcurrency() int {
	if e.Concurrency <= 0 {
		return 4
	}
	return e.Concurrency
}

// GetOutputDir returns the local output directory
func (e ExportConfig) GetOutputDir() string {
	if e.OutputDir == "" {
		return "."
	}
	return e.OutputDir
}

// StorageConfig selects the saved-carousel library backend
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Validate validates storage configuration
func (s StorageConfig) Validate() error {
	switch s.Backend {
	case "", "file", "sqlite", "memory":
		return nil
	default:
		return fmt.Errorf("invalid storage backend: %s (must be file, sqlite or memory)", s.Backend)
	}
}

// GetBackend returns the backend with default
func (s StorageConfig) GetBackend() string {
	if s.Backend == "" {
		return "file"
	}
	return s.Backend
}

// GetPath returns the storage path with a backend specific default
func (s StorageConfig) GetPath() string {
	if s.Path != "" {
		return s.Path
	}
	home, _ := os.UserHomeDir()
	if s.GetBackend() == "sqlite" {
		return home + "/.local/share/carouselkit/library.db"
	}
	return home + "/.local/share/carouselkit/library.json"
}

// SinkConfig selects where exported archives are written
type SinkConfig struct {
	Backend         string `toml:"backend"`
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Prefix          string `toml:"prefix"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Validate validates sink configuration
func (s SinkConfig) Validate() error {
	switch s.Backend {
	case "", "local":
		return nil
	case "s3":
		if s.Bucket == "" {
			return errors.New("s3 sink requires a bucket")
		}
		return nil
	default:
		return fmt.Errorf("invalid sink backend: %s (must be local or s3)", s.Backend)
	}
}

// GetBackend returns the backend with default
func (s SinkConfig) GetBackend() string {
	if s.Backend == "" {
		return "local"
	}
	return s.Backend
}

// GetRegion returns the bucket region with default
func (s SinkConfig) GetRegion() string {
	if s.Region == "" {
		return "us-east-1"
	}
	return s.Region
}

// CarouselDefaults seeds a new editor session
type CarouselDefaults struct {
	Theme      string `toml:"theme"`
	Tone       string `toml:"tone"`
	SlideCount int    `toml:"slide_count"`
	Username   string `toml:"username"`
}

// Validate validates carousel defaults
func (c CarouselDefaults) Validate() error {
	if c.Theme != "" && !Theme(c.Theme).Valid() {
		return fmt.Errorf("unknown theme: %s", c.Theme)
	}
	if c.Tone != "" && !Tone(c.Tone).Valid() {
		return fmt.Errorf("unknown tone: %s", c.Tone)
	}
	if c.SlideCount != 0 && (c.SlideCount < MinSlideCount || c.SlideCount > MaxSlideCount) {
		return fmt.Errorf("slide count must be between %d and %d", MinSlideCount, MaxSlideCount)
	}
	return nil
}

// ToCarouselConfig builds the initial CarouselConfig
func (c CarouselDefaults) ToCarouselConfig() CarouselConfig {
	cfg := DefaultCarouselConfig()
	if c.Theme != "" {
		cfg.Theme = Theme(c.Theme)
	}
	if c.Tone != "" {
		cfg.Tone = Tone(c.Tone)
	}
	if c.SlideCount != 0 {
		cfg.SlideCount = c.SlideCount
	}
	return cfg
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	switch l.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", l.Format)
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}

// GetFormat returns the log format with default
func (l LoggingConfig) GetFormat() string {
	if l.Format == "" {
		return "console"
	}
	return l.Format
}
