package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// ConfigService resolves the effective configuration. Precedence, lowest
// first: built-in defaults, the global file, the local carouselkit.toml,
// CAROUSELKIT_* environment variables and finally command line flags.
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig loads every layer for workingDir and validates the result
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layers := []*entities.Config{s.GetDefaultConfig()}

	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if global != nil {
		layers = append(layers, global)
	}

	local, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if local != nil {
		layers = append(layers, local)
	}

	config := s.merger.Merge(layers...)
	config = s.merger.ApplyEnvVars(config)
	config = s.merger.ApplyFlags(config, flags)

	if err := s.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return config, nil
}

// GetDefaultConfig returns the built-in defaults; merging zero layers
// yields exactly those
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

// CreateGlobalConfig writes a commented default file to the global path
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

// CheckGenerator reports whether content generation can run with config.
// The gemini backend needs an API key; the outline backend needs nothing
// from the configuration. The returned error wraps
// entities.ErrMissingCredentials so callers can degrade instead of fail.
func CheckGenerator(config *entities.Config) error {
	if config.Generator.GetBackend() != entities.GeneratorGemini {
		return nil
	}
	if config.Generator.GetAPIKey() == "" {
		return fmt.Errorf("%w: set generator.api_key or GEMINI_API_KEY", entities.ErrMissingCredentials)
	}
	return nil
}

var _ ports.ConfigService = (*ConfigService)(nil)
