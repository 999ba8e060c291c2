package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/config"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/export"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/generator"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/logging"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/storage"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// Flags the config merger understands, grouped by type
var (
	stringOverrides = []string{
		"host", "generator", "model", "format", "output", "storage", "storage-path",
		"sink", "theme", "tone", "username", "log-level", "log-format",
	}
	intOverrides   = []string{"port", "concurrency", "slides"}
	floatOverrides = []string{"pixel-ratio"}
)

// app holds what every command needs
type app struct {
	config  *entities.Config
	logger  *logging.Logger
	fs      ports.FileSystem
	metrics *monitoring.Metrics
}

// newApp loads configuration with full precedence and builds the logger
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.GetLevel()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = entities.LogLevelDebug
	}
	logger, err := logging.New(level, cfg.Logging.GetFormat())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &app{
		config:  cfg,
		logger:  logger,
		fs:      ports.NewRealFileSystem(),
		metrics: monitoring.NewMetrics(),
	}, nil
}

// close flushes the logger; stderr sync errors are expected on terminals
func (a *app) close() {
	_ = a.logger.Sync()
}

// loadConfig runs defaults -> global -> local -> env -> flags
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewTOMLLoaderWithPath(path)
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	service := services.NewConfigService(loader, config.NewConfigMerger())
	cfg, err := service.LoadConfig(cmd.Context(), workingDir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// collectFlags returns the explicitly set override flags of cmd
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	for _, name := range stringOverrides {
		if changed(name) {
			if v, err := cmd.Flags().GetString(name); err == nil {
				flags[name] = v
			}
		}
	}
	for _, name := range intOverrides {
		if changed(name) {
			if v, err := cmd.Flags().GetInt(name); err == nil {
				flags[name] = v
			}
		}
	}
	for _, name := range floatOverrides {
		if changed(name) {
			if v, err := cmd.Flags().GetFloat64(name); err == nil {
				flags[name] = v
			}
		}
	}
	return flags
}

// newGenerator selects the content generator. An outline file always wins
// over the configured backend.
func (a *app) newGenerator(outlinePath string) (ports.ContentGenerator, *generator.OutlineGenerator, error) {
	if outlinePath == "" && a.config.Generator.GetBackend() == entities.GeneratorOutline {
		return nil, nil, errors.New("the outline generator needs --outline")
	}

	var gen ports.ContentGenerator
	var og *generator.OutlineGenerator
	if outlinePath != "" {
		source, err := a.fs.ReadFile(outlinePath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading outline: %w", err)
		}
		og, err = generator.NewOutlineGenerator(source)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing outline %s: %w", outlinePath, err)
		}
		gen = og
	} else {
		client := ports.NewRealHTTPClient(ports.HTTPClientConfig{
			Timeout:    a.config.Generator.GetTimeout(),
			MaxRetries: a.config.Generator.GetMaxRetries(),
			RetryDelay: time.Second,
			UserAgent:  "carouselkit/" + Version,
		})
		gen = generator.NewGeminiGenerator(a.config.Generator, client, a.logger)
	}

	return monitoring.InstrumentGenerator(gen, a.metrics), og, nil
}

// newPipeline builds the stage, rasterizer and archivers
func (a *app) newPipeline() (*export.Pipeline, error) {
	fonts, err := export.NewFontBook()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	client := ports.NewRealHTTPClient(ports.HTTPClientConfig{
		Timeout:    30 * time.Second,
		MaxRetries: 1,
		RetryDelay: 500 * time.Millisecond,
		UserAgent:  "carouselkit/" + Version,
	})
	images := export.NewCachingImageLoader(export.NewHTTPImageLoader(client), 64<<20, 15*time.Minute, ports.RealClock{})
	rasterizer := export.NewGGRasterizer(fonts, images, a.logger)

	return export.NewPipeline(
		export.NewStageFromConfig(a.config.Export),
		rasterizer,
		export.WithConcurrency(a.config.Export.GetConcurrency()),
		export.WithLogger(a.logger),
		export.WithMetrics(a.metrics),
	), nil
}

// newExporter wires a pipeline and the configured sink around doc
func (a *app) newExporter(ctx context.Context, doc *services.Document, renderer ports.SlideRenderer) (*services.Exporter, *export.Pipeline, error) {
	pipeline, err := a.newPipeline()
	if err != nil {
		return nil, nil, err
	}
	sink, err := export.NewSink(ctx, a.config.Sink, a.config.Export.GetOutputDir(), a.fs)
	if err != nil {
		return nil, nil, fmt.Errorf("creating archive sink: %w", err)
	}
	return services.NewExporter(doc, renderer, pipeline, sink, a.logger), pipeline, nil
}

// openLibrary opens the configured store. Callers close the store.
func (a *app) openLibrary(ctx context.Context) (*services.Library, storage.Store, error) {
	store, err := storage.New(ctx, a.config.Storage, a.fs, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening library: %w", err)
	}
	return services.NewLibrary(store, ports.RealClock{}, a.logger), store, nil
}

// newDocument seeds a document from the [carousel] defaults
func (a *app) newDocument(publisher ports.EventPublisher) *services.Document {
	doc := services.NewDocument(a.config.Carousel.ToCarouselConfig(), publisher)
	doc.SetUsername(a.config.Carousel.Username)
	return doc
}
