package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/carouselkit/internal/adapters/primary/http"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the carousel editor API",
		Long: `Start the editor API. Clients drive one carousel document over
REST and receive every change on the /ws websocket.

Example:
  carouselkit serve
  carouselkit serve --port 9000 --outline launch.md --read-only
  carouselkit serve --outline launch.md --watch`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().String("generator", "", "Content generator: gemini or outline (overrides config)")
	cmd.Flags().String("outline", "", "Markdown outline used instead of a model")
	cmd.Flags().String("sink", "", "Archive sink: local or s3 (overrides config)")
	cmd.Flags().String("output", "", "Directory for local exports (overrides config)")
	cmd.Flags().StringP("theme", "t", "", "Initial theme (overrides config)")
	cmd.Flags().String("tone", "", "Initial tone (overrides config)")
	cmd.Flags().Bool("read-only", false, "Refuse slide text edits")
	cmd.Flags().BoolP("watch", "w", false, "Regenerate the carousel when the outline changes")
	cmd.Flags().Duration("watch-interval", 500*time.Millisecond, "How often the outline is polled")
	return cmd
}

// validateServeConfig checks what only serve cares about
func validateServeConfig(cfg *entities.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Server.Port)
	}
	if strings.ContainsAny(cfg.Server.Host, " !") {
		return fmt.Errorf("invalid host: %s", cfg.Server.Host)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := validateServeConfig(a.config); err != nil {
		return err
	}

	ctx := cmd.Context()
	outlinePath, _ := cmd.Flags().GetString("outline")
	readOnly, _ := cmd.Flags().GetBool("read-only")
	opts := serveOptions{outlinePath: outlinePath, readOnly: readOnly}
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if outlinePath == "" {
			return errors.New("--watch needs --outline")
		}
		opts.watchInterval, _ = cmd.Flags().GetDuration("watch-interval")
	}

	if outlinePath == "" {
		if err := services.CheckGenerator(a.config); err != nil {
			a.logger.Warn("content generation unavailable", "error", err)
		}
	}

	server, cleanup, err := a.buildServer(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := server.Start(ctx, a.config.Server.Port, a.config.Server.Host); err != nil {
		return err
	}
	a.logger.Info("editor API ready",
		"url", "http://"+server.Addr(),
		"generator", a.config.Generator.GetBackend(),
		"storage", a.config.Storage.GetBackend(),
		"sink", a.config.Sink.GetBackend())

	<-ctx.Done()
	a.logger.Info("shutting down")

	if err := server.Stop(context.Background()); err != nil {
		a.logger.Error("error during shutdown", "error", err)
	}
	return nil
}

// serveOptions are the serve flags buildServer needs; a zero
// watchInterval disables outline watching
type serveOptions struct {
	outlinePath   string
	readOnly      bool
	watchInterval time.Duration
}

// buildServer wires the document, its services and the HTTP adapter. The
// connection manager is the document's publisher, so every mutation
// reaches websocket clients.
func (a *app) buildServer(ctx context.Context, opts serveOptions) (*httpadapter.Server, func(), error) {
	gen, og, err := a.newGenerator(opts.outlinePath)
	if err != nil {
		return nil, nil, err
	}

	events := httpadapter.NewConnectionManager()
	doc := a.newDocument(events)
	if og != nil {
		if err := applyFrontmatter(doc, og.Outline().Frontmatter); err != nil {
			return nil, nil, err
		}
	}

	exporter, pipeline, err := a.newExporter(ctx, doc, renderer.NewRenderer())
	if err != nil {
		return nil, nil, err
	}
	preview, err := renderer.NewPreviewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("loading preview templates: %w", err)
	}

	library, store, err := a.openLibrary(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{store.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				a.logger.Warn("shutdown cleanup", "error", err)
			}
		}
	}

	orchestrator := services.NewOrchestrator(doc, gen, a.logger)
	if og != nil && opts.watchInterval > 0 {
		reload := func(source []byte) error {
			outline, err := og.Reload(source)
			if err != nil {
				return err
			}
			if err := applyFrontmatter(doc, outline.Frontmatter); err != nil {
				return err
			}
			cfg := doc.Config()
			cfg.SlideCount = outlineSlideCount(outline)
			return doc.SetConfig(cfg)
		}

		poller := watcher.NewPollingWatcher(opts.watchInterval, 2*opts.watchInterval, a.logger)
		live := services.NewLiveReloadService(poller, a.fs, reload, orchestrator, events, a.logger)
		if err := live.Start(ctx, opts.outlinePath); err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, live.Stop)
		a.logger.Info("watching outline", "path", opts.outlinePath, "interval", opts.watchInterval)
	}

	stage := a.config.Export
	server, err := httpadapter.NewServer(a.config.Server, httpadapter.Dependencies{
		Document:     doc,
		Editor:       services.NewEditor(doc, opts.readOnly),
		Orchestrator: orchestrator,
		Library:      library,
		Exporter:     exporter,
		Preview:      preview,
		Capturer:     pipeline,
		Events:       events,
		StageWidth:   stage.GetWidth(),
		StageHeight:  stage.GetHeight(),
		Metrics:      a.metrics,
		Health:       monitoring.NewHealthMonitor(0),
		Logger:       a.logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return server, cleanup, nil
}
