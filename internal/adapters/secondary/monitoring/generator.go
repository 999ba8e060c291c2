package monitoring

import (
	"context"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// InstrumentedGenerator records latency and outcome of every call to the
// wrapped content generator
type InstrumentedGenerator struct {
	next    ports.ContentGenerator
	metrics *Metrics
}

// InstrumentGenerator wraps next. A nil next stays nil so the orchestrator
// still reports the missing configuration.
func InstrumentGenerator(next ports.ContentGenerator, metrics *Metrics) ports.ContentGenerator {
	if next == nil || metrics == nil {
		return next
	}
	return &InstrumentedGenerator{next: next, metrics: metrics}
}

func (g *InstrumentedGenerator) Generate(ctx context.Context, req ports.GenerateRequest) ([]entities.Slide, error) {
	start := time.Now()
	slides, err := g.next.Generate(ctx, req)
	g.metrics.ObserveGeneration("generate", time.Since(start), err)
	return slides, err
}

func (g *InstrumentedGenerator) Regenerate(ctx context.Context, req ports.RegenerateRequest) (entities.Slide, error) {
	start := time.Now()
	slide, err := g.next.Regenerate(ctx, req)
	g.metrics.ObserveGeneration("regenerate", time.Since(start), err)
	return slide, err
}

func (g *InstrumentedGenerator) GenerateBackgroundImage(ctx context.Context, topic string, slide entities.Slide) (string, error) {
	start := time.Now()
	uri, err := g.next.GenerateBackgroundImage(ctx, topic, slide)
	g.metrics.ObserveGeneration("background_image", time.Since(start), err)
	return uri, err
}
