package export

import (
	"fmt"
	"sync"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// Stage is the off-screen container slides are laid out in for capture.
// It is hidden while idle; a capture must hold it visible through Show and
// release it on every exit path.
type Stage struct {
	mu      sync.Mutex
	width   int
	height  int
	ratio   float64
	holders int
}

// NewStage creates a hidden stage of width×height logical pixels
func NewStage(width, height int, ratio float64) *Stage {
	return &Stage{width: width, height: height, ratio: ratio}
}

// NewStageFromConfig creates a stage sized by the export configuration
func NewStageFromConfig(cfg entities.ExportConfig) *Stage {
	return NewStage(cfg.GetWidth(), cfg.GetHeight(), cfg.GetPixelRatio())
}

// Show makes the stage measurable and returns the matching release.
// Calls nest: the stage hides again once every holder has released.
// The release is safe to call more than once.
func (s *Stage) Show() (release func()) {
	s.mu.Lock()
	s.holders++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.holders--
			s.mu.Unlock()
		})
	}
}

// Visible reports whether any capture currently holds the stage
func (s *Stage) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holders > 0
}

// Frame measures the stage. A hidden or zero-sized stage cannot be captured.
func (s *Stage) Frame() (ports.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.holders == 0 {
		return ports.Frame{}, entities.ErrStageHidden
	}
	if s.width <= 0 || s.height <= 0 || s.ratio <= 0 {
		return ports.Frame{}, fmt.Errorf("stage has no measurable size: %dx%d@%v", s.width, s.height, s.ratio)
	}
	return ports.Frame{Width: s.width, Height: s.height, PixelRatio: s.ratio}, nil
}

// Size returns the logical stage size
func (s *Stage) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}
