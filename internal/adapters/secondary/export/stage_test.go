package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

func TestStage(t *testing.T) {
	t.Run("hidden stage cannot be measured", func(t *testing.T) {
		stage := NewStage(360, 450, 3)

		_, err := stage.Frame()
		assert.ErrorIs(t, err, entities.ErrStageHidden)
	})

	t.Run("show exposes the frame until released", func(t *testing.T) {
		stage := NewStage(360, 450, 3)

		release := stage.Show()
		frame, err := stage.Frame()
		require.NoError(t, err)
		w, h := frame.PixelSize()
		assert.Equal(t, 1080, w)
		assert.Equal(t, 1350, h)

		release()
		assert.False(t, stage.Visible())
	})

	t.Run("holders nest and release is idempotent", func(t *testing.T) {
		stage := NewStage(360, 450, 3)

		outer := stage.Show()
		inner := stage.Show()
		inner()
		inner()
		assert.True(t, stage.Visible())

		outer()
		assert.False(t, stage.Visible())
	})

	t.Run("from config", func(t *testing.T) {
		stage := NewStageFromConfig(entities.ExportConfig{})
		w, h := stage.Size()
		assert.Equal(t, 360, w)
		assert.Equal(t, 450, h)
	})
}
