package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/test/builders"
)

func TestEditor(t *testing.T) {
	t.Run("commits on leaving edit mode", func(t *testing.T) {
		doc := newTestDocument(t, builders.TwoSlideCarousel())
		editor := NewEditor(doc, false)

		require.NoError(t, editor.Begin(2, entities.FieldTitle))
		assert.Equal(t, StateEditing, editor.State(2))
		assert.Equal(t, StateViewing, editor.State(1))

		require.NoError(t, editor.Commit(2, "Edited"))
		assert.Equal(t, StateViewing, editor.State(2))

		slide, err := doc.Slide(1)
		require.NoError(t, err)
		assert.Equal(t, "Edited", slide.Title)
	})

	t.Run("cancel does not write", func(t *testing.T) {
		doc := newTestDocument(t, builders.TwoSlideCarousel())
		editor := NewEditor(doc, false)

		require.NoError(t, editor.Begin(1, entities.FieldContent))
		editor.Cancel(1)

		assert.Equal(t, StateViewing, editor.State(1))
		assert.Error(t, editor.Commit(1, "ignored"))
		slide, _ := doc.Slide(0)
		assert.Equal(t, "Test content", slide.Content)
	})

	t.Run("read-only never enters editing", func(t *testing.T) {
		doc := newTestDocument(t, builders.TwoSlideCarousel())
		editor := NewEditor(doc, true)

		assert.ErrorIs(t, editor.Begin(1, entities.FieldTitle), entities.ErrReadOnly)
		assert.Equal(t, StateViewing, editor.State(1))
	})

	t.Run("rejects unknown slides and fields", func(t *testing.T) {
		doc := newTestDocument(t, builders.TwoSlideCarousel())
		editor := NewEditor(doc, false)

		assert.ErrorIs(t, editor.Begin(3, entities.FieldTitle), entities.ErrSlideNotFound)
		assert.ErrorIs(t, editor.Begin(1, entities.SlideField("number")), entities.ErrInvalidField)
	})

	t.Run("edit runs a full cycle", func(t *testing.T) {
		doc := newTestDocument(t, builders.TwoSlideCarousel())
		editor := NewEditor(doc, false)

		require.NoError(t, editor.Edit(1, entities.FieldCTA, "Follow"))
		slide, _ := doc.Slide(0)
		assert.Equal(t, "Follow", slide.CTA)
	})
}
