package export

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkup(t *testing.T) {
	runs, err := parseMarkup(`Save <span class="hl-primary" style="color:#818cf8;font-weight:700">30%</span> &amp; more`)
	require.NoError(t, err)

	require.Len(t, runs, 3)
	assert.Equal(t, run{text: "Save "}, runs[0])
	assert.Equal(t, run{text: "30%", color: "#818cf8", bold: true}, runs[1])
	assert.Equal(t, run{text: " & more"}, runs[2])
}

func TestParseMarkup_Empty(t *testing.T) {
	runs, err := parseMarkup("")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSplitPieces(t *testing.T) {
	base := textStyle{color: color.NRGBA{255, 255, 255, 255}}
	runs := []run{
		{text: "Save "},
		{text: "30%", color: "#ff0000", bold: true},
		{text: "! now\nnext"},
	}

	pieces := splitPieces(runs, base)

	var texts []string
	var spaces []bool
	for _, p := range pieces {
		texts = append(texts, p.text)
		spaces = append(spaces, p.spaceBefore)
	}
	assert.Equal(t, []string{"Save", "30%", "!", "now", "", "next"}, texts)
	assert.Equal(t, []bool{false, true, false, true, false, false}, spaces)
	assert.True(t, pieces[4].lineBreak)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, pieces[1].color)
	assert.True(t, pieces[1].bold)
}

func TestSplitPieces_Uppercase(t *testing.T) {
	pieces := splitPieces([]run{{text: "bold move"}}, textStyle{uppercase: true})
	require.Len(t, pieces, 2)
	assert.Equal(t, "BOLD", pieces[0].text)
}

func TestWrapPieces(t *testing.T) {
	fonts, err := NewFontBook()
	require.NoError(t, err)
	faces := fonts.newFaceCache()
	defer faces.close()

	base := textStyle{size: 20}
	pieces := splitPieces([]run{{text: "one two three four five six seven"}}, base)

	wide := wrapPieces(pieces, base, faces, 10000)
	require.Len(t, wide, 1)

	narrow := wrapPieces(pieces, base, faces, 120)
	assert.Greater(t, len(narrow), 1)
	for _, line := range narrow {
		if len(line.items) > 1 {
			assert.LessOrEqual(t, line.width, 120.0)
		}
	}

	glued := splitPieces([]run{{text: "a "}, {text: "30%"}, {text: "!"}}, base)
	lines := wrapPieces(glued, base, faces, 1)
	require.Len(t, lines, 2)
	assert.Len(t, lines[1].items, 2, "glued pieces stay on one line")
}
