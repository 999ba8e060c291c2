package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// run is a stretch of highlighted markup sharing one style
type run struct {
	text  string
	color string
	bold  bool
}

// parseMarkup flattens highlighter output into styled runs. Spans set the
// color and weight of their text, <br> and newlines break the line.
func parseMarkup(markup string) ([]run, error) {
	if markup == "" {
		return nil, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	var runs []run
	var walk func(n *html.Node, style run)
	walk = func(n *html.Node, style run) {
		switch n.Type {
		case html.TextNode:
			style.text = n.Data
			runs = append(runs, style)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				runs = append(runs, run{text: "\n"})
				return
			case atom.Span, atom.B, atom.Strong:
				style = spanStyle(n, style)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, style)
		}
	}
	for _, n := range nodes {
		walk(n, run{})
	}
	return runs, nil
}

func spanStyle(n *html.Node, inherited run) run {
	out := inherited
	if n.DataAtom == atom.B || n.DataAtom == atom.Strong {
		out.bold = true
	}
	for _, attr := range n.Attr {
		if attr.Key != "style" {
			continue
		}
		for _, decl := range strings.Split(attr.Val, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			val = strings.TrimSpace(val)
			switch strings.ToLower(strings.TrimSpace(prop)) {
			case "color":
				out.color = val
			case "font-weight":
				weight, err := strconv.Atoi(val)
				out.bold = val == "bold" || val == "bolder" || (err == nil && weight >= 600)
			}
		}
	}
	return out
}

// piece is an unbreakable fragment of one style. Pieces without a leading
// space glue onto the previous one, so "*30%*!" never wraps before the "!".
type piece struct {
	text        string
	color       color.NRGBA
	bold        bool
	spaceBefore bool
	lineBreak   bool
}

// textStyle is the slot level style pieces inherit
type textStyle struct {
	family    string
	size      float64
	color     color.NRGBA
	bold      bool
	uppercase bool
}

func splitPieces(runs []run, base textStyle) []piece {
	var pieces []piece
	var cur strings.Builder
	var curStyle piece
	pendingSpace := false

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		p := curStyle
		p.text = cur.String()
		pieces = append(pieces, p)
		cur.Reset()
	}

	for _, r := range runs {
		style := piece{color: base.color, bold: base.bold || r.bold}
		if r.color != "" {
			style.color = MustColor(r.color, base.color)
		}

		text := r.text
		if base.uppercase {
			text = strings.ToUpper(text)
		}
		for _, ch := range text {
			switch {
			case ch == '\n':
				flush()
				pieces = append(pieces, piece{lineBreak: true})
				pendingSpace = false
			case unicode.IsSpace(ch):
				flush()
				pendingSpace = true
			default:
				if cur.Len() == 0 {
					curStyle = style
					curStyle.spaceBefore = pendingSpace
					pendingSpace = false
				}
				cur.WriteRune(ch)
			}
		}
		flush()
	}
	return pieces
}

// placed is a measured piece positioned on its line
type placed struct {
	piece
	face  font.Face
	x     float64
	width float64
}

type textLine struct {
	items []placed
	width float64
}

// wrapPieces breaks pieces into lines no wider than maxWidth. A unit wider
// than the line is placed alone rather than split.
func wrapPieces(pieces []piece, base textStyle, faces *faceCache, maxWidth float64) []textLine {
	var lines []textLine
	var line textLine
	var unit []placed
	unitWidth := 0.0
	unitSpace := 0.0

	commitUnit := func() {
		if len(unit) == 0 {
			return
		}
		lead := unitSpace
		if len(line.items) == 0 {
			lead = 0
		}
		if len(line.items) > 0 && line.width+lead+unitWidth > maxWidth {
			lines = append(lines, line)
			line = textLine{}
			lead = 0
		}
		x := line.width + lead
		for _, p := range unit {
			p.x = x
			x += p.width
			line.items = append(line.items, p)
		}
		line.width = x
		unit = nil
		unitWidth = 0
	}

	for _, p := range pieces {
		if p.lineBreak {
			commitUnit()
			lines = append(lines, line)
			line = textLine{}
			continue
		}

		face := faces.face(base.family, p.bold, base.size)
		if p.spaceBefore || len(unit) == 0 {
			commitUnit()
			unitSpace = 0
			if p.spaceBefore {
				unitSpace = measure(face, " ")
			}
		}
		w := measure(face, p.text)
		unit = append(unit, placed{piece: p, face: face, width: w})
		unitWidth += w
	}
	commitUnit()
	if len(line.items) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
