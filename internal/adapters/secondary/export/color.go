package export

import (
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor reads a CSS color: #rgb, #rrggbb, #rrggbbaa, rgb(), rgba() or
// a basic named color
func ParseColor(value string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}

	switch {
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	}
	return color.NRGBA{}, fmt.Errorf("unsupported color: %q", value)
}

// MustColor parses value, falling back on error
func MustColor(value string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(value)
	if err != nil {
		return fallback
	}
	return c
}

func parseHex(hex string) (color.NRGBA, error) {
	if len(hex) == 3 || len(hex) == 4 {
		var expanded strings.Builder
		for _, r := range hex {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		hex = expanded.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: #%s", hex)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: #%s", hex)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseRGBFunc(v string) (color.NRGBA, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return color.NRGBA{}, fmt.Errorf("invalid color function: %s", v)
	}
	parts := strings.FieldsFunc(v[open+1:len(v)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("invalid color function: %s", v)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSuffix(parts[i], "%"), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid channel %q", parts[i])
		}
		if strings.HasSuffix(parts[i], "%") {
			f = f * 255 / 100
		}
		channels[i] = uint8(math.Round(clamp(f, 0, 255)))
	}

	alpha := 1.0
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(strings.TrimSuffix(parts[3], "%"), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha %q", parts[3])
		}
		if strings.HasSuffix(parts[3], "%") {
			f /= 100
		}
		alpha = clamp(f, 0, 1)
	}

	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: uint8(math.Round(alpha * 255))}, nil
}

// withAlpha scales the alpha of c by a
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp(a, 0, 1)))
	return c
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ColorStop is a position along a gradient line, 0..1
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// LinearGradient is a parsed CSS linear-gradient()
type LinearGradient struct {
	// Angle in CSS degrees: 0 points up, 90 points right
	Angle float64
	Stops []ColorStop
}

var (
	gradientRe = regexp.MustCompile(`(?i)linear-gradient\((.*)\)`)
	stopRe     = regexp.MustCompile(`^(.*?)(?:\s+(-?[\d.]+)%)?$`)
)

var sideAngles = map[string]float64{
	"to top":          0,
	"to right":        90,
	"to bottom":       180,
	"to left":         270,
	"to top right":    45,
	"to right top":    45,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom left":  225,
	"to left bottom":  225,
	"to top left":     315,
	"to left top":     315,
}

// ParseLinearGradient reads a CSS linear-gradient. Stops without a position
// are spread evenly, the way browsers do.
func ParseLinearGradient(value string) (LinearGradient, error) {
	m := gradientRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return LinearGradient{}, fmt.Errorf("unsupported gradient: %q", value)
	}

	args := splitTopLevel(m[1])
	g := LinearGradient{Angle: 180}

	if len(args) > 0 {
		first := strings.ToLower(strings.TrimSpace(args[0]))
		if angle, ok := sideAngles[first]; ok {
			g.Angle = angle
			args = args[1:]
		} else if strings.HasSuffix(first, "deg") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(first, "deg"), 64)
			if err != nil {
				return LinearGradient{}, fmt.Errorf("invalid gradient angle %q", first)
			}
			g.Angle = f
			args = args[1:]
		}
	}

	if len(args) < 2 {
		return LinearGradient{}, fmt.Errorf("gradient needs at least two stops: %q", value)
	}

	offsets := make([]float64, len(args))
	known := make([]bool, len(args))
	for i, arg := range args {
		sm := stopRe.FindStringSubmatch(strings.TrimSpace(arg))
		c, err := ParseColor(sm[1])
		if err != nil {
			return LinearGradient{}, err
		}
		g.Stops = append(g.Stops, ColorStop{Color: c})
		if sm[2] != "" {
			f, _ := strconv.ParseFloat(sm[2], 64)
			offsets[i] = clamp(f/100, 0, 1)
			known[i] = true
		}
	}

	if !known[0] {
		offsets[0], known[0] = 0, true
	}
	last := len(args) - 1
	if !known[last] {
		offsets[last], known[last] = 1, true
	}
	for i := 1; i < last; i++ {
		if known[i] {
			continue
		}
		j := i
		for !known[j] {
			j++
		}
		step := (offsets[j] - offsets[i-1]) / float64(j-i+1)
		for k := i; k < j; k++ {
			offsets[k] = offsets[k-1] + step
			known[k] = true
		}
	}
	for i := range g.Stops {
		g.Stops[i].Offset = offsets[i]
	}

	return g, nil
}

// Line returns the gradient line endpoints over a w×h box, per the CSS
// rule that the corners touch the 0% and 100% perpendiculars
func (g LinearGradient) Line(w, h float64) (x0, y0, x1, y1 float64) {
	rad := g.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := w/2, h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// splitTopLevel splits on commas that are not inside parentheses
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
