package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// Accent classes emitted by ApplyHighlights
const (
	AccentPrimary = "hl-primary"
	AccentDanger  = "hl-danger"
	AccentSuccess = "hl-success"
)

var (
	openQuoteRe = regexp.MustCompile(`(^|[\s(\[])"`)
	emphasisRe  = regexp.MustCompile(`\*([^*]+)\*`)
	dangerRe    = regexp.MustCompile(`(?s)\{r\}(.*?)\{/r\}`)
	successRe   = regexp.MustCompile(`(?s)\{g\}(.*?)\{/g\}`)
	numberRe    = regexp.MustCompile(`\b\d+(?:[.,]\d+)*%?`)

	markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// ApplyHighlights converts author markers in raw text into accent spans for
// the given theme. The passes run in a fixed order:
//
//  1. straight quotes become guillemets on themes with curly quotes
//  2. *text* becomes a primary accent span
//  3. {r}text{/r} and {g}text{/g} become danger and success spans
//  4. on themes that accent numbers, bare numbers outside any span are wrapped
//
// The transform is not idempotent. Apply it exactly once to raw author text,
// never to its own output.
func ApplyHighlights(raw string, theme entities.Theme) string {
	if raw == "" {
		return ""
	}
	spec := entities.LookupTheme(theme)

	out := markupEscaper.Replace(raw)

	if spec.CurlyQuotes {
		out = openQuoteRe.ReplaceAllString(out, "${1}«")
		out = strings.ReplaceAll(out, `"`, "»")
	}

	out = emphasisRe.ReplaceAllString(out, accentSpan(AccentPrimary, spec.Accents.Primary, true, "$1"))
	out = dangerRe.ReplaceAllString(out, accentSpan(AccentDanger, spec.Accents.Danger, true, "$1"))
	out = successRe.ReplaceAllString(out, accentSpan(AccentSuccess, spec.Accents.Success, true, "$1"))

	if spec.AutoAccentNumbers {
		out = accentBareNumbers(out, spec.Accents.Primary)
	}

	return out
}

// StripMarkers removes author markers without producing markup
func StripMarkers(raw string) string {
	out := emphasisRe.ReplaceAllString(raw, "$1")
	out = dangerRe.ReplaceAllString(out, "$1")
	return successRe.ReplaceAllString(out, "$1")
}

func accentSpan(class, color string, bold bool, inner string) string {
	style := "color:" + color
	if bold {
		style += ";font-weight:700"
	}
	return fmt.Sprintf(`<span class="%s" style="%s">%s</span>`, class, style, inner)
}

// accentBareNumbers wraps numbers found in text at span depth zero. Tags and
// text already inside an emitted span are copied untouched.
func accentBareNumbers(markup, color string) string {
	var b strings.Builder
	depth := 0
	rest := markup

	for rest != "" {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			b.WriteString(wrapNumbers(rest, depth, color))
			break
		}

		b.WriteString(wrapNumbers(rest[:lt], depth, color))
		rest = rest[lt:]

		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			b.WriteString(rest)
			break
		}

		tag := rest[:gt+1]
		switch {
		case strings.HasPrefix(tag, "</span"):
			if depth > 0 {
				depth--
			}
		case strings.HasPrefix(tag, "<span"):
			depth++
		}
		b.WriteString(tag)
		rest = rest[gt+1:]
	}

	return b.String()
}

func wrapNumbers(text string, depth int, color string) string {
	if depth > 0 || text == "" {
		return text
	}
	return numberRe.ReplaceAllStringFunc(text, func(m string) string {
		return accentSpan(AccentPrimary, color, true, m)
	})
}
