package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	archivePrefix    = "carousel-"
	archiveFallback  = "kit"
	topicFileNameLen = 15
)

// ArchiveName derives the download name from the carousel topic: the first
// 15 characters, with anything but letters and digits folded into dashes.
// An empty topic falls back to carousel-kit.
func ArchiveName(topic, extension string) string {
	runes := []rune(norm.NFC.String(strings.TrimSpace(topic)))
	if len(runes) > topicFileNameLen {
		runes = runes[:topicFileNameLen]
	}

	var b strings.Builder
	dash := false
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	stem := strings.TrimRight(b.String(), "-")
	if stem == "" {
		stem = archiveFallback
	}
	return archivePrefix + stem + "." + extension
}
