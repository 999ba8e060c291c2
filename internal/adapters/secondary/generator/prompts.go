package generator

import (
	"fmt"
	"strings"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

var toneDescriptions = map[entities.Tone]string{
	entities.ToneExpert:      "Concise, professional and confident.",
	entities.ToneEmpathetic:  "Soft, supportive and caring.",
	entities.ToneViral:       "As short as possible, clickbait, hype. No filler.",
	entities.ToneProvocative: "Bold and provocative, arguing with the common opinion.",
	entities.ToneFunny:       "Ironic, light, with humor.",
}

func toneDescription(tone entities.Tone) string {
	if desc, ok := toneDescriptions[tone]; ok {
		return desc
	}
	return toneDescriptions[entities.ToneExpert]
}

func carouselPrompt(topic string, count int, tone entities.Tone, cta string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create the content of an Instagram carousel about: %q.\n", topic)
	fmt.Fprintf(&b, "Number of slides: %d.\n", count)
	fmt.Fprintf(&b, "Tone: %s\n\n", toneDescription(tone))
	b.WriteString("STRUCTURE:\n")
	b.WriteString(`1. Slide 1 (COVER): only the MAIN HEADLINE. The "content" field MUST be empty ("").` + "\n")
	if count > 2 {
		fmt.Fprintf(&b, "2. Slides 2-%d: useful information. A title and a short text.\n", count-1)
	}
	if cta == "" {
		cta = "follow the author for more"
	}
	fmt.Fprintf(&b, "3. Slide %d (CTA): a call to action: %s.\n\n", count, cta)
	b.WriteString("Mark the key words of a title with *asterisks*.\n")
	b.WriteString("Return a JSON array [{title, content, highlight}].")
	return b.String()
}

func regeneratePrompt(topic string, slide entities.Slide, total int, tone entities.Tone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite slide %d of %d of a carousel about %q.\n", slide.Number, total, topic)
	fmt.Fprintf(&b, "Tone: %s\n", toneDescription(tone))
	fmt.Fprintf(&b, "Current title: %s\n", slide.Title)
	if slide.IsCover() {
		b.WriteString("THIS IS THE COVER. Write a powerful headline and leave the content empty.\n")
	} else {
		fmt.Fprintf(&b, "Current content: %s\n", slide.Content)
	}
	b.WriteString("Return JSON {title, content, highlight}.")
	return b.String()
}

func imagePrompt(topic string, slide entities.Slide) string {
	subject := topic
	if title := strings.TrimSpace(strings.ReplaceAll(slide.Title, "*", "")); title != "" {
		subject = fmt.Sprintf("%s (%s)", topic, title)
	}
	return fmt.Sprintf("Create a professional, minimalist, high-quality abstract background image for an Instagram slide about: %s. "+
		"Style: modern, clean, premium aesthetics, NO TEXT, atmospheric lighting.", subject)
}
