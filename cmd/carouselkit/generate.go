package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/generator"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a carousel document",
		Long: `Generate a carousel for a topic and write the document as JSON.
The document can be edited by hand and exported later with
"carouselkit export".

Example:
  carouselkit generate "How to sleep better" --slides 7 --tone funny
  carouselkit generate --outline launch.md --out launch.json --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().String("generator", "", "Content generator: gemini or outline (overrides config)")
	cmd.Flags().String("outline", "", "Markdown outline used instead of a model")
	cmd.Flags().String("cta", "", "Instruction for the call to action on the last slide")
	cmd.Flags().StringP("theme", "t", "", "Theme (overrides config)")
	cmd.Flags().String("tone", "", "Tone (overrides config)")
	cmd.Flags().Int("tone-level", 0, "Tone slider position 0-100, snaps to the closest tone")
	cmd.Flags().IntP("slides", "n", 0, "Number of slides (overrides config)")
	cmd.Flags().String("username", "", "Handle shown in the footer (overrides config)")
	cmd.Flags().StringP("out", "o", "", "Write the document to this file instead of stdout")
	cmd.Flags().Bool("save", false, "Also save the carousel to the library")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	outlinePath, _ := cmd.Flags().GetString("outline")
	gen, og, err := a.newGenerator(outlinePath)
	if err != nil {
		return err
	}

	doc := a.newDocument(nil)
	var outline *generator.Outline
	if og != nil {
		outline = og.Outline()
		if err := applyFrontmatter(doc, outline.Frontmatter); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("username") {
		doc.SetUsername(a.config.Carousel.Username)
	}

	config := resolveGenerateConfig(cmd, a.config, doc.Config(), outline, args)
	cta, _ := cmd.Flags().GetString("cta")

	if err := services.NewOrchestrator(doc, gen, a.logger).Generate(ctx, config, cta); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc.State(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := a.fs.WriteFile(out, data, 0600); err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d slides to %s\n", doc.Len(), out)
	} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		library, store, err := a.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		saved, err := library.Save(ctx, doc.State())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved to library as %s\n", saved.ID)
	}
	return nil
}

// resolveGenerateConfig layers the topic argument and explicit flags over
// the front matter and config defaults already in base
func resolveGenerateConfig(cmd *cobra.Command, cfg *entities.Config, base entities.CarouselConfig, outline *generator.Outline, args []string) entities.CarouselConfig {
	if len(args) == 1 {
		base.Topic = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		base.Theme = entities.Theme(cfg.Carousel.Theme)
	}
	if flags.Changed("tone") {
		base.Tone = entities.Tone(cfg.Carousel.Tone)
	}
	if flags.Changed("tone-level") {
		level, _ := flags.GetInt("tone-level")
		base.Tone = entities.ToneFromSlider(level)
	}

	if outline != nil && !flags.Changed("slides") {
		base.SlideCount = outlineSlideCount(outline)
	}
	return base
}

// outlineSlideCount clamps the outline's length to a valid carousel size
func outlineSlideCount(outline *generator.Outline) int {
	return min(max(len(outline.Slides), entities.MinSlideCount), entities.MaxSlideCount)
}

// applyFrontmatter seeds the document from an outline's YAML header
func applyFrontmatter(doc *services.Document, fm generator.Frontmatter) error {
	cfg := doc.Config()
	if fm.Topic != "" {
		cfg.Topic = fm.Topic
	}
	if fm.Theme != "" {
		theme, err := entities.ParseTheme(fm.Theme)
		if err != nil {
			return fmt.Errorf("outline front matter: %w", err)
		}
		cfg.Theme = theme
	}
	if fm.Tone != "" {
		tone := entities.Tone(strings.ToLower(strings.TrimSpace(fm.Tone)))
		if !tone.Valid() {
			return fmt.Errorf("outline front matter: unknown tone: %s", fm.Tone)
		}
		cfg.Tone = tone
	}
	if fm.Username != "" {
		doc.SetUsername(fm.Username)
	}
	return doc.SetConfig(cfg)
}
