package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <document.json>",
		Short: "Export a carousel document as images or PDF",
		Long: `Render every slide of a carousel document and write the archive
to the configured sink: a zip of slide-N.png files or a single PDF.

Example:
  carouselkit export launch.json
  carouselkit export launch.json --format pdf --output ./exports`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	addExportFlags(cmd)
	return cmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Archive format: zip or pdf (overrides config)")
	cmd.Flags().StringP("output", "o", "", "Directory for local exports (overrides config)")
	cmd.Flags().String("sink", "", "Archive sink: local or s3 (overrides config)")
	cmd.Flags().Int("concurrency", 0, "Slides rasterized in parallel (overrides config)")
	cmd.Flags().Float64("pixel-ratio", 0, "Raster scale of the logical stage (overrides config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.fs.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	var state services.DocumentState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parsing document %s: %w", args[0], err)
	}
	if err := state.Config.Validate(); err != nil {
		return fmt.Errorf("document %s: %w", args[0], err)
	}

	return a.exportState(cmd, state)
}

// exportState restores state into a detached document and exports it
func (a *app) exportState(cmd *cobra.Command, state services.DocumentState) error {
	doc := services.NewDocument(state.Config, nil)
	doc.Restore(state)

	exporter, _, err := a.newExporter(cmd.Context(), doc, renderer.NewRenderer())
	if err != nil {
		return err
	}

	result, err := exporter.Export(cmd.Context(), a.config.Export.GetFormat())
	if err != nil {
		return err
	}
	printExportResult(cmd.OutOrStdout(), result)
	return nil
}

func printExportResult(w io.Writer, result *services.ExportResult) {
	_, _ = fmt.Fprintf(w, "Exported %d slides (%s, %d bytes)\n",
		result.Archive.Slides, result.Archive.ContentType, len(result.Archive.Data))
	if result.Location != "" {
		_, _ = fmt.Fprintf(w, "Saved to %s\n", result.Location)
	}
}
