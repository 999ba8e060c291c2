package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// catalog is the JSON shape of "themes --json"
type catalog struct {
	Themes  []entities.ThemeSpec `json:"themes"`
	Tones   []entities.ToneStop  `json:"tones"`
	Palette entities.Palette     `json:"palette"`
}

func newThemesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List themes, tones and style presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(out, catalog{
					Themes:  entities.Themes(),
					Tones:   entities.ToneScale,
					Palette: entities.DefaultPalette(),
				})
			}
			return printCatalog(out)
		},
	}
	cmd.Flags().Bool("json", false, "Print the full catalog as JSON")
	return cmd
}

func printCatalog(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "THEME\tNAME\tTEMPLATE\tBACKGROUND\tFONTS\n")
	for _, t := range entities.Themes() {
		mode := "light"
		if t.Dark {
			mode = "dark"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%s\t%s / %s\n",
			t.Name, t.Name.DisplayName(), t.Template, mode, t.Background, t.TitleFont, t.BodyFont)
	}

	_, _ = fmt.Fprintf(w, "\nTONE\tSLIDER\tLABEL\tDESCRIPTION\n")
	for _, stop := range entities.ToneScale {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", stop.Tone, stop.Value, stop.Label, stop.Description)
	}

	return w.Flush()
}
