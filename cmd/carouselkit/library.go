package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage saved carousels",
		Long: `The library keeps snapshots of carousels, newest first. It is
stored in a JSON file or a sqlite database depending on [storage].`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved carousels",
		Args:  cobra.NoArgs,
		RunE:  runLibraryList,
	}
	listCmd.Flags().Bool("json", false, "Print the entries as JSON")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved carousel as a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryShow,
	}

	saveCmd := &cobra.Command{
		Use:   "save <document.json>",
		Short: "Save a carousel document to the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibrarySave,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved carousel",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryDelete,
	}

	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved carousel as images or PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryExport,
	}
	addExportFlags(exportCmd)

	cmd.AddCommand(listCmd, showCmd, saveCmd, deleteCmd, exportCmd)
	return cmd
}

// withLibrary opens the app and library around fn
func withLibrary(cmd *cobra.Command, fn func(a *app, library *services.Library) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	library, store, err := a.openLibrary(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("closing library", "error", err)
		}
	}()

	return fn(a, library)
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	return withLibrary(cmd, func(_ *app, library *services.Library) error {
		items, err := library.List(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "The library is empty.")
			return nil
		}
		return printLibraryTable(cmd.OutOrStdout(), items)
	})
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	return withLibrary(cmd, func(_ *app, library *services.Library) error {
		entry, err := library.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), services.StateFromSaved(entry))
	})
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
	return withLibrary(cmd, func(a *app, library *services.Library) error {
		data, err := a.fs.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		var state services.DocumentState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("parsing document %s: %w", args[0], err)
		}

		saved, err := library.Save(cmd.Context(), state)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
		return nil
	})
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	return withLibrary(cmd, func(_ *app, library *services.Library) error {
		if err := library.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	return withLibrary(cmd, func(a *app, library *services.Library) error {
		entry, err := library.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return a.exportState(cmd, services.StateFromSaved(entry))
	})
}

func printLibraryTable(out io.Writer, items []entities.SavedCarousel) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID\tSAVED\tSLIDES\tTHEME\tTOPIC\n")

	for _, item := range items {
		topic := item.Topic
		if len([]rune(topic)) > 50 {
			topic = string([]rune(topic)[:47]) + "..."
		}
		saved := time.UnixMilli(item.Timestamp).Local().Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			item.ID, saved, len(item.Slides), item.Config.Theme, topic)
	}

	return w.Flush()
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
