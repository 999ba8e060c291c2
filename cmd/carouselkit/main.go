package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"

	// BuildDate is set during build
	BuildDate = "unknown"
)

// rootCmd represents the base command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carouselkit",
		Short: "Generate, edit and export social media carousels",
		Long: `carouselkit turns a topic into a themed social media carousel.
It generates the slides, serves an editor API with live updates,
keeps a library of saved carousels and exports them as a zip of
PNG images or a single PDF.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Global config file (default: ~/.config/carouselkit/config.toml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().String("log-format", "", "Log format: console or json (overrides config)")
	cmd.PersistentFlags().String("storage", "", "Library backend: file, sqlite or memory (overrides config)")
	cmd.PersistentFlags().String("storage-path", "", "Library file or database path (overrides config)")

	cmd.AddCommand(
		newServeCmd(),
		newGenerateCmd(),
		newExportCmd(),
		newLibraryCmd(),
		newThemesCmd(),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
