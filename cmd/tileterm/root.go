package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose  int
	backend  string
	atlas    string
	cellSize float64
	interval time.Duration
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "tileterm",
		Short:         "Layered glyph-grid renderer demos and tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tileterm.SetLogger(newLogger(g.verbose))
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stderr, cmd.UsageString())
		},
	}

	flags := cmd.PersistentFlags()
	flags.CountVarP(&g.verbose, "verbose", "v", "Log level (-v info, -vv debug)")
	flags.StringVarP(&g.backend, "backend", "b", "",
		"Backend: wgpu, ebiten, software, headless, tty (default: detect)")
	flags.StringVar(&g.atlas, "atlas", "", "Atlas image (default: generated from Go Mono)")
	flags.Float64Var(&g.cellSize, "cell", 12, "Cell size in pixels")
	flags.DurationVar(&g.interval, "interval", tileterm.DefaultInterval, "Frame interval for backends without their own loop")

	cmd.AddCommand(featuresCommand(g))
	cmd.AddCommand(mapgenCommand(g))
	cmd.AddCommand(shotCommand(g))
	cmd.AddCommand(atlasCommand())
	cmd.AddCommand(runCommand(g))
	cmd.AddCommand(versionCommand())
	return cmd
}

// newLogger maps the -v count to a stderr text logger. Without -v only
// warnings are shown.
func newLogger(verbose int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
