package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm/script"
)

func runCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run script.lua",
		Short: "Run a Lua script against a renderer",
		Long: `Run loads the script, then calls its global tick(frame, events) once per
frame until tick returns false, the window closes or Ctrl+C is pressed.

The script uses the term table: term.set, term.set_ext, term.print,
term.clear, term.back_color, term.render, term.size, term.depth and
term.glyph.`,
		Args: cobra.ExactArgs(1),
	}
	flags := cmd.Flags()
	width := flags.Int("width", 80, "Grid width in cells")
	height := flags.Int("height", 40, "Grid height in cells")
	timeout := flags.Duration("timeout", script.DefaultTimeout, "Limit for a single script call (0 disables)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := g.openRenderer(g.backend, *width, *height, "tileterm "+args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		h := script.New(r, script.WithTimeout(*timeout), script.WithOutput(cmd.ErrOrStderr()))
		defer h.Close()
		if err := h.DoFile(args[0]); err != nil {
			return err
		}
		if !h.HasTick() {
			// A script without tick draws once.
			return r.Render()
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return h.Run(ctx, g.interval)
	}
	return cmd
}
