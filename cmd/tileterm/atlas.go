package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/internal/atlasgen"
)

func atlasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlas",
		Short: "Generate a code page 437 glyph atlas from a TrueType font",
		Args:  cobra.NoArgs,
	}
	cfg := atlasgen.DefaultConfig()
	flags := cmd.Flags()
	output := flags.StringP("output", "o", "tileset.png", "Output file")
	fontPath := flags.String("font", "", "TrueType/OpenType font (default: Go Mono)")
	flags.IntVar(&cfg.CellWidth, "cell-width", cfg.CellWidth, "Slot width in pixels")
	flags.IntVar(&cfg.CellHeight, "cell-height", cfg.CellHeight, "Slot height in pixels")
	flags.Float64Var(&cfg.Size, "size", 0, "Font size in pixels per em (default: fit the slot)")
	flags.BoolVar(&cfg.Solid, "solid", false, "Disable anti-aliasing")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *fontPath != "" {
			data, err := os.ReadFile(*fontPath)
			if err != nil {
				return err
			}
			cfg.Font = data
		}
		res, err := atlasgen.Generate(cfg)
		if err != nil {
			return err
		}
		if err := writePNG(*output, res.Image); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wrote %s (%dx%d, %s at %.1fpx)\n",
			*output, res.Image.Rect.Dx(), res.Image.Rect.Dy(), res.FontName, res.Size)
		if len(res.Missing) > 0 {
			tileterm.Logger().Warn("tileterm: font lacks glyphs", "count", len(res.Missing))
			fmt.Fprintf(out, "%d glyphs missing:", len(res.Missing))
			for _, code := range res.Missing {
				fmt.Fprintf(out, " %d(%c)", code, tileterm.GlyphRune(code))
			}
			fmt.Fprintln(out)
		}
		return nil
	}
	return cmd
}
