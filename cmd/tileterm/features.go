package main

import (
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/internal/demo"
)

func featuresCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Show the feature tour: a full grid, stacked layers and a drifting glyph",
		Args:  cobra.NoArgs,
	}
	seed := cmd.Flags().Uint64("seed", 0, "Color seed (default: random)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := g.openRenderer(g.backend, demo.FeaturesWidth, demo.FeaturesHeight, "tileterm features")
		if err != nil {
			return err
		}
		defer r.Close()

		f, err := demo.NewFeatures(r, newRand(*seed))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return tileterm.Run(ctx, r, g.interval, f.Tick)
	}
	return cmd
}

func mapgenCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapgen",
		Short: "Explore a generated cave with the arrow keys (Escape quits)",
		Args:  cobra.NoArgs,
	}
	cfg := demo.DefaultMapConfig()
	flags := cmd.Flags()
	seed := flags.Uint64("seed", 0, "Map seed (default: random)")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "Map width in cells")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "Map height in cells")
	flags.IntVar(&cfg.Walks, "walks", cfg.Walks, "Number of drunkard walks")
	flags.IntVar(&cfg.Steps, "steps", cfg.Steps, "Steps per walk")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := g.openRenderer(g.backend, cfg.Width, cfg.Height, "tileterm mapgen")
		if err != nil {
			return err
		}
		defer r.Close()

		m := demo.GenerateMap(cfg, newRand(*seed))
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return tileterm.Run(ctx, r, g.interval, m.TickFunc(r))
	}
	return cmd
}

// newRand returns a generator for seed, or a randomly seeded one for 0.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	tileterm.Logger().Debug("tileterm: random seed", "seed", seed)
	return rand.New(rand.NewPCG(seed, seed))
}

