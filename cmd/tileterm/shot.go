package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/internal/demo"
)

// imageBackend is implemented by backends that keep the last frame in
// memory.
type imageBackend interface {
	Image() *image.NRGBA
}

func shotCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shot [features|mapgen]",
		Short: "Render one demo frame offscreen and write it as PNG",
		Args:  cobra.MaximumNArgs(1),
	}
	flags := cmd.Flags()
	output := flags.StringP("output", "o", "tileterm.png", "Output file")
	seed := flags.Uint64("seed", 1, "Demo seed")
	frames := flags.Int("frames", 1, "Ticks to run before the snapshot")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		scene := "features"
		if len(args) == 1 {
			scene = args[0]
		}
		name := g.backend
		if name == "" {
			name = tileterm.BackendSoftware
		}
		if name != tileterm.BackendSoftware && name != tileterm.BackendWGPU {
			return fmt.Errorf("shot needs an offscreen backend (software or wgpu), got %q", name)
		}

		var (
			tick   tileterm.TickFunc
			width  int
			height int
		)
		cfg := demo.DefaultMapConfig()
		switch scene {
		case "features":
			width, height = demo.FeaturesWidth, demo.FeaturesHeight
		case "mapgen":
			width, height = cfg.Width, cfg.Height
		default:
			return fmt.Errorf("unknown scene %q", scene)
		}

		r, err := g.openRenderer(name, width, height, "tileterm shot")
		if err != nil {
			return err
		}
		defer r.Close()

		if scene == "features" {
			f, err := demo.NewFeatures(r, newRand(*seed))
			if err != nil {
				return err
			}
			tick = f.Tick
		} else {
			tick = demo.GenerateMap(cfg, newRand(*seed)).TickFunc(r)
		}

		for i := 0; i < max(*frames, 1); i++ {
			if err := tick(nil); err != nil {
				return err
			}
			if err := r.Render(); err != nil {
				return err
			}
		}

		ib, ok := r.Backend().(imageBackend)
		if !ok || ib.Image() == nil {
			return errors.New("backend kept no image")
		}
		if err := writePNG(*output, ib.Image()); err != nil {
			return err
		}
		tileterm.Logger().Info("tileterm: snapshot written", "path", *output, "backend", name)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", *output, ib.Image().Rect.Dx(), ib.Image().Rect.Dy())
		return nil
	}
	return cmd
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
