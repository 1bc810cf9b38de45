package tileterm

import (
	"context"
	"errors"
	"time"
)

// ErrStop may be returned by a tick function to end Run without an error.
var ErrStop = errors.New("tileterm: stop")

// TickFunc is called once per frame with the events received since the
// previous frame. It mutates cells; Run renders afterwards.
type TickFunc func(events []Event) error

// DefaultInterval is the frame interval Run uses when interval is zero.
const DefaultInterval = 16 * time.Millisecond

// Run drives r until ctx is done, tick returns an error, or the backend
// reports EventClose. Each frame polls events, calls tick and renders.
//
// If the backend implements Runner it owns the loop and interval is
// ignored. Otherwise frames are paced by a ticker of the given interval.
// ErrStop and EventClose end the loop with a nil error.
func Run(ctx context.Context, r *Renderer, interval time.Duration, tick TickFunc) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	var frames uint64
	step := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		events := pollEvents(r.backend)
		for _, ev := range events {
			if ev.Type == EventClose {
				return ErrStop
			}
		}
		if tick != nil {
			if err := tick(events); err != nil {
				return err
			}
		}
		frames++
		return r.Render()
	}

	var err error
	if runner, ok := r.backend.(Runner); ok {
		err = runner.Run(step)
	} else {
		err = runTicker(ctx, interval, step)
	}
	Logger().Debug("tileterm: loop finished", "frames", frames, "err", err)

	switch {
	case errors.Is(err, ErrStop):
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}

func runTicker(ctx context.Context, interval time.Duration, step func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func pollEvents(b Backend) []Event {
	src, ok := b.(EventSource)
	if !ok {
		return nil
	}
	return src.PollEvents()
}
