package tileterm

import (
	"errors"
	"image"
	"testing"
)

// recordBackend is an in-memory Backend that keeps a copy of every frame.
type recordBackend struct {
	name          string
	width, height int
	title         string
	atlas         *Atlas
	frames        []Frame
	events        []Event
	closed        int

	surfaceErr error
	atlasErr   error
	submitErr  error
	closeErr   error
}

func (b *recordBackend) Name() string {
	if b.name == "" {
		return "record"
	}
	return b.name
}

func (b *recordBackend) CreateSurface(width, height int, title string) error {
	if b.surfaceErr != nil {
		return b.surfaceErr
	}
	b.width, b.height, b.title = width, height, title
	return nil
}

func (b *recordBackend) SetAtlas(a *Atlas) error {
	if b.atlasErr != nil {
		return b.atlasErr
	}
	b.atlas = a
	return nil
}

func (b *recordBackend) Submit(f *Frame) error {
	if b.submitErr != nil {
		return b.submitErr
	}
	b.frames = append(b.frames, Frame{
		Vertices:   append([]Vertex(nil), f.Vertices...),
		Indices:    append([]uint32(nil), f.Indices...),
		ClearColor: f.ClearColor,
	})
	return nil
}

func (b *recordBackend) Close() error {
	b.closed++
	return b.closeErr
}

func (b *recordBackend) PollEvents() []Event {
	ev := b.events
	b.events = nil
	return ev
}

// last returns the most recently submitted frame.
func (b *recordBackend) last(t *testing.T) *Frame {
	t.Helper()
	if len(b.frames) == 0 {
		t.Fatal("no frame submitted")
	}
	return &b.frames[len(b.frames)-1]
}

var errInjected = errors.New("injected failure")

// testAtlas returns a blank 16x16 atlas with one-pixel slots.
func testAtlas(t *testing.T) *Atlas {
	t.Helper()
	a, err := NewAtlas(image.NewNRGBA(image.Rect(0, 0, 16, 16)))
	if err != nil {
		t.Fatalf("NewAtlas() error = %v", err)
	}
	return a
}

// newTestRenderer creates a Renderer drawing into a recordBackend.
func newTestRenderer(t *testing.T, w, h int, cw, ch float64) (*Renderer, *recordBackend) {
	t.Helper()
	b := &recordBackend{}
	r, err := New("", w, h, cw, ch, WithAtlas(testAtlas(t)), WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, b
}
