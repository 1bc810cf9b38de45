// Package script drives a tileterm.Renderer from Lua.
//
// A script gets a global table term with the renderer operations and may
// define a global function tick(frame, events). Host.Tick calls it once per
// frame; returning false from tick ends the loop.
//
//	function tick(frame, events)
//	  term.clear()
//	  term.print(0, 0, 0, "frame " .. frame, "#ffffff")
//	end
//
// The Lua state is sandboxed: only the base, table, string and math
// libraries are opened.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/gogpu/tileterm"
)

// Errors returned by Host.
var (
	// ErrClosed is returned when operating on a closed Host.
	ErrClosed = errors.New("script: host is closed")

	// ErrNoTick is returned by Run when the script defines no tick function.
	ErrNoTick = errors.New("script: no tick function defined")
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = 5 * time.Second

// Host is a Lua state bound to a renderer. It is not safe for concurrent
// use, like the renderer itself.
type Host struct {
	L *lua.LState

	r       *tileterm.Renderer
	timeout time.Duration
	out     io.Writer
	frame   int
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithTimeout sets the limit for a single script call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithOutput redirects the Lua print function. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.out = w
	}
}

// New creates a Host whose term table operates on r.
func New(r *tileterm.Renderer, opts ...Option) *Host {
	h := &Host{
		r:       r,
		timeout: DefaultTimeout,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(h.luaPrint))
	L.SetGlobal("term", L.SetFuncs(L.NewTable(), h.termFuncs()))
	h.L = L
	return h
}

// DoFile runs the Lua file at path.
func (h *Host) DoFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return h.do(func() error {
		fn, err := h.L.Load(strings.NewReader(string(src)), path)
		if err != nil {
			return err
		}
		h.L.Push(fn)
		return h.L.PCall(0, lua.MultRet, nil)
	})
}

// DoString runs a chunk of Lua source.
func (h *Host) DoString(src string) error {
	return h.do(func() error {
		return h.L.DoString(src)
	})
}

// HasTick reports whether the script defines a global tick function.
func (h *Host) HasTick() bool {
	return !h.closed && h.L.GetGlobal("tick").Type() == lua.LTFunction
}

// Frame returns the number of completed tick calls.
func (h *Host) Frame() int { return h.frame }

// Tick calls the script's tick function with the frame number and events.
// It returns tileterm.ErrStop when tick returns false, which makes Tick
// usable as a tileterm.TickFunc. A script without tick is a no-op.
func (h *Host) Tick(events []tileterm.Event) error {
	if h.closed {
		return ErrClosed
	}
	fn := h.L.GetGlobal("tick")
	if fn.Type() != lua.LTFunction {
		return nil
	}

	stop := false
	err := h.do(func() error {
		if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
			lua.LNumber(h.frame), h.eventTable(events)); err != nil {
			return err
		}
		ret := h.L.Get(-1)
		h.L.Pop(1)
		stop = ret == lua.LFalse
		return nil
	})
	if err != nil {
		return err
	}
	h.frame++
	if stop {
		return tileterm.ErrStop
	}
	return nil
}

// Run drives the renderer with Tick until the script stops, the backend
// closes, or ctx is done.
func (h *Host) Run(ctx context.Context, interval time.Duration) error {
	if !h.HasTick() {
		return ErrNoTick
	}
	return tileterm.Run(ctx, h.r, interval, h.Tick)
}

// Close releases the Lua state. The renderer is not closed.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// do runs fn under the call timeout and converts Lua panics to errors.
func (h *Host) do(fn func() error) (err error) {
	if h.closed {
		return ErrClosed
	}
	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		h.L.SetContext(ctx)
		defer h.L.RemoveContext()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: lua panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (h *Host) eventTable(events []tileterm.Event) *lua.LTable {
	t := h.L.CreateTable(len(events), 0)
	for _, ev := range events {
		e := h.L.CreateTable(0, 3)
		switch ev.Type {
		case tileterm.EventKey:
			e.RawSetString("type", lua.LString("key"))
			e.RawSetString("key", lua.LString(strings.ToLower(ev.Key.String())))
			if ev.Rune != 0 {
				e.RawSetString("char", lua.LString(string(ev.Rune)))
			}
		case tileterm.EventResize:
			e.RawSetString("type", lua.LString("resize"))
			e.RawSetString("width", lua.LNumber(ev.Width))
			e.RawSetString("height", lua.LNumber(ev.Height))
		case tileterm.EventClose:
			e.RawSetString("type", lua.LString("close"))
		}
		t.Append(e)
	}
	return t
}

func (h *Host) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	return 0
}
