package tileterm

import (
	"fmt"
	"sort"
	"sync"
)

// Backend is the graphics collaborator a Renderer hands finished geometry to.
// It owns the presentation surface, the atlas texture and whatever program
// draws the frame.
//
// A Backend draws every Frame with one draw submission: each sampled atlas
// texel is multiplied by the vertex shade color, texels whose RGB equal
// ChromaKey become fully transparent, and the result is alpha blended
// (source alpha, one minus source alpha) over the surface, which is first
// cleared to Frame.ClearColor.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// CreateSurface prepares a presentation surface of the given pixel size.
	// Headless backends may ignore title.
	CreateSurface(width, height int, title string) error

	// SetAtlas uploads the glyph atlas. It is called once, after
	// CreateSurface and before the first Submit.
	SetAtlas(a *Atlas) error

	// Submit draws and presents one frame. The backend must not retain f
	// or its slices after returning.
	Submit(f *Frame) error

	// Close releases all backend resources.
	Close() error
}

// EventSource is implemented by backends that deliver input events.
type EventSource interface {
	// PollEvents returns the events received since the last call without
	// blocking.
	PollEvents() []Event
}

// Runner is implemented by backends that must own the main loop, such as
// windowing toolkits. Run calls tick once per frame until tick returns an
// error, the window is closed, or ErrStop is returned from tick.
type Runner interface {
	Run(tick func() error) error
}

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

// Backend names used by the packages under backend/.
const (
	BackendWGPU     = "wgpu"
	BackendEbiten   = "ebiten"
	BackendSoftware = "software"
	BackendHeadless = "headless"
	BackendTTY      = "tty"
)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for DefaultBackend (first registered wins).
	backendPriority = []string{BackendWGPU, BackendEbiten, BackendSoftware, BackendHeadless}
)

// RegisterBackend registers a backend factory under name. Backend packages
// call it from init, so a blank import makes the backend selectable.
// Registering an existing name replaces the previous factory.
func RegisterBackend(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// UnregisterBackend removes a backend from the registry.
func UnregisterBackend(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// AvailableBackends returns the sorted names of registered backends.
func AvailableBackends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates the backend registered under name.
func NewBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrNoBackend, name)
	}
	b, err := factory()
	if err != nil {
		return nil, backendError("create "+name, err)
	}
	return b, nil
}

// DefaultBackend creates the highest-priority registered backend whose
// factory succeeds. Backends outside the priority list (such as tty) are
// only used when named.
func DefaultBackend() (Backend, error) {
	registryMu.RLock()
	var names []string
	for _, n := range backendPriority {
		if _, ok := backends[n]; ok {
			names = append(names, n)
		}
	}
	registryMu.RUnlock()

	var lastErr error
	for _, name := range names {
		b, err := NewBackend(name)
		if err == nil {
			Logger().Info("tileterm: backend selected", "backend", name)
			return b, nil
		}
		Logger().Warn("tileterm: backend unavailable", "backend", name, "err", err)
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackend
}
