package tileterm

import (
	"errors"
	"slices"
	"testing"
)

// withRegistry swaps the backend registry for the duration of a test.
func withRegistry(t *testing.T, factories map[string]BackendFactory) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = factories
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func recordFactory(name string) BackendFactory {
	return func() (Backend, error) {
		return &recordBackend{name: name}, nil
	}
}

func TestRegistry(t *testing.T) {
	withRegistry(t, map[string]BackendFactory{})

	RegisterBackend("b", recordFactory("b"))
	RegisterBackend("a", recordFactory("a"))
	if got := AvailableBackends(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("AvailableBackends() = %v, want [a b]", got)
	}

	b, err := NewBackend("a")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.Name() != "a" {
		t.Errorf("Name() = %q, want a", b.Name())
	}

	UnregisterBackend("a")
	if _, err := NewBackend("a"); !errors.Is(err, ErrNoBackend) {
		t.Errorf("NewBackend(unregistered) error = %v, want ErrNoBackend", err)
	}
}

func TestDefaultBackendPriority(t *testing.T) {
	withRegistry(t, map[string]BackendFactory{
		BackendHeadless: recordFactory(BackendHeadless),
		BackendSoftware: recordFactory(BackendSoftware),
		BackendTTY:      recordFactory(BackendTTY),
	})

	b, err := DefaultBackend()
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != BackendSoftware {
		t.Errorf("DefaultBackend() = %q, want software", b.Name())
	}
}

func TestDefaultBackendFallsBack(t *testing.T) {
	withRegistry(t, map[string]BackendFactory{
		BackendWGPU:     func() (Backend, error) { return nil, errInjected },
		BackendHeadless: recordFactory(BackendHeadless),
	})

	b, err := DefaultBackend()
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != BackendHeadless {
		t.Errorf("DefaultBackend() = %q, want headless", b.Name())
	}
}

func TestDefaultBackendNone(t *testing.T) {
	withRegistry(t, map[string]BackendFactory{
		BackendTTY: recordFactory(BackendTTY),
	})
	if _, err := DefaultBackend(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("DefaultBackend() error = %v, want ErrNoBackend", err)
	}

	withRegistry(t, map[string]BackendFactory{
		BackendWGPU: func() (Backend, error) { return nil, errInjected },
	})
	_, err := DefaultBackend()
	if !errors.Is(err, ErrBackend) || !errors.Is(err, errInjected) {
		t.Errorf("DefaultBackend() error = %v, want the factory failure", err)
	}
}

func TestNewUsesDefaultBackend(t *testing.T) {
	rb := &recordBackend{name: BackendHeadless}
	withRegistry(t, map[string]BackendFactory{
		BackendHeadless: func() (Backend, error) { return rb, nil },
	})

	r, err := New("", 2, 2, 4, 4, WithAtlas(testAtlas(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()
	if r.Backend() != Backend(rb) {
		t.Error("New() did not use the registered backend")
	}
}
