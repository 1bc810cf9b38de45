// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/tileterm"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend for openDevice.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Config holds configuration for the wgpu backend.
type Config struct {
	// Format is the color target format. RGBA8Unorm and BGRA8Unorm are
	// supported; readback converts BGRA to RGBA.
	// Default: TextureFormatRGBA8Unorm
	Format gputypes.TextureFormat

	// InitialQuadCapacity is the initial vertex buffer capacity in quads.
	// Buffers grow by doubling when a frame needs more.
	// Default: 4096
	InitialQuadCapacity int

	// Readback copies each frame back into Image after drawing.
	// Default: true
	Readback bool

	// SPIRV compiles the shader with naga and loads SPIR-V instead of WGSL.
	// Default: false
	SPIRV bool

	// Timeout bounds the wait for each submitted frame.
	// Default: 5s
	Timeout time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Format:              gputypes.TextureFormatRGBA8Unorm,
		InitialQuadCapacity: 4096,
		Readback:            true,
		Timeout:             5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = d.Format
	}
	if c.InitialQuadCapacity <= 0 {
		c.InitialQuadCapacity = d.InitialQuadCapacity
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// New creates a backend on its own GPU device opened through Vulkan.
func New(cfg Config) (*Backend, error) {
	instance, device, queue, name, err := openDevice()
	if err != nil {
		return nil, err
	}
	b := newBackend(device, queue, cfg)
	b.instance = instance
	b.adapterName = name
	tileterm.Logger().Info("wgpu: device opened", "adapter", name)
	return b, nil
}

// NewWithDevice creates a backend on a device owned by the caller. Close
// releases the backend's resources but leaves the device open.
func NewWithDevice(device hal.Device, queue hal.Queue, cfg Config) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", ErrInvalidProvider)
	}
	b := newBackend(device, queue, cfg)
	b.external = true
	return b, nil
}

// NewFromProvider creates a backend that shares the GPU device of a host
// application. The provider must implement HalDevice() any and HalQueue()
// any returning hal.Device and hal.Queue. The provider's surface format is
// used for the color target unless it is undefined.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrInvalidProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrInvalidProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrInvalidProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrInvalidProvider)
	}

	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		cfg.Format = f
	}
	return NewWithDevice(device, queue, cfg)
}

// openDevice creates a Vulkan instance and opens the best adapter.
func openDevice() (hal.Instance, hal.Device, hal.Queue, string, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, nil, nil, "", ErrNoVulkan
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, "", ErrNoAdapter
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, "", fmt.Errorf("wgpu: open device: %w", err)
	}
	return instance, openDev.Device, openDev.Queue, selected.Info.Name, nil
}

// selectAdapter prefers a hardware GPU and falls back to the first adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

func init() {
	tileterm.RegisterBackend(tileterm.BackendWGPU, func() (tileterm.Backend, error) {
		return New(DefaultConfig())
	})
}
