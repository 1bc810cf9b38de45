// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import "errors"

// Package errors for the wgpu backend.
var (
	// ErrNoVulkan is returned when the Vulkan HAL backend is not linked in.
	ErrNoVulkan = errors.New("wgpu: vulkan backend not available")

	// ErrNoAdapter is returned when the instance reports no GPU adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrInvalidProvider is returned when a device provider does not expose
	// HAL device and queue handles.
	ErrInvalidProvider = errors.New("wgpu: provider does not expose HAL types")

	// ErrInvalidDimensions is returned when the surface size is not positive.
	ErrInvalidDimensions = errors.New("wgpu: invalid dimensions")

	// ErrNoSurface is returned when SetAtlas or Submit is called before
	// CreateSurface.
	ErrNoSurface = errors.New("wgpu: surface not created")

	// ErrNoAtlas is returned when Submit is called before SetAtlas.
	ErrNoAtlas = errors.New("wgpu: atlas not set")

	// ErrGPUTimeout is returned when a submitted frame does not finish
	// within Config.Timeout.
	ErrGPUTimeout = errors.New("wgpu: timed out waiting for GPU")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("wgpu: backend is closed")
)
