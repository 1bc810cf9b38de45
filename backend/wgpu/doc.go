// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides a GPU rendering backend for tileterm using the
// gogpu/wgpu HAL.
//
// The backend renders each frame into an offscreen color target with a single
// indexed draw: one render pipeline, one bind group holding the atlas texture,
// and one vertex and index buffer pair that grows with the frame. After the
// draw the target is copied into a staging buffer and read back into an
// RGBA image, so the backend works without a window and can be embedded in
// hosts that present the image themselves.
//
// # Device Selection
//
// New opens its own device through the Vulkan HAL backend, preferring a
// discrete or integrated GPU. Hosts that already own a device can share it:
//
//	b, err := wgpu.NewFromProvider(provider) // gpucontext.DeviceProvider
//
// The provider must also expose HalDevice() and HalQueue() returning the
// underlying hal.Device and hal.Queue.
//
// # Registration
//
// Importing the package registers the backend under the name "wgpu":
//
//	import _ "github.com/gogpu/tileterm/backend/wgpu"
//
// # Shading
//
// The fragment shader loads the nearest atlas texel, multiplies it by the
// vertex shade and discards texels whose RGB equal the magenta chroma key.
// Blending is source alpha over one minus source alpha for both color and
// alpha.
package wgpu
