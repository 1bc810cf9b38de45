// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"
)

// tileShaderWGSL draws glyph quads. The atlas is uploaded bottom row first,
// so texture row 0 is v = 0 and texel lookups use floor(uv * dims) directly.
const tileShaderWGSL = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) tex_coord: vec2<f32>,
    @location(2) shade: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
    @location(1) shade: vec4<f32>,
}

@group(0) @binding(0) var atlas: texture_2d<f32>;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.tex_coord = in.tex_coord;
    out.shade = in.shade;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let dims = vec2<f32>(textureDimensions(atlas));
    let pos = clamp(floor(in.tex_coord * dims), vec2<f32>(0.0), dims - vec2<f32>(1.0));
    let texel = textureLoad(atlas, vec2<i32>(pos), 0);
    if (all(texel.rgb == vec3<f32>(1.0, 0.0, 1.0))) {
        return vec4<f32>(0.0);
    }
    return texel * in.shade;
}
`

// ShaderSource returns the WGSL source of the tile shader.
func ShaderSource() string {
	return tileShaderWGSL
}

// CompileSPIRV compiles the tile shader to SPIR-V words with naga.
func CompileSPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(tileShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile tile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("wgpu: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
