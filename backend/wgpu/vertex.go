// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tileterm"
)

// vertexStride is the size of one encoded vertex: position (2 x f32),
// tex_coord (2 x f32) and shade (4 x f32).
const vertexStride = 32

// tileVertexLayout describes the encoded vertex to the pipeline.
func tileVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // tex_coord
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // shade
			},
		},
	}
}

// encodeVertices appends vs to dst as little-endian float32 records,
// narrowing the float64 positions and texture coordinates.
func encodeVertices(dst []byte, vs []tileterm.Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		dst = appendFloat(dst, float32(v.Position[0]))
		dst = appendFloat(dst, float32(v.Position[1]))
		dst = appendFloat(dst, float32(v.TexCoords[0]))
		dst = appendFloat(dst, float32(v.TexCoords[1]))
		for _, s := range v.Shade {
			dst = appendFloat(dst, s)
		}
	}
	return dst
}

// encodeIndices appends idx to dst as little-endian uint32 values.
func encodeIndices(dst []byte, idx []uint32) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint32(dst, i)
	}
	return dst
}

func appendFloat(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}
