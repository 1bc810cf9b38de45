// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !headless

package ebiten

// tileShaderKage multiplies the atlas texel by the vertex shade and drops
// magenta texels. Ebiten images hold premultiplied color, so the texel is
// unpremultiplied before the key test and the result is returned straight
// for alphaBlend.
var tileShaderKage = []byte(`//kage:unit pixels

package main

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	t := imageSrc0At(srcPos)
	if t.a == 0 {
		return vec4(0)
	}
	rgb := t.rgb / t.a
	if rgb.r > 0.998 && rgb.g < 0.002 && rgb.b > 0.998 {
		return vec4(0)
	}
	return vec4(rgb, t.a) * color
}
`)
