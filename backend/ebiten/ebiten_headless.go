// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build headless

package ebiten

// Available reports whether the ebiten backend was compiled in.
func Available() bool { return false }
