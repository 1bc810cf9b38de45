package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/gogpu/tileterm"
)

func (h *Host) termFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"set":        h.termSet,
		"set_ext":    h.termSetExt,
		"print":      h.termPrint,
		"clear":      h.termClear,
		"back_color": h.termBackColor,
		"render":     h.termRender,
		"size":       h.termSize,
		"depth":      h.termDepth,
		"glyph":      h.termGlyph,
	}
}

// term.set(code, x, y, z, color)
func (h *Host) termSet(L *lua.LState) int {
	code := checkCode(L, 1)
	x, y, z := L.CheckInt(2), L.CheckInt(3), L.CheckInt(4)
	c := optColor(L, 5)
	if err := h.r.Set(code, x, y, z, c); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// term.set_ext(code, x, dx, y, dy, z, color)
func (h *Host) termSetExt(L *lua.LState) int {
	code := checkCode(L, 1)
	x, dx := L.CheckInt(2), float64(L.CheckNumber(3))
	y, dy := L.CheckInt(4), float64(L.CheckNumber(5))
	z := L.CheckInt(6)
	c := optColor(L, 7)
	if err := h.r.SetExt(code, x, dx, y, dy, z, c); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// term.print(x, y, z, text, color)
func (h *Host) termPrint(L *lua.LState) int {
	x, y, z := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3)
	s := L.CheckString(4)
	c := optColor(L, 5)
	if err := h.r.Print(x, y, z, s, c); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Host) termClear(*lua.LState) int {
	h.r.Clear()
	return 0
}

// term.back_color(color)
func (h *Host) termBackColor(L *lua.LState) int {
	h.r.SetBackColor(checkColor(L, 1))
	return 0
}

func (h *Host) termRender(L *lua.LState) int {
	if err := h.r.Render(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// term.size() returns the grid width and height.
func (h *Host) termSize(L *lua.LState) int {
	w, ht := h.r.Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(ht))
	return 2
}

func (h *Host) termDepth(L *lua.LState) int {
	L.Push(lua.LNumber(h.r.Depth()))
	return 1
}

// term.glyph(s) returns the glyph code of the first rune of s.
func (h *Host) termGlyph(L *lua.LState) int {
	L.Push(lua.LNumber(checkCode(L, 1)))
	return 1
}

// checkCode accepts a glyph code 0..255 or a string whose first rune is
// encoded to code page 437.
func checkCode(L *lua.LState, n int) uint8 {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		if v < 0 || v > 255 {
			L.ArgError(n, "glyph code out of range 0..255")
		}
		return uint8(v)
	case lua.LString:
		for _, r := range string(v) {
			return tileterm.GlyphCode(r)
		}
		L.ArgError(n, "empty glyph string")
	default:
		L.TypeError(n, lua.LTNumber)
	}
	return 0
}

// optColor is checkColor with white as the default.
func optColor(L *lua.LState, n int) tileterm.Color {
	if L.Get(n) == lua.LNil {
		return tileterm.White
	}
	return checkColor(L, n)
}

// checkColor accepts a hex string ("#rrggbb", "#rgba", ...) or a table
// {r, g, b[, a]} of 0..255 components; a missing alpha is opaque.
func checkColor(L *lua.LState, n int) tileterm.Color {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return tileterm.Hex(string(v))
	case *lua.LTable:
		comp := func(i int, def uint8) uint8 {
			num, ok := v.RawGetInt(i).(lua.LNumber)
			if !ok {
				return def
			}
			return uint8(min(max(int(num), 0), 255)) //nolint:gosec // clamped to byte range
		}
		return tileterm.RGBA(comp(1, 0), comp(2, 0), comp(3, 0), comp(4, 255))
	default:
		L.ArgError(n, "color must be a hex string or {r, g, b[, a]} table")
	}
	return tileterm.Color{}
}
