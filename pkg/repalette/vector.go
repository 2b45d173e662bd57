package repalette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Channel bounds of a displayable colour.
const (
	ChannelMin = 0.0
	ChannelMax = 255.0
)

// Vector is an RGB colour with real-valued channels, nominally in [0, 255].
type Vector [3]float64

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns s * v.
func (v Vector) Scale(s float64) Vector {
	return Vector{s * v[0], s * v[1], s * v[2]}
}

// Blend returns spread*v + (1-spread)*c for every channel.
func (v Vector) Blend(c Vector, spread float64) Vector {
	return v.Scale(spread).Add(c.Scale(1 - spread))
}

// Clamp limits every channel to [lo, hi]. NaN channels become lo.
func (v Vector) Clamp(lo, hi float64) Vector {
	for i := range v {
		if math.IsNaN(v[i]) {
			v[i] = lo
			continue
		}
		v[i] = math.Max(lo, math.Min(hi, v[i]))
	}
	return v
}

// Trunc drops the fractional part of every channel.
func (v Vector) Trunc() Vector {
	for i := range v {
		v[i] = math.Trunc(v[i])
	}
	return v
}

// InRange reports whether every channel lies in [lo, hi].
func (v Vector) InRange(lo, hi float64) bool {
	for _, c := range v {
		if c < lo || c > hi || math.IsNaN(c) {
			return false
		}
	}
	return true
}

// Color returns v as a go-colorful colour with channels scaled to [0, 1].
// The result is not clamped.
func (v Vector) Color() colorful.Color {
	return colorful.Color{R: v[0] / ChannelMax, G: v[1] / ChannelMax, B: v[2] / ChannelMax}
}

// ToRGBA returns the displayable 8-bit colour, clamped and truncated.
func (v Vector) ToRGBA() color.RGBA {
	c := v.Clamp(ChannelMin, ChannelMax)
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 0xff}
}

// VectorOf converts any colour to a Vector of 8-bit channel values.
func VectorOf(c color.Color) Vector {
	r, g, b, _ := c.RGBA()
	return Vector{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
}
