package domain

import "fmt"

// Color is an RGBA colour with unconstrained float components.
// Values outside [0,1] are preserved as given.
type Color struct {
	R float64 `json:"r" yaml:"r" mapstructure:"r"`
	G float64 `json:"g" yaml:"g" mapstructure:"g"`
	B float64 `json:"b" yaml:"b" mapstructure:"b"`
	A float64 `json:"a" yaml:"a" mapstructure:"a"`
}

// RGB returns a fully opaque colour.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA returns a colour with an explicit alpha.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromSlice builds a colour from 3 or 4 components.
// A missing alpha defaults to 1.0.
func ColorFromSlice(c []float64) (Color, error) {
	switch len(c) {
	case 3:
		return RGB(c[0], c[1], c[2]), nil
	case 4:
		return RGBA(c[0], c[1], c[2], c[3]), nil
	default:
		return Color{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(c))
	}
}

// ColorFromU32 unpacks an ImGui-style packed colour (0xAABBGGRR).
func ColorFromU32(v uint32) Color {
	return Color{
		R: float64(v&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64((v>>16)&0xff) / 255,
		A: float64((v>>24)&0xff) / 255,
	}
}

// Slice returns the components as {r, g, b, a}.
func (c Color) Slice() []float64 {
	return []float64{c.R, c.G, c.B, c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%.3g, %.3g, %.3g, %.3g)", c.R, c.G, c.B, c.A)
}

// Vec2 is a 2D vector in host (window) coordinates, Y pointing down.
type Vec2 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}
