package domain

import (
	"fmt"
	"math"
)

// DefaultSize replaces any non-positive size given to a shape.
const DefaultSize = 1.0

// Shape kinds understood by NewShape.
const (
	ShapeSquare = "square"
	ShapeCircle = "circle"
)

// Shape is the capability set of a host-managed renderable.
// The Host State Bridge depends only on this interface.
type Shape interface {
	Kind() string

	SetPosition(x, y float64)
	SetSize(size float64)
	SetColor(c Color)

	Position() Vec2
	Size() float64
	Color() Color

	// Contains reports whether p hits the shape.
	Contains(p Vec2) bool
	Clone() Shape
}

// NewShape creates a shape of the given kind with default properties
// (origin, DefaultSize, opaque white).
func NewShape(kind string) (Shape, error) {
	b := base{size: DefaultSize, color: RGB(1, 1, 1)}
	switch kind {
	case "", ShapeSquare:
		return &Square{base: b}, nil
	case ShapeCircle:
		return &Circle{base: b}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", kind)
	}
}

type base struct {
	position Vec2
	size     float64
	color    Color
}

func (b *base) SetPosition(x, y float64) { b.position = Vec2{X: x, Y: y} }

func (b *base) SetSize(size float64) {
	if size > 0 {
		b.size = size
		return
	}
	b.size = DefaultSize
}

func (b *base) SetColor(c Color) { b.color = c }
func (b *base) Position() Vec2   { return b.position }
func (b *base) Size() float64    { return b.size }
func (b *base) Color() Color     { return b.color }

// Square is positioned by its top-left corner; size is the side length.
type Square struct {
	base
}

func (s *Square) Kind() string { return ShapeSquare }

func (s *Square) Contains(p Vec2) bool {
	return p.X >= s.position.X && p.X <= s.position.X+s.size &&
		p.Y >= s.position.Y && p.Y <= s.position.Y+s.size
}

func (s *Square) Clone() Shape {
	c := *s
	return &c
}

// Circle is positioned by its centre; size is the diameter.
type Circle struct {
	base
}

func (c *Circle) Kind() string { return ShapeCircle }

func (c *Circle) Contains(p Vec2) bool {
	d := p.Sub(c.position)
	return math.Hypot(d.X, d.Y) <= c.size/2
}

func (c *Circle) Clone() Shape {
	cc := *c
	return &cc
}
