package domain

// DefaultBackground is the clear colour used when none is configured.
var DefaultBackground = RGBA(0.2, 0.2, 0.2, 1)

// Scene is the live host state exposed to scripts: one managed shape and
// the background colour. A nil shape is valid and means "no shape".
type Scene struct {
	shape      Shape
	background Color
}

// NewScene creates a scene around shape (which may be nil).
func NewScene(shape Shape, background Color) *Scene {
	return &Scene{shape: shape, background: background}
}

// Shape returns the managed shape, or nil.
func (s *Scene) Shape() Shape { return s.shape }

// BackgroundColor returns the clear colour.
func (s *Scene) BackgroundColor() Color { return s.background }

// SetBackgroundColor replaces the clear colour.
func (s *Scene) SetBackgroundColor(c Color) { s.background = c }

// Clone returns a deep copy; the shape is cloned as well.
func (s *Scene) Clone() *Scene {
	c := &Scene{background: s.background}
	if s.shape != nil {
		c.shape = s.shape.Clone()
	}
	return c
}

// CopyFrom overwrites s with the values held by other, keeping the
// identity of s and of its shape.
func (s *Scene) CopyFrom(other *Scene) {
	s.background = other.background
	if other.shape == nil || s.shape == nil {
		return
	}
	p := other.shape.Position()
	s.shape.SetPosition(p.X, p.Y)
	s.shape.SetSize(other.shape.Size())
	s.shape.SetColor(other.shape.Color())
}
