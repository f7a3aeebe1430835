package runtime

import (
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/ports"
)

// Bridge is one session's binding to the host state. Every session gets its
// own Bridge, so retiring a session also cuts its path to the host.
//
// While a candidate session is being validated the bridge is staged: writes
// go to a private copy of the host state and only reach the live state if
// the candidate is committed.
type Bridge struct {
	live    ports.HostState
	staged  *domain.Scene
	dirty   bool
	retired bool
}

// NewBridge binds to live, which may be nil when the host has no state.
func NewBridge(live ports.HostState) *Bridge {
	return &Bridge{live: live}
}

// Stage starts buffering writes in a copy of the live state.
func (b *Bridge) Stage() {
	if b.live == nil {
		return
	}
	var shape domain.Shape
	if s := b.live.Shape(); s != nil {
		shape = s.Clone()
	}
	b.staged = domain.NewScene(shape, b.live.BackgroundColor())
	b.dirty = false
}

// Staging reports whether writes are currently buffered.
func (b *Bridge) Staging() bool { return b.staged != nil }

// Commit applies buffered writes to the live state and stops staging.
// It reports whether anything was written.
func (b *Bridge) Commit() bool {
	staged, dirty := b.staged, b.dirty
	b.staged, b.dirty = nil, false
	if staged == nil || !dirty || b.retired {
		return false
	}
	b.live.SetBackgroundColor(staged.BackgroundColor())
	if dst, src := b.live.Shape(), staged.Shape(); dst != nil && src != nil {
		p := src.Position()
		dst.SetPosition(p.X, p.Y)
		dst.SetSize(src.Size())
		dst.SetColor(src.Color())
	}
	return true
}

// Discard drops buffered writes and stops staging.
func (b *Bridge) Discard() {
	b.staged, b.dirty = nil, false
}

// Retire detaches the bridge from the host state for good.
func (b *Bridge) Retire() {
	b.retired = true
	b.staged = nil
}

// Retired reports whether Retire was called.
func (b *Bridge) Retired() bool { return b.retired }

func (b *Bridge) state() ports.HostState {
	if b.retired {
		return nil
	}
	if b.staged != nil {
		return b.staged
	}
	return b.live
}

func (b *Bridge) shape() domain.Shape {
	st := b.state()
	if st == nil {
		return nil
	}
	return st.Shape()
}

// Reachable reports whether there is a shape to read and write.
func (b *Bridge) Reachable() bool { return b.shape() != nil }

func (b *Bridge) touch() {
	if b.staged != nil {
		b.dirty = true
	}
}

// SetPosition moves the shape. It reports false if no shape is reachable.
func (b *Bridge) SetPosition(x, y float64) bool {
	s := b.shape()
	if s == nil {
		return false
	}
	s.SetPosition(x, y)
	b.touch()
	return true
}

// SetSize resizes the shape; sizes <= 0 become domain.DefaultSize.
func (b *Bridge) SetSize(size float64) bool {
	s := b.shape()
	if s == nil {
		return false
	}
	s.SetSize(size)
	b.touch()
	return true
}

// SetColor recolours the shape without clamping.
func (b *Bridge) SetColor(c domain.Color) bool {
	s := b.shape()
	if s == nil {
		return false
	}
	s.SetColor(c)
	b.touch()
	return true
}

// SetBackgroundColor sets the host background colour.
func (b *Bridge) SetBackgroundColor(c domain.Color) bool {
	st := b.state()
	if st == nil {
		return false
	}
	st.SetBackgroundColor(c)
	b.touch()
	return true
}

func (b *Bridge) Position() (domain.Vec2, bool) {
	s := b.shape()
	if s == nil {
		return domain.Vec2{}, false
	}
	return s.Position(), true
}

func (b *Bridge) Size() (float64, bool) {
	s := b.shape()
	if s == nil {
		return 0, false
	}
	return s.Size(), true
}

func (b *Bridge) Color() (domain.Color, bool) {
	s := b.shape()
	if s == nil {
		return domain.Color{}, false
	}
	return s.Color(), true
}

func (b *Bridge) BackgroundColor() (domain.Color, bool) {
	st := b.state()
	if st == nil {
		return domain.Color{}, false
	}
	return st.BackgroundColor(), true
}
