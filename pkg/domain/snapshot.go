package domain

import "time"

// ShapeState is the serialisable form of a Shape.
type ShapeState struct {
	Kind     string  `json:"kind"`
	Position Vec2    `json:"position"`
	Size     float64 `json:"size"`
	Color    Color   `json:"color"`
}

// Snapshot is a persisted copy of the host state.
type Snapshot struct {
	Script     string      `json:"script,omitempty"`
	Shape      *ShapeState `json:"shape,omitempty"`
	Background Color       `json:"background"`
	AutoReload bool        `json:"auto_reload"`
	SavedAt    time.Time   `json:"saved_at"`

	// Sealed holds an encrypted snapshot. An envelope carries nothing else.
	Sealed []byte `json:"sealed,omitempty"`
}

// Snapshot captures the current scene.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{Background: s.background}
	if s.shape != nil {
		snap.Shape = &ShapeState{
			Kind:     s.shape.Kind(),
			Position: s.shape.Position(),
			Size:     s.shape.Size(),
			Color:    s.shape.Color(),
		}
	}
	return snap
}

// Restore applies a snapshot to the scene. A shape of a different kind
// replaces the current one.
func (s *Scene) Restore(snap Snapshot) error {
	s.background = snap.Background
	if snap.Shape == nil {
		return nil
	}
	if s.shape == nil || s.shape.Kind() != snap.Shape.Kind {
		shape, err := NewShape(snap.Shape.Kind)
		if err != nil {
			return err
		}
		s.shape = shape
	}
	s.shape.SetPosition(snap.Shape.Position.X, snap.Shape.Position.Y)
	s.shape.SetSize(snap.Shape.Size)
	s.shape.SetColor(snap.Shape.Color)
	return nil
}
