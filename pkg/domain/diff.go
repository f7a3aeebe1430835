package domain

// SnapshotDiff represents the changes between two snapshots.
// It is serialized to JSON for partial updates on HTTP clients.
type SnapshotDiff struct {
	Kind       *string  `json:"kind,omitempty"`
	Position   *Vec2    `json:"position,omitempty"`
	Size       *float64 `json:"size,omitempty"`
	Color      *Color   `json:"color,omitempty"`
	Background *Color   `json:"background,omitempty"`
	AutoReload *bool    `json:"auto_reload,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, every field of newSnap is reported (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{}

	if oldSnap == nil || oldSnap.Background != newSnap.Background {
		bg := newSnap.Background
		diff.Background = &bg
	}
	if oldSnap == nil || oldSnap.AutoReload != newSnap.AutoReload {
		auto := newSnap.AutoReload
		diff.AutoReload = &auto
	}

	diffShape(diff, oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffShape(diff *SnapshotDiff, oldSnap, newSnap *Snapshot) {
	next := newSnap.Shape
	if next == nil {
		return
	}
	var prev *ShapeState
	if oldSnap != nil {
		prev = oldSnap.Shape
	}

	if prev == nil || prev.Kind != next.Kind {
		kind := next.Kind
		diff.Kind = &kind
	}
	if prev == nil || prev.Position != next.Position {
		pos := next.Position
		diff.Position = &pos
	}
	if prev == nil || prev.Size != next.Size {
		size := next.Size
		diff.Size = &size
	}
	if prev == nil || prev.Color != next.Color {
		c := next.Color
		diff.Color = &c
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Kind == nil &&
		d.Position == nil &&
		d.Size == nil &&
		d.Color == nil &&
		d.Background == nil &&
		d.AutoReload == nil
}
