package vine

import (
	"context"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
)

// drag moves the managed shape with the mouse. A press that lands on the
// shape, and not on GUI content, starts a drag; it ends on release.
type drag struct {
	active  bool
	wasDown bool
	offset  domain.Vec2
}

// update applies one frame of mouse input. It returns the new position and
// true when the shape moved this frame.
func (d *drag) update(shape domain.Shape, mouse gui.Mouse, captured bool) (domain.Vec2, bool) {
	pressed := mouse.Down && !d.wasDown
	d.wasDown = mouse.Down
	if shape == nil || !mouse.Down {
		d.active = false
		return domain.Vec2{}, false
	}
	if !d.active {
		if !pressed || captured || !shape.Contains(mouse.Pos) {
			return domain.Vec2{}, false
		}
		d.active = true
		d.offset = mouse.Pos.Sub(shape.Position())
		return domain.Vec2{}, false
	}
	next := mouse.Pos.Sub(d.offset)
	if next == shape.Position() {
		return next, false
	}
	shape.SetPosition(next.X, next.Y)
	return next, true
}

// Dragging reports whether the shape is being dragged.
func (h *Host) Dragging() bool { return h.drag.active }

func (h *Host) applyDrag(ctx context.Context, mouse gui.Mouse) {
	pos, moved := h.drag.update(h.scene.Shape(), mouse, h.backend.WantCaptureMouse())
	if !moved {
		return
	}
	if s := h.sup.Active(); s != nil {
		// Errors are logged by the session and reported through the hooks
		_, _ = s.NotifyShapeMoved(ctx, pos.X, pos.Y)
	}
}
