package vine

import (
	"context"
	"fmt"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
)

var _ ports.HostController = (*Host)(nil)

// post queues fn for the start of the next frame.
func (h *Host) post(fn func(ctx context.Context)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	h.jobs = append(h.jobs, fn)
	return nil
}

// Do runs fn on the frame loop at the start of the next frame and waits for
// it to finish. It returns ErrHostClosed if the host closes before fn runs.
// It must not be called from the frame loop itself.
func (h *Host) Do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	err := h.post(func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-h.done:
		// Close drops queued jobs; one may still have finished first
		select {
		case <-done:
			return nil
		default:
			return ErrHostClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Host) runJobs(ctx context.Context) {
	h.mu.Lock()
	jobs := h.jobs
	h.jobs = nil
	h.mu.Unlock()

	for _, job := range jobs {
		job(ctx)
	}
}

func (h *Host) takeInteractions() []gui.Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.interactions
	h.interactions = nil
	return out
}

// Status returns the status published by the last frame.
func (h *Host) Status() domain.HostStatus {
	return *h.status.Load()
}

// LastFrame returns the most recently completed frame, or nil before the first one.
func (h *Host) LastFrame() *gui.Frame {
	return h.lastFrame.Load()
}

// RequestReload schedules a force reload for the next frame.
func (h *Host) RequestReload(ctx context.Context) error {
	return h.post(func(context.Context) {
		h.sup.RequestReload()
	})
}

// SetAutoReload sets the auto-reload flag, or toggles it when enabled is nil.
func (h *Host) SetAutoReload(ctx context.Context, enabled *bool) (bool, error) {
	var result bool
	err := h.Do(ctx, func(context.Context) {
		if enabled == nil {
			result = h.sup.ToggleAutoReload()
			return
		}
		h.sup.SetAutoReload(*enabled)
		result = *enabled
	})
	return result, err
}

// Scene returns a snapshot of the host state.
func (h *Host) Scene(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := h.Do(ctx, func(context.Context) {
		snap = *h.snapshot()
	})
	return snap, err
}

// PatchScene applies a partial update to the host state and returns the result.
func (h *Host) PatchScene(ctx context.Context, patch domain.ShapePatch) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := h.Do(ctx, func(context.Context) {
		patch.Apply(h.scene)
		snap = *h.snapshot()
	})
	return snap, err
}

// Interact queues a GUI interaction for the next frame.
func (h *Host) Interact(ctx context.Context, in gui.Interaction) error {
	if err := in.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	h.interactions = append(h.interactions, in)
	return nil
}

// SaveSnapshot persists the host state to the configured store.
func (h *Host) SaveSnapshot(ctx context.Context) error {
	if h.store == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	snap, err := h.Scene(ctx)
	if err != nil {
		return err
	}
	return h.store.Save(ctx, h.storeKey, &snap)
}
