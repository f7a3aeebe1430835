package ports

import (
	"context"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
)

// HostController is what adapters running outside the frame loop (HTTP, MCP,
// console) may ask of a host. Implementations serialise every call onto the
// frame loop, so none of these methods touch an interpreter session directly.
type HostController interface {
	// Status returns the last published host status.
	Status() domain.HostStatus

	// RequestReload schedules a force reload for the next frame.
	RequestReload(ctx context.Context) error

	// SetAutoReload sets the auto-reload flag, or toggles it when enabled is nil.
	// It returns the resulting value.
	SetAutoReload(ctx context.Context, enabled *bool) (bool, error)

	// Scene returns a snapshot of the host state.
	Scene(ctx context.Context) (domain.Snapshot, error)

	// PatchScene applies a partial update to the host state and returns the result.
	PatchScene(ctx context.Context, patch domain.ShapePatch) (domain.Snapshot, error)

	// Interact queues a GUI interaction for the next frame.
	Interact(ctx context.Context, in gui.Interaction) error

	// LastFrame returns the most recently completed frame, or nil before the first one.
	LastFrame() *gui.Frame

	// SaveSnapshot persists the host state to the configured store.
	SaveSnapshot(ctx context.Context) error
}
