package vine

import (
	"context"
	"errors"
	"time"
)

// DefaultFPS is the frame rate Run uses when given zero.
const DefaultFPS = 60

// InputFunc supplies the input of the next frame.
type InputFunc func() Input

// Run drives frames at fps until ctx is done, then closes the host.
// input may be nil for a host without user input.
func (h *Host) Run(ctx context.Context, fps int, input InputFunc) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if err := h.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	h.logger.Info("frame loop started", "fps", fps)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("frame loop stopped", "frames", h.frames)
			// ctx is done; closing still needs to reach the store
			err := h.Close(context.WithoutCancel(ctx))
			if errors.Is(ctx.Err(), context.Canceled) {
				return err
			}
			return errors.Join(ctx.Err(), err)
		case <-ticker.C:
			var in Input
			if input != nil {
				in = input()
			}
			h.Frame(ctx, in)
		}
	}
}
