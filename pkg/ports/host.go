package ports

import "github.com/aretw0/vine/pkg/domain"

// HostState is the host-owned state scripts may observe and mutate through App.*.
type HostState interface {
	// Shape returns the managed shape, or nil if the host has none.
	Shape() domain.Shape
	BackgroundColor() domain.Color
	SetBackgroundColor(c domain.Color)
}
