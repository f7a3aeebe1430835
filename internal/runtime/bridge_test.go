package runtime_test

import (
	"testing"

	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_WritesThroughWhenNotStaging(t *testing.T) {
	scene := newScene(t)
	b := runtime.NewBridge(scene)

	require.True(t, b.Reachable())
	assert.True(t, b.SetPosition(1, 2))
	assert.True(t, b.SetSize(-3))
	assert.True(t, b.SetColor(domain.RGB(0, 1, 0)))
	assert.True(t, b.SetBackgroundColor(domain.RGB(0, 0, 0)))

	assert.Equal(t, domain.Vec2{X: 1, Y: 2}, scene.Shape().Position())
	assert.Equal(t, domain.DefaultSize, scene.Shape().Size())
	assert.Equal(t, domain.RGBA(0, 1, 0, 1), scene.Shape().Color())
	assert.Equal(t, domain.RGBA(0, 0, 0, 1), scene.BackgroundColor())
}

func TestBridge_Staging(t *testing.T) {
	scene := newScene(t)
	b := runtime.NewBridge(scene)
	b.Stage()
	require.True(t, b.Staging())

	b.SetPosition(9, 9)
	b.SetSize(12)
	pos, ok := b.Position()
	require.True(t, ok)
	assert.Equal(t, domain.Vec2{X: 9, Y: 9}, pos)
	assert.Equal(t, domain.Vec2{X: 100, Y: 100}, scene.Shape().Position())

	assert.True(t, b.Commit())
	assert.False(t, b.Staging())
	assert.Equal(t, domain.Vec2{X: 9, Y: 9}, scene.Shape().Position())
	assert.Equal(t, 12.0, scene.Shape().Size())

	// Staging without writes commits nothing
	b.Stage()
	assert.False(t, b.Commit())
}

func TestBridge_CommitKeepsShapeIdentity(t *testing.T) {
	scene := newScene(t)
	shape := scene.Shape()
	b := runtime.NewBridge(scene)
	b.Stage()
	b.SetColor(domain.RGB(0, 0, 1))
	b.Commit()
	assert.Same(t, shape, scene.Shape())
	assert.Equal(t, domain.RGBA(0, 0, 1, 1), shape.Color())
}

func TestBridge_Retire(t *testing.T) {
	scene := newScene(t)
	b := runtime.NewBridge(scene)
	b.Stage()
	b.SetPosition(3, 3)
	b.Retire()

	assert.True(t, b.Retired())
	assert.False(t, b.Reachable())
	assert.False(t, b.SetPosition(4, 4))
	assert.False(t, b.SetBackgroundColor(domain.RGB(1, 1, 1)))
	_, ok := b.BackgroundColor()
	assert.False(t, ok)
	assert.False(t, b.Commit())
	assert.Equal(t, domain.Vec2{X: 100, Y: 100}, scene.Shape().Position())
}

func TestBridge_NoHostState(t *testing.T) {
	b := runtime.NewBridge(nil)
	b.Stage()
	assert.False(t, b.Staging())
	assert.False(t, b.Reachable())
	assert.False(t, b.SetSize(3))
	_, ok := b.Size()
	assert.False(t, ok)
	_, ok = b.Color()
	assert.False(t, ok)
}
