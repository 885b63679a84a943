package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

func opts() Options {
	return Options{MoveSpeed: 5, RotationSpeed: 10, MinSwipeDistance: 10, UseCameraRelative: true}
}

func TestKeyboardDirectionIsNormalized(t *testing.T) {
	c := NewController(opts())
	assert.Equal(t, vmath.Zero, c.Direction())

	c.SetAxes(1, 1)
	d := c.Direction()
	assert.InDelta(t, 1, d.Len(), 1e-9)
	assert.InDelta(t, d.X, d.Z, 1e-9)
}

func TestCameraYawRotatesInput(t *testing.T) {
	o := opts()
	o.CameraYaw = 90
	c := NewController(o)
	c.SetAxes(0, 1)
	assert.True(t, vmath.ApproxEqual(vmath.Right, c.Direction(), 1e-9), "forward on a camera facing +X is +X")
}

func TestSwipeBeatsKeyboardPastThreshold(t *testing.T) {
	c := NewController(opts())
	c.SetAxes(1, 0)
	c.PointerDown(100, 100)
	c.PointerMove(100, 105)
	assert.True(t, vmath.ApproxEqual(vmath.Right, c.Direction(), 1e-9), "short drag leaves the keyboard in charge")

	c.PointerMove(100, 130)
	assert.True(t, vmath.ApproxEqual(vmath.Forward, c.Direction(), 1e-9))

	c.PointerUp()
	assert.True(t, vmath.ApproxEqual(vmath.Right, c.Direction(), 1e-9))
}

func TestMoverMovesAndTurnsActiveTarget(t *testing.T) {
	scene := world.NewState(zap.NewNop())
	id := scene.CreateNode("player", ecs.NoEntity, vmath.Zero, 0)
	c := NewController(opts())
	m := NewMover(scene, c, func() ecs.EntityID { return id }, opts())

	m.Update(100 * time.Millisecond)
	assert.False(t, m.Moving())
	assert.Equal(t, vmath.Zero, scene.WorldPosition(id))

	c.SetAxes(1, 0)
	for i := 0; i < 10; i++ {
		m.Update(100 * time.Millisecond)
	}
	assert.True(t, m.Moving())
	assert.InDelta(t, 5, scene.WorldPosition(id).X, 1e-9)
	assert.InDelta(t, 90, scene.WorldYaw(id), 1e-9)
}
