package tween

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

func setup(t *testing.T) (*world.State, *System, ecs.EntityID) {
	t.Helper()
	scene := world.NewState(zap.NewNop())
	id := scene.CreateNode("box", ecs.NoEntity, vmath.Zero, 0)
	return scene, NewSystem(scene), id
}

func TestMoveReachesTargetAndCompletes(t *testing.T) {
	scene, sys, id := setup(t)
	completed := 0
	sys.Play(Tween{
		Entity:     id,
		Kind:       Move,
		To:         vmath.Vec3{X: 4},
		Duration:   100 * time.Millisecond,
		OnComplete: func() { completed++ },
	})

	sys.Update(50 * time.Millisecond)
	assert.InDelta(t, 2.0, scene.LocalPosition(id).X, 1e-9)
	assert.Zero(t, completed)

	sys.Update(50 * time.Millisecond)
	assert.InDelta(t, 4.0, scene.LocalPosition(id).X, 1e-9)
	assert.Equal(t, 1, completed)
	assert.False(t, sys.Active(id))
}

func TestJumpArcsAboveLine(t *testing.T) {
	scene, sys, id := setup(t)
	sys.Play(Tween{Entity: id, Kind: Jump, To: vmath.Vec3{Z: 2}, Duration: 100 * time.Millisecond, JumpPower: 1})

	sys.Update(50 * time.Millisecond)
	mid := scene.LocalPosition(id)
	assert.InDelta(t, 1.0, mid.Z, 1e-9)
	assert.InDelta(t, 1.0, mid.Y, 1e-9, "peak of the arc")

	sys.Update(50 * time.Millisecond)
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: 2}, scene.LocalPosition(id), 1e-9))
}

func TestReplaceSkipsOldCompletion(t *testing.T) {
	scene, sys, id := setup(t)
	oldDone, newDone := false, false
	sys.Play(Tween{Entity: id, Kind: Move, To: vmath.Vec3{X: 10}, Duration: time.Second, OnComplete: func() { oldDone = true }})
	sys.Update(100 * time.Millisecond)
	sys.Play(Tween{Entity: id, Kind: Move, To: vmath.Vec3{X: -1}, Duration: 100 * time.Millisecond, OnComplete: func() { newDone = true }})
	sys.Update(100 * time.Millisecond)

	assert.False(t, oldDone)
	assert.True(t, newDone)
	assert.InDelta(t, -1.0, scene.LocalPosition(id).X, 1e-9)
	assert.Equal(t, 0, sys.Len())
}

func TestRotationRunsAlongsideMoveWithDelay(t *testing.T) {
	scene, sys, id := setup(t)
	scene.SetLocalEuler(id, vmath.Vec3{Y: 90})
	sys.Play(Tween{Entity: id, Kind: Move, To: vmath.Vec3{X: 1}, Duration: 100 * time.Millisecond})
	sys.Play(Tween{Entity: id, Kind: Rotate, To: vmath.Zero, Delay: 100 * time.Millisecond, Duration: 100 * time.Millisecond})
	require.Equal(t, 2, sys.Len())

	sys.Update(100 * time.Millisecond)
	assert.InDelta(t, 90.0, scene.LocalEuler(id).Y, 1e-9, "rotation still delayed")
	sys.Update(50 * time.Millisecond)
	assert.InDelta(t, 45.0, scene.LocalEuler(id).Y, 1e-9)
	sys.Update(50 * time.Millisecond)
	assert.InDelta(t, 0.0, scene.LocalEuler(id).Y, 1e-9)
}

func TestKillThenReplayDoesNotDoubleStep(t *testing.T) {
	scene, sys, id := setup(t)
	sys.Play(Tween{Entity: id, Kind: Move, To: vmath.Vec3{X: 10}, Duration: time.Second})
	sys.Kill(id)
	sys.Play(Tween{Entity: id, Kind: Move, To: vmath.Vec3{X: 10}, Duration: time.Second})
	sys.Update(100 * time.Millisecond)
	assert.InDelta(t, 1.0, scene.LocalPosition(id).X, 1e-9)
}

func TestOutBackEndpoints(t *testing.T) {
	assert.InDelta(t, 0.0, OutBack(0), 1e-12)
	assert.InDelta(t, 1.0, OutBack(1), 1e-12)
	assert.Greater(t, OutBack(0.8), 1.0, "overshoots before settling")
}
