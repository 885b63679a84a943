package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

func setup(t *testing.T) (*Vehicle, *world.State) {
	t.Helper()
	scene := world.NewState(zap.NewNop())
	scene.RegisterTemplate(data.Template{Name: "crate"})
	id := scene.CreateNode("truck", ecs.NoEntity, vmath.Vec3{Z: -6}, 0)
	v := New(id, "truck", scene, nil, Options{
		FollowDistance:    1,
		FollowLerpSpeed:   10,
		FollowerRotSpeed:  20,
		MinRecordDistance: 0.01,
	}, zap.NewNop())
	return v, scene
}

func TestSeededPathTrailsBehind(t *testing.T) {
	v, _ := setup(t)
	assert.Equal(t, seedSamples+1, v.PathLen())
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: -6}, v.PointAtDistance(0), 1e-9))
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: -8.5}, v.PointAtDistance(2.5), 1e-9))
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: -56}, v.PointAtDistance(500), 1e-9), "clamped to oldest sample")
}

func TestAttachCargoSnapsToFollowPoint(t *testing.T) {
	v, scene := setup(t)
	scene.SetWorldYaw(v.ID(), 30)
	a, err := scene.Instantiate("crate", v.ID())
	require.NoError(t, err)
	b, err := scene.Instantiate("crate", ecs.NoEntity)
	require.NoError(t, err)

	v.Collect(a, data.CategoryTypeA)
	v.Collect(b, data.CategoryTypeA)

	assert.Equal(t, ecs.NoEntity, scene.Parent(a))
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: -7}, scene.WorldPosition(a), 1e-9))
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{Z: -8}, scene.WorldPosition(b), 1e-9))
	assert.InDelta(t, 30, scene.WorldYaw(a), 1e-9)
	assert.InDelta(t, 30, scene.WorldYaw(b), 1e-9)
	assert.Equal(t, []ecs.EntityID{a, b}, v.Cargo())
}

func TestCargoFollowsDrivenPath(t *testing.T) {
	v, scene := setup(t)
	crate, err := scene.Instantiate("crate", ecs.NoEntity)
	require.NoError(t, err)
	v.AttachCargo(crate)

	// drive east for two seconds
	for i := 0; i < 100; i++ {
		p := scene.WorldPosition(v.ID())
		scene.SetWorldPosition(v.ID(), p.Add(vmath.Right.Scale(0.1)))
		v.Update(20 * time.Millisecond)
	}
	head := scene.WorldPosition(v.ID())
	assert.InDelta(t, 10, head.X, 1e-9)
	assert.Less(t, scene.WorldPosition(crate).X, 9.0, "lerp lags while moving")

	// parked: the follower settles onto its point
	for i := 0; i < 60; i++ {
		v.Update(20 * time.Millisecond)
	}

	got := scene.WorldPosition(crate)
	assert.True(t, vmath.ApproxEqual(vmath.Vec3{X: 9, Z: -6}, got, 1e-3), "cargo trails one unit behind, got %v", got)
	assert.InDelta(t, 90, scene.WorldYaw(crate), 1)
}

func TestPathIsTrimmed(t *testing.T) {
	v, scene := setup(t)
	for i := 0; i < 1000; i++ {
		p := scene.WorldPosition(v.ID())
		scene.SetWorldPosition(v.ID(), p.Add(vmath.Forward.Scale(0.02)))
		v.Update(20 * time.Millisecond)
	}
	assert.LessOrEqual(t, v.PathLen(), 2*100+seedSamples)
}
