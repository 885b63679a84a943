package recycler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/pool"
	"github.com/stackyard/stackyard/internal/tween"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

const flight = 500 * time.Millisecond

func setup(t *testing.T) (*Recycler, *pool.Manager, *world.State, *tween.System, *event.Bus) {
	t.Helper()
	log := zap.NewNop()
	scene := world.NewState(log)
	scene.RegisterTemplate(data.Template{Name: "crate"})
	m := pool.NewManager(scene, log)
	cat := data.NewCatalog([]data.Template{{Name: "crate"}}, []data.PoolDef{
		{Category: data.CategoryTypeA, Template: "crate", Capacity: 2},
	})
	require.NoError(t, m.Configure(cat))

	node := scene.CreateNode("bin_a", ecs.NoEntity, vmath.Vec3{X: -6, Z: -4}, 0)
	tw := tween.NewSystem(scene)
	bus := event.NewBus()
	r := New(node, "bin_a", data.CategoryTypeA, scene, tw, m, bus, flight, log)
	return r, m, scene, tw, bus
}

func TestRecycleFliesThenReleases(t *testing.T) {
	r, m, scene, tw, bus := setup(t)
	id, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok)
	carrierNode := scene.CreateNode("player", ecs.NoEntity, vmath.Vec3{X: 1}, 0)
	scene.SetParent(id, carrierNode, false)

	r.Recycle(id, data.CategoryTypeA)
	assert.Equal(t, ecs.NoEntity, scene.Parent(id))
	assert.Equal(t, 1, r.InFlight())
	assert.Equal(t, 1, m.Active(data.CategoryTypeA))

	tw.Update(flight / 2)
	assert.Equal(t, 1, m.Active(data.CategoryTypeA), "still flying")

	tw.Update(flight / 2)
	assert.Zero(t, r.InFlight())
	assert.Zero(t, m.Active(data.CategoryTypeA))
	assert.False(t, scene.Active(id))
	assert.Equal(t, uint64(1), r.Reclaimed())

	var got []event.EntityReclaimed
	event.Subscribe(bus, func(e event.EntityReclaimed) { got = append(got, e) })
	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].Entity)
}

func TestRecycleTwiceWhileFlyingIsIgnored(t *testing.T) {
	r, m, _, tw, _ := setup(t)
	id, _ := m.Acquire(data.CategoryTypeA)
	r.Recycle(id, data.CategoryTypeA)
	r.Recycle(id, data.CategoryTypeA)
	tw.Update(flight)
	assert.Equal(t, uint64(1), r.Reclaimed())
	assert.Equal(t, 2, m.Queued(data.CategoryTypeA))
}

func TestLandingCancelsPendingRotation(t *testing.T) {
	r, m, scene, tw, _ := setup(t)
	id, _ := m.Acquire(data.CategoryTypeA)
	_, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok, "pool drained so the release comes straight back")
	scene.SetLocalEuler(id, vmath.Vec3{Y: 45})
	tw.Play(tween.Tween{Entity: id, Kind: tween.Rotate, To: vmath.Zero, Delay: 2 * flight, Duration: flight})

	r.Recycle(id, data.CategoryTypeA)
	tw.Update(flight)
	require.Equal(t, uint64(1), r.Reclaimed())
	assert.False(t, tw.Active(id))

	again, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok)
	require.Equal(t, id, again)
	scene.SetLocalEuler(id, vmath.Vec3{Y: 90})
	tw.Update(2 * flight)
	assert.Equal(t, vmath.Vec3{Y: 90}, scene.LocalEuler(id))
}
