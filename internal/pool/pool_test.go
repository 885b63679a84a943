package pool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/world"
)

func newCatalog(pools ...data.PoolDef) *data.Catalog {
	return data.NewCatalog([]data.Template{{Name: "crate"}, {Name: "barrel"}}, pools)
}

func setupPool(t *testing.T, pools ...data.PoolDef) (*Manager, *world.State, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	scene := world.NewState(log)
	scene.RegisterTemplate(data.Template{Name: "crate"})
	scene.RegisterTemplate(data.Template{Name: "barrel"})
	m := NewManager(scene, log)
	require.NoError(t, m.Configure(newCatalog(pools...)))
	return m, scene, logs
}

func TestCapacityThreeScenario(t *testing.T) {
	m, scene, _ := setupPool(t, data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 3})

	seen := map[ecs.EntityID]bool{}
	var handles []ecs.EntityID
	for i := 0; i < 3; i++ {
		id, ok := m.Acquire(data.CategoryTypeA)
		require.True(t, ok)
		assert.False(t, seen[id], "handles must be distinct")
		seen[id] = true
		handles = append(handles, id)
		assert.True(t, scene.Active(id))
		assert.Equal(t, ecs.NoEntity, scene.Parent(id))
	}

	_, ok := m.Acquire(data.CategoryTypeA)
	assert.False(t, ok, "fourth acquire finds the pool empty")

	require.NoError(t, m.Release(handles[1], data.CategoryTypeA))
	assert.False(t, scene.Active(handles[1]))
	assert.Equal(t, m.Holder(data.CategoryTypeA), scene.Parent(handles[1]))

	again, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok)
	assert.Equal(t, handles[1], again)
}

func TestAcquireIsFIFO(t *testing.T) {
	m, _, _ := setupPool(t, data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 4})

	a, _ := m.Acquire(data.CategoryTypeA)
	b, _ := m.Acquire(data.CategoryTypeA)
	require.NoError(t, m.Release(b, data.CategoryTypeA))
	require.NoError(t, m.Release(a, data.CategoryTypeA))

	// Two never-dispensed entities are ahead of b and a.
	m.Acquire(data.CategoryTypeA)
	m.Acquire(data.CategoryTypeA)
	first, _ := m.Acquire(data.CategoryTypeA)
	second, _ := m.Acquire(data.CategoryTypeA)
	assert.Equal(t, b, first)
	assert.Equal(t, a, second)
}

func TestEmptyAcquireDoesNotMutate(t *testing.T) {
	m, _, _ := setupPool(t,
		data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 1},
		data.PoolDef{Category: data.CategoryTypeB, Template: "barrel", Capacity: 2},
	)
	_, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		_, ok = m.Acquire(data.CategoryTypeA)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, m.Queued(data.CategoryTypeA))
	assert.Equal(t, 1, m.Active(data.CategoryTypeA))
	assert.Equal(t, 2, m.Queued(data.CategoryTypeB))

	_, ok = m.Acquire(data.CategoryNone)
	assert.False(t, ok)
}

func TestConservationUnderRandomTraffic(t *testing.T) {
	m, _, _ := setupPool(t,
		data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 5},
		data.PoolDef{Category: data.CategoryTypeB, Template: "barrel", Capacity: 7},
	)
	rng := rand.New(rand.NewSource(42))
	out := map[data.Category][]ecs.EntityID{}

	for step := 0; step < 2000; step++ {
		cat := data.Categories()[rng.Intn(2)]
		if rng.Intn(2) == 0 {
			if id, ok := m.Acquire(cat); ok {
				out[cat] = append(out[cat], id)
			}
		} else if n := len(out[cat]); n > 0 {
			i := rng.Intn(n)
			require.NoError(t, m.Release(out[cat][i], cat))
			out[cat] = append(out[cat][:i], out[cat][i+1:]...)
		}
		for _, c := range data.Categories() {
			require.Equal(t, m.Capacity(c), len(out[c])+m.Queued(c), "step %d category %s", step, c)
			require.Equal(t, len(out[c]), m.Active(c))
		}
	}
}

func TestReleaseInvalidHandleIsLoggedNoop(t *testing.T) {
	m, _, logs := setupPool(t, data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 2})

	err := m.Release(ecs.NoEntity, data.CategoryTypeA)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	err = m.Release(ecs.NewEntityID(999, 0), data.CategoryTypeA)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	assert.Equal(t, 2, m.Queued(data.CategoryTypeA))
	assert.Equal(t, 2, logs.FilterMessage("release: invalid handle").Len())
	assert.Equal(t, zapcore.WarnLevel, logs.FilterMessage("release: invalid handle").All()[0].Level)
}

func TestDoubleReleaseRejected(t *testing.T) {
	m, _, _ := setupPool(t, data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 2})
	id, _ := m.Acquire(data.CategoryTypeA)
	require.NoError(t, m.Release(id, data.CategoryTypeA))
	assert.ErrorIs(t, m.Release(id, data.CategoryTypeA), ErrNotDispensed)
	assert.Equal(t, 2, m.Queued(data.CategoryTypeA))
}

func TestReleaseCategoryMismatchUsesRecordedCategory(t *testing.T) {
	m, _, logs := setupPool(t,
		data.PoolDef{Category: data.CategoryTypeA, Template: "crate", Capacity: 1},
		data.PoolDef{Category: data.CategoryTypeB, Template: "barrel", Capacity: 1},
	)
	id, ok := m.Acquire(data.CategoryTypeA)
	require.True(t, ok)

	err := m.Release(id, data.CategoryTypeB)
	assert.ErrorIs(t, err, ErrCategoryMismatch)
	assert.Equal(t, 1, m.Queued(data.CategoryTypeA))
	assert.Equal(t, 1, m.Queued(data.CategoryTypeB))
	assert.True(t, m.Pooled(id))
	assert.Equal(t, 1, logs.FilterMessage("release: category mismatch").Len())

	cat, ok := m.CategoryOf(id)
	require.True(t, ok)
	assert.Equal(t, data.CategoryTypeA, cat)
}

func TestConfigureFailsFast(t *testing.T) {
	tests := []struct {
		name  string
		pools []data.PoolDef
	}{
		{"missing template", []data.PoolDef{{Category: data.CategoryTypeA, Template: "ghost", Capacity: 1}}},
		{"empty template", []data.PoolDef{{Category: data.CategoryTypeA, Capacity: 1}}},
		{"zero capacity", []data.PoolDef{{Category: data.CategoryTypeA, Template: "crate"}}},
		{"too large", []data.PoolDef{{Category: data.CategoryTypeA, Template: "crate", Capacity: data.MaxCapacity + 1}}},
		{"none category", []data.PoolDef{{Category: data.CategoryNone, Template: "crate", Capacity: 1}}},
		{"duplicate", []data.PoolDef{
			{Category: data.CategoryTypeA, Template: "crate", Capacity: 1},
			{Category: data.CategoryTypeA, Template: "crate", Capacity: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := world.NewState(zap.NewNop())
			scene.RegisterTemplate(data.Template{Name: "crate"})
			m := NewManager(scene, zap.NewNop())
			err := m.Configure(newCatalog(tt.pools...))
			assert.ErrorIs(t, err, ErrConfig)
			assert.Equal(t, 0, scene.EntityCount(), "nothing allocated on failure")
		})
	}
}

func TestConfigureSurfacesSceneTemplateError(t *testing.T) {
	// The catalog knows "barrel" but the scene never registered it.
	scene := world.NewState(zap.NewNop())
	scene.RegisterTemplate(data.Template{Name: "crate"})
	m := NewManager(scene, zap.NewNop())
	err := m.Configure(newCatalog(data.PoolDef{Category: data.CategoryTypeB, Template: "barrel", Capacity: 1}))
	assert.ErrorIs(t, err, ErrConfig)
}
