package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/scripting"
)

type flatRules int

func (f flatRules) DepositReward(string, int) int { return int(f) }

func TestKeeperScoresAndReemits(t *testing.T) {
	bus := event.NewBus()
	k := NewKeeper(flatRules(3), bus, zap.NewNop())
	var scored []event.DepositScored
	event.Subscribe(bus, func(e event.DepositScored) { scored = append(scored, e) })

	event.Emit(bus, event.EntityDeposited{Entity: ecs.NewEntityID(4, 0), Category: data.CategoryTypeA})
	event.Emit(bus, event.EntityDeposited{Entity: ecs.NewEntityID(5, 0), Category: data.CategoryTypeB})
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, int64(6), k.Total())
	assert.Equal(t, int64(3), k.CategoryTotal(data.CategoryTypeB))
	assert.Equal(t, uint64(2), k.Deposits())
	assert.Empty(t, scored, "scored events land next tick")

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, scored, 2)
	assert.Equal(t, 3, scored[0].Points)
}

func TestKeeperUsesLuaRules(t *testing.T) {
	eng, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer eng.Close()
	require.NoError(t, eng.LoadString(`function deposit_reward(c, r) return r * 10 end`))

	bus := event.NewBus()
	k := NewKeeper(eng, bus, zap.NewNop())
	event.Emit(bus, event.EntityDeposited{Category: data.CategoryTypeA, Remaining: 2})
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, int64(20), k.Total())
}
