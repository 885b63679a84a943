package event

import (
	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
)

// EntitySpawned is emitted when a generator places a pooled entity.
type EntitySpawned struct {
	Entity   ecs.EntityID
	Category data.Category
	Spawner  ecs.EntityID
}

// EntityCollected is emitted when a carrier pushes an entity onto a stack.
type EntityCollected struct {
	Entity   ecs.EntityID
	Category data.Category
	Carrier  ecs.EntityID
	Height   int
}

// EntityDeposited is emitted when a drain tick hands an entity to a target.
type EntityDeposited struct {
	Entity    ecs.EntityID
	Category  data.Category
	Carrier   ecs.EntityID
	Target    ecs.EntityID
	Remaining int
}

// EntityReclaimed is emitted once an entity is back in its pool queue.
type EntityReclaimed struct {
	Entity   ecs.EntityID
	Category data.Category
}

// DepositScored is emitted by the score keeper after pricing a deposit.
type DepositScored struct {
	Entity   ecs.EntityID
	Category data.Category
	Carrier  ecs.EntityID
	Points   int
}
