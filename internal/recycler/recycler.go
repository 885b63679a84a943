// Package recycler implements the drop-off targets that take held entities
// from a carrier, fly them into place and return them to the pool.
package recycler

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/pool"
	"github.com/stackyard/stackyard/internal/tween"
	"github.com/stackyard/stackyard/internal/vmath"
)

// Scene is the transform surface a recycler needs.
type Scene interface {
	SetParent(id, parent ecs.EntityID, keepWorld bool)
	WorldPosition(id ecs.EntityID) vmath.Vec3
}

type Animator interface {
	Play(tw tween.Tween)
	Kill(id ecs.EntityID)
}

// Releaser returns entities to their pool.
type Releaser interface {
	Release(id ecs.EntityID, cat data.Category) error
}

// Recycler accepts one category of entity.
type Recycler struct {
	id       ecs.EntityID
	name     string
	category data.Category
	scene    Scene
	anim     Animator
	pool     Releaser
	bus      *event.Bus
	flight   time.Duration
	log      *zap.Logger

	inFlight  map[ecs.EntityID]struct{}
	reclaimed uint64
}

// New binds a recycler to the scene node id. bus may be nil.
func New(id ecs.EntityID, name string, cat data.Category, scene Scene, anim Animator, releaser Releaser, bus *event.Bus, flight time.Duration, log *zap.Logger) *Recycler {
	return &Recycler{
		id:       id,
		name:     name,
		category: cat,
		scene:    scene,
		anim:     anim,
		pool:     releaser,
		bus:      bus,
		flight:   flight,
		log:      log.With(zap.String("recycler", name)),
		inFlight: make(map[ecs.EntityID]struct{}),
	}
}

func (r *Recycler) ID() ecs.EntityID        { return r.id }
func (r *Recycler) Name() string            { return r.name }
func (r *Recycler) Category() data.Category { return r.category }

// InFlight returns how many entities are still flying in.
func (r *Recycler) InFlight() int { return len(r.inFlight) }

// Reclaimed returns how many entities this recycler has handed back.
func (r *Recycler) Reclaimed() uint64 { return r.reclaimed }

// Recycle detaches id to the scene root and flies it to the recycler. The
// pool gets it back when the flight lands.
func (r *Recycler) Recycle(id ecs.EntityID, cat data.Category) {
	if _, dup := r.inFlight[id]; dup {
		r.log.Warn("entity already in flight", zap.Stringer("entity", id))
		return
	}
	r.inFlight[id] = struct{}{}
	r.scene.SetParent(id, ecs.NoEntity, true)
	r.anim.Play(tween.Tween{
		Entity:     id,
		Kind:       tween.Move,
		To:         r.scene.WorldPosition(r.id),
		Duration:   r.flight,
		Ease:       tween.OutBack,
		OnComplete: func() { r.land(id, cat) },
	})
}

func (r *Recycler) land(id ecs.EntityID, cat data.Category) {
	delete(r.inFlight, id)
	// a pending rotation reset from the carrier must not touch the entity
	// once it is back in the pool
	r.anim.Kill(id)
	err := r.pool.Release(id, cat)
	switch {
	case err == nil:
	case errors.Is(err, pool.ErrCategoryMismatch):
		// the pool reclaimed it under its recorded category
	default:
		r.log.Warn("release failed", zap.Stringer("entity", id), zap.Error(err))
		return
	}
	r.reclaimed++
	if r.bus != nil {
		event.Emit(r.bus, event.EntityReclaimed{Entity: id, Category: cat})
	}
}
