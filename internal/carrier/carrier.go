// Package carrier tracks the entities an actor holds, one LIFO stack per
// category, laid out as piles behind the actor in a stable slot order, and
// drains them into recycling targets on a repeating timer.
package carrier

import (
	"time"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/config"
	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/timer"
	"github.com/stackyard/stackyard/internal/tween"
	"github.com/stackyard/stackyard/internal/vmath"
)

// State is the drain state of a carrier.
type State uint8

const (
	Idle State = iota
	Draining
)

func (s State) String() string {
	if s == Draining {
		return "draining"
	}
	return "idle"
}

// Collectible is implemented by anything that can receive entities.
type Collectible interface {
	Collect(id ecs.EntityID, cat data.Category)
}

// Recycler is implemented by targets that accept held entities back.
type Recycler interface {
	Category() data.Category
	Recycle(id ecs.EntityID, cat data.Category)
}

// Scene is the transform surface the carrier needs.
type Scene interface {
	SetParent(id, parent ecs.EntityID, keepWorld bool)
}

// Animator plays fire-and-forget tweens.
type Animator interface {
	Play(tw tween.Tween)
}

// Scheduler starts repeating tasks.
type Scheduler interface {
	Every(name string, period time.Duration, fn func()) *timer.Task
}

// Options tune placement and drain timing.
type Options struct {
	Anchor         vmath.Vec3 // carrier-local base of the first pile
	BackwardOffset float64
	UpwardOffset   float64
	DrainPeriod    time.Duration
	MoveDuration   time.Duration
	RotateDuration time.Duration
	JumpPower      float64
}

func OptionsFromConfig(cfg config.CarrierConfig, anchor vmath.Vec3) Options {
	return Options{
		Anchor:         anchor,
		BackwardOffset: cfg.BackwardOffset,
		UpwardOffset:   cfg.UpwardOffset,
		DrainPeriod:    cfg.DrainPeriod.Duration,
		MoveDuration:   cfg.CollectDuration.Duration,
		RotateDuration: cfg.RotateDuration.Duration,
		JumpPower:      cfg.JumpPower,
	}
}

// slot is a category's permanent position in the pile order plus its stack.
type slot struct {
	index int
	stack []ecs.EntityID
}

// Placement is the computed carrier-local target of one held entity.
type Placement struct {
	Entity   ecs.EntityID
	Category data.Category
	Rank     int // compacted pile index among non-empty categories
	Height   int // 1-based from the bottom of the pile
	Local    vmath.Vec3
}

// Carrier is a stack tracker bound to one actor entity.
type Carrier struct {
	id    ecs.EntityID
	name  string
	scene Scene
	anim  Animator
	sched Scheduler
	bus   *event.Bus
	opts  Options
	log   *zap.Logger

	slots    map[data.Category]*slot
	order    []data.Category // categories by slot index
	targets  map[ecs.EntityID]vmath.Vec3
	nextSlot int

	state     State
	drainCat  data.Category
	target    Recycler
	drainTask *timer.Task
}

// New builds a carrier for actor id. bus may be nil.
func New(id ecs.EntityID, name string, scene Scene, anim Animator, sched Scheduler, bus *event.Bus, opts Options, log *zap.Logger) *Carrier {
	return &Carrier{
		id:      id,
		name:    name,
		scene:   scene,
		anim:    anim,
		sched:   sched,
		bus:     bus,
		opts:    opts,
		log:     log.With(zap.String("carrier", name)),
		slots:   make(map[data.Category]*slot),
		targets: make(map[ecs.EntityID]vmath.Vec3),
	}
}

func (c *Carrier) ID() ecs.EntityID { return c.id }
func (c *Carrier) Name() string     { return c.name }

// State returns Idle or Draining.
func (c *Carrier) State() State { return c.state }

// ActiveCategory is the category being drained, CategoryNone when idle.
func (c *Carrier) ActiveCategory() data.Category { return c.drainCat }

// Collect pushes id onto cat's stack, reparents it under the carrier and
// animates every entity whose target moved. The first pickup of a category
// reserves its slot for the carrier's lifetime.
func (c *Carrier) Collect(id ecs.EntityID, cat data.Category) {
	if id.IsZero() || !cat.Valid() {
		c.log.Warn("collect ignored", zap.Stringer("entity", id), zap.Stringer("category", cat))
		return
	}
	if _, held := c.targets[id]; held {
		c.log.Warn("entity already held", zap.Stringer("entity", id), zap.Stringer("category", cat))
		return
	}
	s, ok := c.slots[cat]
	if !ok {
		s = &slot{index: c.nextSlot}
		c.nextSlot++
		c.slots[cat] = s
		c.order = append(c.order, cat)
		c.log.Debug("slot assigned", zap.Stringer("category", cat), zap.Int("slot", s.index))
	}
	s.stack = append(s.stack, id)
	c.scene.SetParent(id, c.id, true)
	c.relayout(id)

	if c.bus != nil {
		event.Emit(c.bus, event.EntityCollected{
			Entity:   id,
			Category: cat,
			Carrier:  c.id,
			Height:   len(s.stack),
		})
	}
}

// OnTriggerEnter starts draining into other when it is a Recycler. A drain
// already in progress is cancelled first.
func (c *Carrier) OnTriggerEnter(other any) {
	r, ok := other.(Recycler)
	if !ok {
		return
	}
	c.stopDrain()
	c.target = r
	c.drainCat = r.Category()
	c.state = Draining
	c.drainTask = c.sched.Every("drain:"+c.name, c.opts.DrainPeriod, c.drainTick)
	c.log.Debug("drain started", zap.Stringer("category", c.drainCat))
}

// OnTriggerExit stops draining immediately when other is the current target.
func (c *Carrier) OnTriggerExit(other any) {
	r, ok := other.(Recycler)
	if !ok || c.target == nil || r != c.target {
		return
	}
	c.stopDrain()
}

func (c *Carrier) stopDrain() {
	if c.state == Draining {
		c.log.Debug("drain stopped", zap.Stringer("category", c.drainCat))
	}
	c.drainTask.Cancel()
	c.drainTask = nil
	c.target = nil
	c.drainCat = data.CategoryNone
	c.state = Idle
}

// drainTick hands the top entity of the active category to the target, or
// ends the drain when that stack is empty.
func (c *Carrier) drainTick() {
	if c.state != Draining || c.target == nil {
		c.stopDrain()
		return
	}
	if !c.deposit(c.drainCat, c.target) {
		c.stopDrain()
	}
}

// Release pops the top entity of cat and hands it to r. It is the manual
// form of one drain tick and reports whether anything was released.
func (c *Carrier) Release(cat data.Category, r Recycler) bool {
	return c.deposit(cat, r)
}

// deposit pops the top of cat, hands it to target, slides the remaining
// piles into place and emits EntityDeposited.
func (c *Carrier) deposit(cat data.Category, target Recycler) bool {
	id, ok := c.pop(cat)
	if !ok {
		return false
	}
	target.Recycle(id, cat)
	c.relayout(ecs.NoEntity)

	if c.bus != nil {
		event.Emit(c.bus, event.EntityDeposited{
			Entity:    id,
			Category:  cat,
			Carrier:   c.id,
			Target:    targetID(target),
			Remaining: c.HeldCount(cat),
		})
	}
	return true
}

func (c *Carrier) pop(cat data.Category) (ecs.EntityID, bool) {
	s, ok := c.slots[cat]
	if !ok || len(s.stack) == 0 {
		return ecs.NoEntity, false
	}
	n := len(s.stack) - 1
	id := s.stack[n]
	s.stack[n] = ecs.NoEntity
	s.stack = s.stack[:n]
	delete(c.targets, id)
	return id, true
}

// Placements computes targets for every held entity: piles in slot order
// with empty categories skipped, each pile stacked upward from its base.
func (c *Carrier) Placements() []Placement {
	var out []Placement
	rank := 0
	for _, cat := range c.order {
		s := c.slots[cat]
		if len(s.stack) == 0 {
			continue
		}
		base := c.opts.Anchor.Add(vmath.Back.Scale(float64(rank) * c.opts.BackwardOffset))
		for i, id := range s.stack {
			h := i + 1
			out = append(out, Placement{
				Entity:   id,
				Category: cat,
				Rank:     rank,
				Height:   h,
				Local:    base.Add(vmath.Up.Scale(float64(h) * c.opts.UpwardOffset)),
			})
		}
		rank++
	}
	return out
}

// relayout animates entities toward their computed targets. fresh is the
// just-collected entity, which arcs in; everything else whose target changed
// slides in a straight line.
func (c *Carrier) relayout(fresh ecs.EntityID) {
	for _, p := range c.Placements() {
		prev, had := c.targets[p.Entity]
		if p.Entity != fresh && had && prev == p.Local {
			continue
		}
		c.targets[p.Entity] = p.Local
		kind, ease := tween.Move, tween.Ease(tween.Linear)
		if p.Entity == fresh {
			kind, ease = tween.Jump, tween.OutQuad
		}
		c.anim.Play(tween.Tween{
			Entity:    p.Entity,
			Kind:      kind,
			To:        p.Local,
			Duration:  c.opts.MoveDuration,
			Ease:      ease,
			JumpPower: c.opts.JumpPower,
		})
		c.anim.Play(tween.Tween{
			Entity:   p.Entity,
			Kind:     tween.Rotate,
			To:       vmath.Zero,
			Delay:    c.opts.MoveDuration,
			Duration: c.opts.RotateDuration,
		})
	}
}

// Slot returns the permanent slot index of cat.
func (c *Carrier) Slot(cat data.Category) (int, bool) {
	s, ok := c.slots[cat]
	if !ok {
		return 0, false
	}
	return s.index, true
}

// Held returns cat's stack bottom to top.
func (c *Carrier) Held(cat data.Category) []ecs.EntityID {
	s, ok := c.slots[cat]
	if !ok {
		return nil
	}
	return append([]ecs.EntityID(nil), s.stack...)
}

func (c *Carrier) HeldCount(cat data.Category) int {
	if s, ok := c.slots[cat]; ok {
		return len(s.stack)
	}
	return 0
}

func (c *Carrier) HeldTotal() int {
	n := 0
	for _, s := range c.slots {
		n += len(s.stack)
	}
	return n
}

// Ranks returns the non-empty categories in visual order.
func (c *Carrier) Ranks() []data.Category {
	var out []data.Category
	for _, cat := range c.order {
		if len(c.slots[cat].stack) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// targetID extracts the scene entity of a recycler when it exposes one.
func targetID(r Recycler) ecs.EntityID {
	if e, ok := r.(interface{ ID() ecs.EntityID }); ok {
		return e.ID()
	}
	return ecs.NoEntity
}
