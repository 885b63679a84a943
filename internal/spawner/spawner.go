// Package spawner implements generators: they pull entities from the pool
// onto a grid of generation points and hand them to a collecting actor
// standing in their zone.
package spawner

import (
	"time"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/carrier"
	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/timer"
	"github.com/stackyard/stackyard/internal/vmath"
)

// Acquirer dispenses pooled entities.
type Acquirer interface {
	Acquire(cat data.Category) (ecs.EntityID, bool)
}

// Scene places spawned entities in world space.
type Scene interface {
	SetWorldPosition(id ecs.EntityID, p vmath.Vec3)
	SetWorldYaw(id ecs.EntityID, yaw float64)
}

type Scheduler interface {
	Every(name string, period time.Duration, fn func()) *timer.Task
}

// Options are the generator timings.
type Options struct {
	Interval        time.Duration
	HeightOffset    float64
	HandoffInterval time.Duration
}

// Generator spawns one category on a fixed set of points, stacking upward
// once every point is occupied.
type Generator struct {
	id     ecs.EntityID
	def    data.GeneratorDef
	pool   Acquirer
	scene  Scene
	sched  Scheduler
	bus    *event.Bus
	opts   Options
	startY float64
	log    *zap.Logger

	pile      []ecs.EntityID
	index     int
	collector carrier.Collectible
	spawn     *timer.Task
	handoff   *timer.Task
}

// New builds a generator for def. id is the generator's scene node; bus may
// be nil. def must carry at least one point.
func New(id ecs.EntityID, def data.GeneratorDef, pool Acquirer, scene Scene, sched Scheduler, bus *event.Bus, opts Options, log *zap.Logger) *Generator {
	return &Generator{
		id:     id,
		def:    def,
		pool:   pool,
		scene:  scene,
		sched:  sched,
		bus:    bus,
		opts:   opts,
		startY: def.Points[0].Position[1],
		log:    log.With(zap.String("generator", def.Name)),
	}
}

func (g *Generator) ID() ecs.EntityID        { return g.id }
func (g *Generator) Name() string            { return g.def.Name }
func (g *Generator) Category() data.Category { return g.def.Category }

// Start begins the spawn loop.
func (g *Generator) Start() {
	if g.spawn.Active() {
		return
	}
	g.spawn = g.sched.Every("spawn:"+g.def.Name, g.opts.Interval, g.spawnTick)
}

// Stop cancels spawning and any hand-off in progress.
func (g *Generator) Stop() {
	g.spawn.Cancel()
	g.handoff.Cancel()
	g.collector = nil
}

// Pile returns spawned entities waiting for pickup, bottom to top.
func (g *Generator) Pile() []ecs.EntityID {
	return append([]ecs.EntityID(nil), g.pile...)
}

// Index is the grid cell the next spawn fills.
func (g *Generator) Index() int { return g.index }

// Slot returns the world placement of grid cell i.
func (g *Generator) Slot(i int) (vmath.Vec3, float64) {
	n := len(g.def.Points)
	pt := g.def.Points[i%n]
	pos := pt.Position.Vec()
	pos.Y = g.startY + float64(i/n)*g.opts.HeightOffset
	return pos, pt.Yaw
}

func (g *Generator) spawnTick() {
	id, ok := g.pool.Acquire(g.def.Category)
	if !ok {
		g.log.Debug("pool exhausted, skipping spawn")
		return
	}
	pos, yaw := g.Slot(g.index)
	g.scene.SetWorldPosition(id, pos)
	g.scene.SetWorldYaw(id, yaw)
	g.pile = append(g.pile, id)
	g.index++

	if g.bus != nil {
		event.Emit(g.bus, event.EntitySpawned{Entity: id, Category: g.def.Category, Spawner: g.id})
	}
}

// OnTriggerEnter starts handing the pile to other when it can collect.
func (g *Generator) OnTriggerEnter(other any) {
	c, ok := other.(carrier.Collectible)
	if !ok {
		return
	}
	g.handoff.Cancel()
	g.collector = c
	g.handoff = g.sched.Every("handoff:"+g.def.Name, g.opts.HandoffInterval, g.handoffTick)
}

// OnTriggerExit stops the hand-off when the current collector leaves.
func (g *Generator) OnTriggerExit(other any) {
	c, ok := other.(carrier.Collectible)
	if !ok || g.collector == nil || c != g.collector {
		return
	}
	g.handoff.Cancel()
	g.handoff = nil
	g.collector = nil
}

// handoffTick pops the newest spawn and frees its grid cell for refill.
func (g *Generator) handoffTick() {
	if g.collector == nil || len(g.pile) == 0 {
		return
	}
	n := len(g.pile) - 1
	id := g.pile[n]
	g.pile = g.pile[:n]
	g.index--
	g.collector.Collect(id, g.def.Category)
}
