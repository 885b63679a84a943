// Package session assembles one playable simulation: scene, pool, actors,
// generators, recyclers and the tick runner that drives them.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/actor"
	"github.com/stackyard/stackyard/internal/carrier"
	"github.com/stackyard/stackyard/internal/config"
	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/motion"
	"github.com/stackyard/stackyard/internal/pool"
	"github.com/stackyard/stackyard/internal/recycler"
	"github.com/stackyard/stackyard/internal/score"
	"github.com/stackyard/stackyard/internal/scripting"
	"github.com/stackyard/stackyard/internal/sensor"
	"github.com/stackyard/stackyard/internal/spawner"
	"github.com/stackyard/stackyard/internal/system"
	"github.com/stackyard/stackyard/internal/timer"
	"github.com/stackyard/stackyard/internal/tween"
	"github.com/stackyard/stackyard/internal/vehicle"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

// Deps are the optional collaborators of a session.
type Deps struct {
	Rules  score.Rewarder      // nil pays the default reward
	Ledger system.LedgerWriter // nil disables the ledger
}

// Session owns every component of one run. Game loop goroutine only.
type Session struct {
	ID  uuid.UUID
	cfg *config.Config
	log *zap.Logger

	World    *world.State
	Bus      *event.Bus
	Runner   *coresys.Runner
	Timers   *timer.Scheduler
	Tweens   *tween.System
	Pool     *pool.Manager
	Sensor   *sensor.Sensor
	Carrier  *carrier.Carrier
	Vehicle  *vehicle.Vehicle // nil when the scene has none
	Input    *motion.Controller
	Mover    *motion.Mover
	Switcher *actor.Switcher
	Score    *score.Keeper
	Ledger   *system.LedgerSystem // nil without a ledger writer

	Generators []*spawner.Generator
	Recyclers  []*recycler.Recycler

	dispatch *system.EventDispatchSystem
	spawned  uint64
}

type defaultRules struct{}

func (defaultRules) DepositReward(string, int) int { return scripting.DefaultDepositReward }

// New builds a session. Pool configuration errors abort construction.
func New(cfg *config.Config, catalog *data.Catalog, layout *data.Scene, deps Deps, log *zap.Logger) (*Session, error) {
	s := &Session{
		ID:     uuid.New(),
		cfg:    cfg,
		log:    log,
		World:  world.NewState(log),
		Bus:    event.NewBus(),
		Runner: coresys.NewRunner(),
		Timers: timer.NewScheduler(),
	}
	s.log = log.With(zap.String("session", s.ID.String()))

	for _, t := range catalog.Templates() {
		s.World.RegisterTemplate(*t)
	}
	s.Tweens = tween.NewSystem(s.World)
	s.Pool = pool.NewManager(s.World, log)
	if err := s.Pool.Configure(catalog); err != nil {
		return nil, fmt.Errorf("configure pool: %w", err)
	}
	s.Sensor = sensor.New(s.World, log)

	actors := s.buildActors(layout)
	s.buildGenerators(layout)
	s.buildRecyclers(layout)

	s.Switcher = actor.NewSwitcher(s.World, s.Sensor, actors, log)
	s.Input = motion.NewController(motion.OptionsFromConfig(cfg.Motion, layout.CameraYaw))
	s.Mover = motion.NewMover(s.World, s.Input, s.Switcher.Current, motion.OptionsFromConfig(cfg.Motion, layout.CameraYaw))

	rules := deps.Rules
	if rules == nil {
		rules = defaultRules{}
	}
	s.Score = score.NewKeeper(rules, s.Bus, log)
	event.Subscribe(s.Bus, func(event.EntitySpawned) { s.spawned++ })

	s.dispatch = system.NewEventDispatchSystem(s.Bus)
	s.Runner.Register(s.Mover)
	s.Runner.Register(s.dispatch)
	s.Runner.Register(timer.NewSystem(s.Timers))
	s.Runner.Register(s.Sensor)
	if s.Vehicle != nil {
		s.Runner.Register(s.Vehicle)
	}
	s.Runner.Register(s.Tweens)
	if deps.Ledger != nil {
		s.Ledger = system.NewLedgerSystem(s.Bus, deps.Ledger, s.ID, s.Runner.Ticks, cfg.Database.FlushEvery, log)
		s.Runner.Register(s.Ledger)
	}

	for _, g := range s.Generators {
		g.Start()
	}
	s.log.Info("session ready",
		zap.Int("generators", len(s.Generators)),
		zap.Int("recyclers", len(s.Recyclers)),
		zap.Int("actors", len(actors)),
	)
	return s, nil
}

func (s *Session) buildActors(layout *data.Scene) []actor.Actor {
	def := layout.Carrier
	node := s.World.CreateNode(def.Name, ecs.NoEntity, def.Position.Vec(), def.Yaw)
	s.Carrier = carrier.New(node, def.Name, s.World, s.Tweens, s.Timers, s.Bus,
		carrier.OptionsFromConfig(s.cfg.Carrier, def.Anchor.Vec()), s.log)
	actors := []actor.Actor{{
		Name:   def.Name,
		Entity: node,
		Sensor: s.Sensor.AddActor(node, def.Radius, s.Carrier),
	}}

	if v := layout.Vehicle; v != nil {
		vnode := s.World.CreateNode(v.Name, ecs.NoEntity, v.Position.Vec(), v.Yaw)
		s.Vehicle = vehicle.New(vnode, v.Name, s.World, s.Bus, vehicle.OptionsFromConfig(s.cfg.Vehicle), s.log)
		actors = append(actors, actor.Actor{
			Name:   v.Name,
			Entity: vnode,
			Sensor: s.Sensor.AddActor(vnode, v.Radius, s.Vehicle),
		})
	}
	return actors
}

func (s *Session) buildGenerators(layout *data.Scene) {
	opts := spawner.Options{
		Interval:        s.cfg.Generator.Interval.Duration,
		HeightOffset:    s.cfg.Generator.HeightOffset,
		HandoffInterval: s.cfg.Generator.HandoffInterval.Duration,
	}
	for _, def := range layout.Generators {
		node := s.World.CreateNode(def.Name, ecs.NoEntity, def.Zone.Center.Vec(), 0)
		g := spawner.New(node, def, s.Pool, s.World, s.Timers, s.Bus, opts, s.log)
		s.Sensor.AddZone(def.Name, sensor.BoxFrom(def.Zone), g)
		s.Generators = append(s.Generators, g)
	}
}

func (s *Session) buildRecyclers(layout *data.Scene) {
	for _, def := range layout.Recyclers {
		node := s.World.CreateNode(def.Name, ecs.NoEntity, def.Position.Vec(), 0)
		r := recycler.New(node, def.Name, def.Category, s.World, s.Tweens, s.Pool, s.Bus,
			s.cfg.Recycler.FlightDuration.Duration, s.log)
		s.Sensor.AddZone(def.Name, sensor.BoxFrom(def.Zone), r)
		s.Recyclers = append(s.Recyclers, r)
	}
}

// Tick advances the simulation by one configured tick.
func (s *Session) Tick() {
	s.Runner.Tick(s.cfg.Game.TickRate.Duration)
}

// Run ticks n times or until ctx is done.
func (s *Session) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Tick()
	}
	return nil
}

// Teleport places the controlled actor at p, for scripted runs and tests.
func (s *Session) Teleport(p vmath.Vec3) {
	s.World.SetWorldPosition(s.Switcher.Current(), p)
}

// Close stops generators and flushes the ledger tail.
func (s *Session) Close() {
	for _, g := range s.Generators {
		g.Stop()
	}
	if s.Ledger != nil {
		// deliver events emitted on the final tick before the last flush
		s.dispatch.Update(0)
		s.dispatch.Update(0)
		s.Ledger.Flush()
	}
	s.log.Info("session closed", zap.Uint64("ticks", s.Runner.Ticks()), zap.Int64("score", s.Score.Total()))
}

// CategoryStats is a per category snapshot.
type CategoryStats struct {
	Category data.Category
	Capacity int
	Queued   int
	Active   int
	Held     int
}

// Stats is a snapshot for reporting.
type Stats struct {
	Ticks      uint64
	Elapsed    time.Duration
	Spawned    uint64
	Deposits   uint64
	Reclaimed  uint64
	Score      int64
	Categories []CategoryStats
}

func (s *Session) Stats() Stats {
	st := Stats{
		Ticks:    s.Runner.Ticks(),
		Elapsed:  s.Runner.Elapsed(),
		Spawned:  s.spawned,
		Deposits: s.Score.Deposits(),
		Score:    s.Score.Total(),
	}
	for _, r := range s.Recyclers {
		st.Reclaimed += r.Reclaimed()
	}
	for _, c := range data.Categories() {
		if s.Pool.Capacity(c) == 0 {
			continue
		}
		st.Categories = append(st.Categories, CategoryStats{
			Category: c,
			Capacity: s.Pool.Capacity(c),
			Queued:   s.Pool.Queued(c),
			Active:   s.Pool.Active(c),
			Held:     s.Carrier.HeldCount(c),
		})
	}
	return st
}
