// Package vehicle implements a driven actor that tows collected cargo in a
// line along the path it has travelled.
package vehicle

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/config"
	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
)

// seedSamples is how many spacing steps of straight path are laid out
// behind the vehicle at start, so early cargo lines up instead of bunching.
const seedSamples = 50

// Scene is the transform surface the vehicle drives.
type Scene interface {
	SetParent(id, parent ecs.EntityID, keepWorld bool)
	WorldPosition(id ecs.EntityID) vmath.Vec3
	SetWorldPosition(id ecs.EntityID, p vmath.Vec3)
	WorldYaw(id ecs.EntityID) float64
	SetWorldYaw(id ecs.EntityID, yaw float64)
}

// Options tune the trailing line.
type Options struct {
	FollowDistance    float64
	FollowLerpSpeed   float64
	FollowerRotSpeed  float64
	MinRecordDistance float64
}

func OptionsFromConfig(cfg config.VehicleConfig) Options {
	return Options{
		FollowDistance:    cfg.FollowDistance,
		FollowLerpSpeed:   cfg.FollowLerpSpeed,
		FollowerRotSpeed:  cfg.FollowerRotSpeed,
		MinRecordDistance: cfg.MinRecordDistance,
	}
}

// Vehicle records its head positions and places cargo at fixed path
// distances behind it. Phase 3 (PostUpdate).
type Vehicle struct {
	id    ecs.EntityID
	name  string
	scene Scene
	bus   *event.Bus
	opts  Options
	log   *zap.Logger

	path  []vmath.Vec3 // oldest first, head last
	cargo []ecs.EntityID
}

// New seeds the path behind the vehicle's current pose. bus may be nil.
func New(id ecs.EntityID, name string, scene Scene, bus *event.Bus, opts Options, log *zap.Logger) *Vehicle {
	v := &Vehicle{
		id:    id,
		name:  name,
		scene: scene,
		bus:   bus,
		opts:  opts,
		log:   log.With(zap.String("vehicle", name)),
		path:  make([]vmath.Vec3, 0, seedSamples+1),
	}
	head := scene.WorldPosition(id)
	back := vmath.RotateY(vmath.Back, scene.WorldYaw(id))
	for i := seedSamples; i >= 0; i-- {
		v.path = append(v.path, head.Add(back.Scale(opts.FollowDistance*float64(i))))
	}
	return v
}

func (v *Vehicle) ID() ecs.EntityID { return v.id }
func (v *Vehicle) Name() string     { return v.name }

func (v *Vehicle) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Cargo returns towed entities, nearest first.
func (v *Vehicle) Cargo() []ecs.EntityID {
	return append([]ecs.EntityID(nil), v.cargo...)
}

// PathLen returns the number of recorded samples.
func (v *Vehicle) PathLen() int { return len(v.path) }

// Collect turns a collected entity into cargo.
func (v *Vehicle) Collect(id ecs.EntityID, cat data.Category) {
	v.AttachCargo(id)
	if v.bus != nil {
		event.Emit(v.bus, event.EntityCollected{
			Entity:   id,
			Category: cat,
			Carrier:  v.id,
			Height:   len(v.cargo),
		})
	}
}

// AttachCargo detaches id into world space, appends it to the line and snaps
// it to its follow point facing the same way as the link ahead of it.
func (v *Vehicle) AttachCargo(id ecs.EntityID) {
	if id.IsZero() {
		return
	}
	v.scene.SetParent(id, ecs.NoEntity, true)
	v.cargo = append(v.cargo, id)
	v.scene.SetWorldPosition(id, v.PointAtDistance(v.opts.FollowDistance*float64(len(v.cargo))))
	ahead := v.id
	if n := len(v.cargo); n > 1 {
		ahead = v.cargo[n-2]
	}
	v.scene.SetWorldYaw(id, v.scene.WorldYaw(ahead))
	v.log.Debug("cargo attached", zap.Stringer("entity", id), zap.Int("cargo", len(v.cargo)))
}

func (v *Vehicle) Update(dt time.Duration) {
	v.record()
	v.follow(dt.Seconds())
	v.trim()
}

func (v *Vehicle) record() {
	head := v.scene.WorldPosition(v.id)
	last := v.path[len(v.path)-1]
	if head.Sub(last).LenSq() >= v.opts.MinRecordDistance*v.opts.MinRecordDistance {
		v.path = append(v.path, head)
	}
}

func (v *Vehicle) follow(sec float64) {
	for i, id := range v.cargo {
		d := v.opts.FollowDistance * float64(i+1)
		target := v.PointAtDistance(d)
		pos := vmath.Lerp(v.scene.WorldPosition(id), target, vmath.Clamp01(v.opts.FollowLerpSpeed*sec))
		v.scene.SetWorldPosition(id, pos)

		look := v.PointAtDistance(d - 0.2).Sub(pos).Flat()
		if look.LenSq() > 1e-4 {
			yaw := vmath.LerpAngle(v.scene.WorldYaw(id), vmath.YawOf(look), v.opts.FollowerRotSpeed*sec)
			v.scene.SetWorldYaw(id, yaw)
		}
	}
}

// trim drops the oldest samples no follower can reach.
func (v *Vehicle) trim() {
	need := float64(len(v.cargo)+2) * v.opts.FollowDistance / math.Max(v.opts.MinRecordDistance, 1e-4)
	limit := int(math.Ceil(need)) + seedSamples
	if over := len(v.path) - limit; over > 0 {
		v.path = append(v.path[:0], v.path[over:]...)
	}
}

// PointAtDistance walks the path back from the head by d. Past the oldest
// sample it returns that sample.
func (v *Vehicle) PointAtDistance(d float64) vmath.Vec3 {
	if len(v.path) == 0 {
		return v.scene.WorldPosition(v.id)
	}
	if d <= 0 {
		return v.path[len(v.path)-1]
	}
	remaining := d
	for s := len(v.path) - 1; s > 0; s-- {
		a, b := v.path[s], v.path[s-1]
		seg := vmath.Dist(a, b)
		if seg >= remaining {
			return vmath.Lerp(a, b, remaining/seg)
		}
		remaining -= seg
	}
	return v.path[0]
}
