// Package tween animates entity transforms over simulated time. Callers fire
// and forget: Play never blocks, and a new tween on the same channel of an
// entity replaces the running one.
package tween

import (
	"time"

	"github.com/stackyard/stackyard/internal/core/ecs"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/vmath"
)

// Kind selects what a tween drives.
type Kind uint8

const (
	Move   Kind = iota // local position, straight line
	Jump               // local position along a vertical arc
	Rotate             // local euler angles
)

type channel uint8

const (
	chanPosition channel = iota
	chanRotation
)

func (k Kind) channel() channel {
	if k == Rotate {
		return chanRotation
	}
	return chanPosition
}

// Transforms is the slice of the scene a tween writes to.
type Transforms interface {
	Exists(id ecs.EntityID) bool
	LocalPosition(id ecs.EntityID) vmath.Vec3
	SetLocalPosition(id ecs.EntityID, p vmath.Vec3)
	LocalEuler(id ecs.EntityID) vmath.Vec3
	SetLocalEuler(id ecs.EntityID, e vmath.Vec3)
}

// Tween describes one animation. From is captured when the delay elapses.
type Tween struct {
	Entity     ecs.EntityID
	Kind       Kind
	To         vmath.Vec3
	Duration   time.Duration
	Delay      time.Duration
	Ease       Ease
	JumpPower  float64
	OnComplete func()

	from    vmath.Vec3
	elapsed time.Duration
	started bool
}

type key struct {
	id ecs.EntityID
	ch channel
}

// System advances all running tweens. Phase 4 (Output).
type System struct {
	scene   Transforms
	running map[key]*Tween
	order   []key
}

func NewSystem(scene Transforms) *System {
	return &System{
		scene:   scene,
		running: make(map[key]*Tween, 64),
	}
}

func (s *System) Phase() coresys.Phase { return coresys.PhaseOutput }

// Play starts tw, replacing any tween on the same entity channel. The
// replaced tween's OnComplete does not run.
func (s *System) Play(tw Tween) {
	if tw.Ease == nil {
		tw.Ease = Linear
	}
	k := key{tw.Entity, tw.Kind.channel()}
	if _, exists := s.running[k]; !exists {
		s.order = append(s.order, k)
	}
	t := tw
	s.running[k] = &t
}

// Kill stops every tween on id without completing it.
func (s *System) Kill(id ecs.EntityID) {
	delete(s.running, key{id, chanPosition})
	delete(s.running, key{id, chanRotation})
}

// Active reports whether id has any running tween.
func (s *System) Active(id ecs.EntityID) bool {
	_, p := s.running[key{id, chanPosition}]
	_, r := s.running[key{id, chanRotation}]
	return p || r
}

// Len returns the number of running tweens.
func (s *System) Len() int { return len(s.running) }

func (s *System) Update(dt time.Duration) {
	var done []func()
	seen := make(map[key]struct{}, len(s.order))
	live := s.order[:0]
	for _, k := range s.order {
		tw, ok := s.running[k]
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if !s.scene.Exists(k.id) {
			delete(s.running, k)
			continue
		}
		if s.step(tw, dt) {
			delete(s.running, k)
			if tw.OnComplete != nil {
				done = append(done, tw.OnComplete)
			}
			continue
		}
		live = append(live, k)
	}
	s.order = live
	for _, fn := range done {
		fn()
	}
}

// step advances tw and reports completion.
func (s *System) step(tw *Tween, dt time.Duration) bool {
	if !tw.started {
		if tw.Delay > dt {
			tw.Delay -= dt
			return false
		}
		dt -= tw.Delay
		tw.Delay = 0
		tw.started = true
		if tw.Kind == Rotate {
			tw.from = s.scene.LocalEuler(tw.Entity)
		} else {
			tw.from = s.scene.LocalPosition(tw.Entity)
		}
	}
	tw.elapsed += dt
	t := 1.0
	if tw.Duration > 0 {
		t = vmath.Clamp01(float64(tw.elapsed) / float64(tw.Duration))
	}
	p := tw.Ease(t)

	switch tw.Kind {
	case Move:
		s.scene.SetLocalPosition(tw.Entity, vmath.Lerp(tw.from, tw.To, p))
	case Jump:
		pos := vmath.Lerp(tw.from, tw.To, p)
		pos.Y += tw.JumpPower * arc(t)
		s.scene.SetLocalPosition(tw.Entity, pos)
	case Rotate:
		s.scene.SetLocalEuler(tw.Entity, vmath.Lerp(tw.from, tw.To, p))
	}
	return t >= 1
}
