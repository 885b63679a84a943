// Package sensor detects actors entering and leaving trigger zones and
// dispatches enter/exit to whichever side can handle it.
package sensor

import (
	"time"

	"github.com/solarlune/resolv"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
)

// TriggerHandler receives overlap transitions. other is the owner of the
// opposite side: a zone owner for actors, an actor owner for zones.
type TriggerHandler interface {
	OnTriggerEnter(other any)
	OnTriggerExit(other any)
}

// Positions resolves world positions of actor entities.
type Positions interface {
	WorldPosition(id ecs.EntityID) vmath.Vec3
}

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min, Max vmath.Vec3
}

// BoxFrom converts a center/size box.
func BoxFrom(b data.Box) AABB {
	c, half := b.Center.Vec(), b.Size.Vec().Scale(0.5)
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

// Zone is a static trigger volume. Overlap is tested on the XZ plane.
type Zone struct {
	Name  string
	Box   AABB
	Owner any
	obj   *resolv.Object
}

// Actor is a moving circle of Radius on the XZ plane.
type Actor struct {
	Entity  ecs.EntityID
	Radius  float64
	Owner   any
	enabled bool
	obj     *resolv.Object
}

func (a *Actor) Enabled() bool { return a.enabled }

type pair struct {
	actor *Actor
	zone  *Zone
}

// Sensor owns zones, actors and the set of current overlaps. Zones and
// actors live in a resolv space so each actor only tests the zones sharing
// its cells. Phase 3 (PostUpdate).
type Sensor struct {
	pos      Positions
	zones    []*Zone
	actors   []*Actor
	space    *resolv.Space
	overlaps map[pair]struct{}
	near     map[int]struct{}
	order    []int
	log      *zap.Logger
}

func New(pos Positions, log *zap.Logger) *Sensor {
	return &Sensor{
		pos:      pos,
		space:    newSpace(),
		overlaps: make(map[pair]struct{}),
		near:     make(map[int]struct{}),
		log:      log,
	}
}

func (s *Sensor) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *Sensor) AddZone(name string, box AABB, owner any) *Zone {
	z := &Zone{Name: name, Box: box, Owner: owner, obj: newZoneObject(len(s.zones), box)}
	s.space.Add(z.obj)
	s.zones = append(s.zones, z)
	return z
}

// AddActor starts tracking id as an enabled circle.
func (s *Sensor) AddActor(id ecs.EntityID, radius float64, owner any) *Actor {
	a := &Actor{Entity: id, Radius: radius, Owner: owner, enabled: true, obj: newActorObject(radius)}
	s.space.Add(a.obj)
	place(a.obj, s.pos.WorldPosition(id), radius)
	s.actors = append(s.actors, a)
	return a
}

// SetEnabled toggles tracking. Disabling exits every zone the actor is in.
func (s *Sensor) SetEnabled(a *Actor, on bool) {
	if a.enabled == on {
		return
	}
	a.enabled = on
	if !on {
		for _, z := range s.zones {
			if _, in := s.overlaps[pair{a, z}]; in {
				s.exit(a, z)
			}
		}
	}
}

// Overlapping reports whether a is currently inside z.
func (s *Sensor) Overlapping(a *Actor, z *Zone) bool {
	_, in := s.overlaps[pair{a, z}]
	return in
}

// Candidates returns the zones sharing a cell with a circle of radius r at
// p, in the order they were added.
func (s *Sensor) Candidates(p vmath.Vec3, r float64) []*Zone {
	x0, y0 := toSpace(p.X-r, p.Z-r)
	x1, y1 := toSpace(p.X+r, p.Z+r)
	cx0, cy0 := s.space.WorldToSpace(x0, y0)
	cx1, cy1 := s.space.WorldToSpace(x1, y1)
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			if cell := s.space.Cell(cx, cy); cell != nil {
				zoneIndices(cell.Objects, s.near)
			}
		}
	}
	s.order = sortedKeys(s.near, s.order)
	out := make([]*Zone, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, s.zones[idx])
	}
	return out
}

// Update recomputes overlaps. Exits for an actor dispatch before its enters.
// Zones sharing cells with the previous position are tested too, so a
// teleport still exits what the actor left.
func (s *Sensor) Update(_ time.Duration) {
	var enters []*Zone
	for _, a := range s.actors {
		if !a.enabled {
			continue
		}
		if c := a.obj.Check(0, 0, zoneTag); c != nil {
			zoneIndices(c.Objects, s.near)
		}
		place(a.obj, s.pos.WorldPosition(a.Entity), a.Radius)
		if c := a.obj.Check(0, 0, zoneTag); c != nil {
			zoneIndices(c.Objects, s.near)
		}
		s.order = sortedKeys(s.near, s.order)
		enters = enters[:0]
		for _, idx := range s.order {
			z := s.zones[idx]
			hit := touches(a.obj, a.Radius, z.obj)
			_, was := s.overlaps[pair{a, z}]
			switch {
			case hit && !was:
				enters = append(enters, z)
			case !hit && was:
				s.exit(a, z)
			}
		}
		for _, z := range enters {
			s.enter(a, z)
		}
	}
}

func (s *Sensor) enter(a *Actor, z *Zone) {
	s.overlaps[pair{a, z}] = struct{}{}
	s.log.Debug("trigger enter", zap.Stringer("actor", a.Entity), zap.String("zone", z.Name))
	if h, ok := a.Owner.(TriggerHandler); ok {
		h.OnTriggerEnter(z.Owner)
	}
	if h, ok := z.Owner.(TriggerHandler); ok {
		h.OnTriggerEnter(a.Owner)
	}
}

func (s *Sensor) exit(a *Actor, z *Zone) {
	delete(s.overlaps, pair{a, z})
	s.log.Debug("trigger exit", zap.Stringer("actor", a.Entity), zap.String("zone", z.Name))
	if h, ok := a.Owner.(TriggerHandler); ok {
		h.OnTriggerExit(z.Owner)
	}
	if h, ok := z.Owner.(TriggerHandler); ok {
		h.OnTriggerExit(a.Owner)
	}
}
