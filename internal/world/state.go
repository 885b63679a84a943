package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
)

var (
	ErrUnknownTemplate = errors.New("world: unknown template")
	ErrNoEntity        = errors.New("world: no such entity")
)

// Transform is the scene-graph node of an entity. Local and Euler are
// relative to Parent; a zero Parent means the scene root.
type Transform struct {
	Name     string
	Template string
	Parent   ecs.EntityID
	Local    vmath.Vec3
	Euler    vmath.Vec3 // degrees; only Y participates in hierarchy math
	Active   bool
}

// State is the in-memory scene: entity transforms plus the template library.
// Accessed only from the game loop goroutine, so there are no locks.
type State struct {
	ecs        *ecs.World
	transforms *ecs.Store[Transform]
	templates  map[string]data.Template
	log        *zap.Logger
}

func NewState(log *zap.Logger) *State {
	return &State{
		ecs:        ecs.NewWorld(),
		transforms: ecs.NewStore[Transform](),
		templates:  make(map[string]data.Template),
		log:        log,
	}
}

// RegisterTemplate makes a template available to Instantiate.
func (s *State) RegisterTemplate(t data.Template) {
	s.templates[t.Name] = t
}

// Template returns the registered template by name.
func (s *State) Template(name string) (data.Template, bool) {
	t, ok := s.templates[name]
	return t, ok
}

// CreateNode adds an active entity with no template.
func (s *State) CreateNode(name string, parent ecs.EntityID, local vmath.Vec3, yaw float64) ecs.EntityID {
	id := s.ecs.CreateEntity()
	s.transforms.Set(id, &Transform{
		Name:   name,
		Parent: parent,
		Local:  local,
		Euler:  vmath.Vec3{Y: yaw},
		Active: true,
	})
	return id
}

// Instantiate creates an inactive copy of a template under parent.
func (s *State) Instantiate(template string, parent ecs.EntityID) (ecs.EntityID, error) {
	if _, ok := s.templates[template]; !ok {
		return ecs.NoEntity, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}
	id := s.ecs.CreateEntity()
	s.transforms.Set(id, &Transform{
		Name:     template,
		Template: template,
		Parent:   parent,
	})
	return id, nil
}

func (s *State) Exists(id ecs.EntityID) bool {
	return s.transforms.Has(id)
}

// Transform returns the node for direct reads; callers must not reparent
// through it.
func (s *State) Transform(id ecs.EntityID) (*Transform, bool) {
	return s.transforms.Get(id)
}

func (s *State) SetActive(id ecs.EntityID, active bool) {
	if t, ok := s.transforms.Get(id); ok {
		t.Active = active
	}
}

func (s *State) Active(id ecs.EntityID) bool {
	t, ok := s.transforms.Get(id)
	return ok && t.Active
}

func (s *State) Parent(id ecs.EntityID) ecs.EntityID {
	if t, ok := s.transforms.Get(id); ok {
		return t.Parent
	}
	return ecs.NoEntity
}

// SetParent moves id under parent. With keepWorld the entity stays where it
// is in the world; otherwise its local values are reinterpreted under the
// new parent.
func (s *State) SetParent(id, parent ecs.EntityID, keepWorld bool) {
	t, ok := s.transforms.Get(id)
	if !ok || id == parent || s.isAncestor(id, parent) {
		s.log.Warn("reparent rejected", zap.Stringer("entity", id), zap.Stringer("parent", parent))
		return
	}
	if !keepWorld {
		t.Parent = parent
		return
	}
	pos := s.WorldPosition(id)
	yaw := s.WorldYaw(id)
	t.Parent = parent
	s.SetWorldPosition(id, pos)
	t.Euler.Y = yaw - s.WorldYaw(parent)
}

// isAncestor reports whether a is parent or an ancestor of parent.
func (s *State) isAncestor(a, node ecs.EntityID) bool {
	for node != ecs.NoEntity {
		if node == a {
			return true
		}
		node = s.Parent(node)
	}
	return false
}

func (s *State) LocalPosition(id ecs.EntityID) vmath.Vec3 {
	if t, ok := s.transforms.Get(id); ok {
		return t.Local
	}
	return vmath.Zero
}

func (s *State) SetLocalPosition(id ecs.EntityID, p vmath.Vec3) {
	if t, ok := s.transforms.Get(id); ok {
		t.Local = p
	}
}

func (s *State) LocalEuler(id ecs.EntityID) vmath.Vec3 {
	if t, ok := s.transforms.Get(id); ok {
		return t.Euler
	}
	return vmath.Zero
}

func (s *State) SetLocalEuler(id ecs.EntityID, e vmath.Vec3) {
	if t, ok := s.transforms.Get(id); ok {
		t.Euler = e
	}
}

// WorldYaw sums Y rotations up the parent chain. The root has yaw 0.
func (s *State) WorldYaw(id ecs.EntityID) float64 {
	yaw := 0.0
	for id != ecs.NoEntity {
		t, ok := s.transforms.Get(id)
		if !ok {
			break
		}
		yaw += t.Euler.Y
		id = t.Parent
	}
	return yaw
}

// WorldPosition resolves the entity's position in scene space.
func (s *State) WorldPosition(id ecs.EntityID) vmath.Vec3 {
	t, ok := s.transforms.Get(id)
	if !ok {
		return vmath.Zero
	}
	if t.Parent == ecs.NoEntity {
		return t.Local
	}
	return s.WorldPosition(t.Parent).Add(vmath.RotateY(t.Local, s.WorldYaw(t.Parent)))
}

// SetWorldPosition places the entity at a scene-space position regardless of
// its parent.
func (s *State) SetWorldPosition(id ecs.EntityID, p vmath.Vec3) {
	t, ok := s.transforms.Get(id)
	if !ok {
		return
	}
	if t.Parent == ecs.NoEntity {
		t.Local = p
		return
	}
	rel := p.Sub(s.WorldPosition(t.Parent))
	t.Local = vmath.RotateY(rel, -s.WorldYaw(t.Parent))
}

// SetWorldYaw sets the entity's facing in scene space.
func (s *State) SetWorldYaw(id ecs.EntityID, yaw float64) {
	t, ok := s.transforms.Get(id)
	if !ok {
		return
	}
	t.Euler.Y = yaw - s.WorldYaw(t.Parent)
}

// Children returns direct children in entity order.
func (s *State) Children(parent ecs.EntityID) []ecs.EntityID {
	var out []ecs.EntityID
	s.transforms.Each(func(id ecs.EntityID, t *Transform) {
		if t.Parent == parent {
			out = append(out, id)
		}
	})
	return out
}

// EachActive visits active entities in entity order.
func (s *State) EachActive(fn func(ecs.EntityID, *Transform)) {
	s.transforms.Each(func(id ecs.EntityID, t *Transform) {
		if t.Active {
			fn(id, t)
		}
	})
}

// EntityCount returns the number of entities ever created.
func (s *State) EntityCount() int {
	return s.ecs.EntityCount()
}
