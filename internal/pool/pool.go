// Package pool owns fixed-capacity queues of reusable scene entities grouped
// by category. Entities are created once by Configure; afterwards they only
// move between the queue (inactive, parked under a holder node) and the
// world (active, owned by whoever acquired them).
package pool

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
)

var (
	ErrInvalidHandle    = errors.New("pool: invalid handle")
	ErrNotDispensed     = errors.New("pool: handle is already pooled")
	ErrCategoryMismatch = errors.New("pool: category does not match handle")
	ErrConfig           = errors.New("pool: configuration error")
)

// Host is the scene surface the pool needs.
type Host interface {
	CreateNode(name string, parent ecs.EntityID, local vmath.Vec3, yaw float64) ecs.EntityID
	Instantiate(template string, parent ecs.EntityID) (ecs.EntityID, error)
	SetActive(id ecs.EntityID, active bool)
	SetParent(id, parent ecs.EntityID, keepWorld bool)
}

// queue is one category's FIFO of inactive handles.
type queue struct {
	mu       sync.Mutex
	items    []ecs.EntityID
	head     int
	capacity int
	holder   ecs.EntityID
}

func (q *queue) len() int { return len(q.items) - q.head }

func (q *queue) push(id ecs.EntityID) {
	if q.head > 0 && len(q.items) == cap(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.items = append(q.items, id)
}

func (q *queue) pop() ecs.EntityID {
	id := q.items[q.head]
	q.items[q.head] = ecs.NoEntity
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return id
}

// entry records what the pool knows about a handle it allocated.
type entry struct {
	category data.Category
	pooled   bool
}

// Manager is the pooled entity manager. Construct one per session and
// inject it; there is no package-level instance.
type Manager struct {
	host    Host
	root    ecs.EntityID
	queues  map[data.Category]*queue
	entries map[ecs.EntityID]*entry
	log     *zap.Logger
}

func NewManager(host Host, log *zap.Logger) *Manager {
	return &Manager{
		host:    host,
		queues:  make(map[data.Category]*queue),
		entries: make(map[ecs.EntityID]*entry),
		log:     log,
	}
}

// Configure pre-allocates every category's entities, inactive and queued.
// Any missing template or bad capacity aborts with ErrConfig.
func (m *Manager) Configure(catalog *data.Catalog) error {
	if len(m.queues) > 0 {
		return fmt.Errorf("%w: already configured", ErrConfig)
	}
	seen := make(map[data.Category]bool)
	for _, def := range catalog.Pools() {
		if err := validateDef(catalog, def); err != nil {
			return err
		}
		if seen[def.Category] {
			return fmt.Errorf("%w: category %s listed twice", ErrConfig, def.Category)
		}
		seen[def.Category] = true
	}

	if m.root.IsZero() {
		m.root = m.host.CreateNode("pools", ecs.NoEntity, vmath.Zero, 0)
	}
	for _, def := range catalog.Pools() {
		holder := m.host.CreateNode(def.Category.String()+"Pool", m.root, vmath.Zero, 0)
		q := &queue{
			items:    make([]ecs.EntityID, 0, def.Capacity),
			capacity: def.Capacity,
			holder:   holder,
		}
		for i := 0; i < def.Capacity; i++ {
			id, err := m.host.Instantiate(def.Template, holder)
			if err != nil {
				return fmt.Errorf("%w: category %s: %v", ErrConfig, def.Category, err)
			}
			m.host.SetActive(id, false)
			m.entries[id] = &entry{category: def.Category, pooled: true}
			q.push(id)
		}
		m.queues[def.Category] = q
		m.log.Debug("pool configured",
			zap.Stringer("category", def.Category),
			zap.String("template", def.Template),
			zap.Int("capacity", def.Capacity),
		)
	}
	return nil
}

func validateDef(catalog *data.Catalog, def data.PoolDef) error {
	switch {
	case !def.Category.Valid():
		return fmt.Errorf("%w: category %s cannot be pooled", ErrConfig, def.Category)
	case def.Template == "":
		return fmt.Errorf("%w: category %s has no template", ErrConfig, def.Category)
	case catalog.Template(def.Template) == nil:
		return fmt.Errorf("%w: category %s references missing template %q", ErrConfig, def.Category, def.Template)
	case def.Capacity < 1 || def.Capacity > data.MaxCapacity:
		return fmt.Errorf("%w: category %s capacity %d out of range [1,%d]", ErrConfig, def.Category, def.Capacity, data.MaxCapacity)
	}
	return nil
}

// Acquire dequeues the oldest pooled entity of a category, activates it and
// detaches it to the scene root. ok is false when none is available; that is
// an expected outcome and nothing is mutated.
func (m *Manager) Acquire(cat data.Category) (ecs.EntityID, bool) {
	q, found := m.queues[cat]
	if !found {
		m.log.Debug("acquire: category not pooled", zap.Stringer("category", cat))
		return ecs.NoEntity, false
	}
	q.mu.Lock()
	if q.len() == 0 {
		q.mu.Unlock()
		m.log.Debug("acquire: pool empty", zap.Stringer("category", cat))
		return ecs.NoEntity, false
	}
	id := q.pop()
	q.mu.Unlock()

	m.entries[id].pooled = false
	m.host.SetActive(id, true)
	m.host.SetParent(id, ecs.NoEntity, true)
	return id, true
}

// Release deactivates id, parks it under its holder and enqueues it at the
// tail. The category recorded at allocation is authoritative: a mismatched
// cat is reported with ErrCategoryMismatch but the entity is still reclaimed
// into its own queue. Invalid or already-pooled handles are a no-op.
func (m *Manager) Release(id ecs.EntityID, cat data.Category) error {
	e, known := m.entries[id]
	if id.IsZero() || !known {
		m.log.Warn("release: invalid handle", zap.Stringer("entity", id), zap.Stringer("category", cat))
		return fmt.Errorf("%w: %s", ErrInvalidHandle, id)
	}
	if e.pooled {
		m.log.Warn("release: handle already pooled", zap.Stringer("entity", id))
		return fmt.Errorf("%w: %s", ErrNotDispensed, id)
	}

	q := m.queues[e.category]
	m.host.SetActive(id, false)
	m.host.SetParent(id, q.holder, false)
	q.mu.Lock()
	q.push(id)
	q.mu.Unlock()
	e.pooled = true

	if cat != e.category {
		m.log.Warn("release: category mismatch",
			zap.Stringer("entity", id),
			zap.Stringer("given", cat),
			zap.Stringer("recorded", e.category),
		)
		return fmt.Errorf("%w: %s is %s, released as %s", ErrCategoryMismatch, id, e.category, cat)
	}
	return nil
}

// CategoryOf returns the category an entity was allocated under.
func (m *Manager) CategoryOf(id ecs.EntityID) (data.Category, bool) {
	e, ok := m.entries[id]
	if !ok {
		return data.CategoryNone, false
	}
	return e.category, true
}

// Pooled reports whether id currently sits in its queue.
func (m *Manager) Pooled(id ecs.EntityID) bool {
	e, ok := m.entries[id]
	return ok && e.pooled
}

// Queued returns the number of inactive entities waiting in cat's queue.
func (m *Manager) Queued(cat data.Category) int {
	q, ok := m.queues[cat]
	if !ok {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.len()
}

// Capacity returns the configured size of cat's pool.
func (m *Manager) Capacity(cat data.Category) int {
	if q, ok := m.queues[cat]; ok {
		return q.capacity
	}
	return 0
}

// Active returns how many of cat's entities are currently dispensed.
func (m *Manager) Active(cat data.Category) int {
	return m.Capacity(cat) - m.Queued(cat)
}

// Holder returns the node inactive entities of cat are parked under.
func (m *Manager) Holder(cat data.Category) ecs.EntityID {
	if q, ok := m.queues[cat]; ok {
		return q.holder
	}
	return ecs.NoEntity
}
