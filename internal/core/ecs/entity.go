package ecs

import "strconv"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Index 0 is never handed out, so the zero ID means "no
// entity" (scene root, empty pool result).
type EntityID uint64

const NoEntity EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == NoEntity }

func (id EntityID) String() string {
	if id.Generation() == 0 {
		return "e" + strconv.FormatUint(uint64(id.Index()), 10)
	}
	return "e" + strconv.FormatUint(uint64(id.Index()), 10) + "." + strconv.FormatUint(uint64(id.Generation()), 10)
}

// Allocator hands out entity IDs. Scene objects are created up front and
// never destroyed while a session runs, so there is no free list.
type Allocator struct {
	generations []uint32
	nextIndex   uint32
}

func NewAllocator() *Allocator {
	return &Allocator{
		generations: make([]uint32, 1, 256),
		nextIndex:   1,
	}
}

func (a *Allocator) Create() EntityID {
	idx := a.nextIndex
	a.nextIndex++
	a.generations = append(a.generations, 0)
	return NewEntityID(idx, a.generations[idx])
}

func (a *Allocator) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= a.nextIndex {
		return false
	}
	return a.generations[idx] == id.Generation()
}

// Count returns the number of IDs handed out so far.
func (a *Allocator) Count() int {
	return int(a.nextIndex - 1)
}
