package ecs

// World is the top-level entity container: it owns ID allocation and lets
// higher layers attach typed stores.
type World struct {
	alloc *Allocator
}

func NewWorld() *World {
	return &World{alloc: NewAllocator()}
}

func (w *World) CreateEntity() EntityID {
	return w.alloc.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.alloc.Alive(id)
}

func (w *World) EntityCount() int {
	return w.alloc.Count()
}
