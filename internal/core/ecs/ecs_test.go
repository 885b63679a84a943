package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocatorNeverReturnsZero(t *testing.T) {
	w := NewWorld()
	first := w.CreateEntity()
	second := w.CreateEntity()

	assert.False(t, first.IsZero())
	assert.NotEqual(t, first, second)
	assert.True(t, w.Alive(first))
	assert.False(t, w.Alive(NoEntity))
	assert.False(t, w.Alive(NewEntityID(99, 0)))
	assert.Equal(t, 2, w.EntityCount())
}

func TestStoreEachIsOrdered(t *testing.T) {
	s := NewStore[int]()
	for _, id := range []EntityID{5, 1, 3} {
		v := int(id)
		s.Set(id, &v)
	}
	var seen []EntityID
	s.Each(func(id EntityID, v *int) {
		seen = append(seen, id)
	})
	assert.Equal(t, []EntityID{1, 3, 5}, seen)
	assert.True(t, s.Has(3))
	assert.Equal(t, 3, s.Len())
}

func TestEntityIDString(t *testing.T) {
	assert.Equal(t, "e7", NewEntityID(7, 0).String())
	assert.Equal(t, "e7.2", NewEntityID(7, 2).String())
}
