package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ n int }
type pong struct{ s string }

func TestBusDeliversNextTickInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(p ping) { got = append(got, "ping") })
	Subscribe(b, func(p pong) { got = append(got, "pong:"+p.s) })

	Emit(b, ping{1})
	Emit(b, pong{"a"})
	Emit(b, ping{2})

	assert.Equal(t, 0, b.DispatchAll(), "nothing readable before swap")
	assert.Equal(t, 3, b.Pending())

	b.SwapBuffers()
	assert.Equal(t, 3, b.DispatchAll())
	assert.Equal(t, []string{"ping", "pong:a", "ping"}, got)
	assert.Equal(t, 0, b.Pending())
}

func TestBusHandlerEmitsForNextTick(t *testing.T) {
	b := NewBus()
	count := 0
	Subscribe(b, func(p ping) {
		count++
		if p.n < 3 {
			Emit(b, ping{p.n + 1})
		}
	})
	Emit(b, ping{1})
	for i := 0; i < 5; i++ {
		b.SwapBuffers()
		b.DispatchAll()
	}
	assert.Equal(t, 3, count)
}
