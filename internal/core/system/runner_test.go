package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"tween", PhaseOutput, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"sensor", PhasePostUpdate, &log})
	r.Register(recorder{"vehicle", PhasePostUpdate, &log})
	r.Register(recorder{"timers", PhaseUpdate, &log})

	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"input", "timers", "sensor", "vehicle", "tween"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
	assert.Equal(t, 50*time.Millisecond, r.Elapsed())
}

func TestTickPhaseRunsSubset(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"a", PhaseInput, &log})
	r.Register(recorder{"b", PhaseUpdate, &log})
	r.TickPhase(PhaseUpdate, time.Millisecond)
	assert.Equal(t, []string{"b"}, log)
	assert.Equal(t, uint64(0), r.Ticks())
}
