package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: apply movement input
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: repeating timers (spawn, hand-off, drain)
	PhasePostUpdate              // 3: overlap sensing, trailing cargo
	PhaseOutput                  // 4: advance tweens
	PhasePersist                 // 5: ledger flush
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
