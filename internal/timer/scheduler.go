// Package timer runs repeating actions on simulated time. It stands in for
// coroutine loops: every periodic behaviour is a Task owned by the component
// that started it, and cancelling a Task stops it before its next firing.
package timer

import (
	"time"

	coresys "github.com/stackyard/stackyard/internal/core/system"
)

// Task is a repeating action. The zero value is not usable; obtain one from
// Scheduler.Every.
type Task struct {
	name      string
	period    time.Duration
	acc       time.Duration
	fn        func()
	cancelled bool
	fired     uint64
}

// Cancel stops the task. Safe to call more than once, on a nil task, and from
// inside the task's own callback.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

// Active reports whether the task will fire again.
func (t *Task) Active() bool {
	return t != nil && !t.cancelled
}

// Fired returns how many times the callback has run.
func (t *Task) Fired() uint64 {
	if t == nil {
		return 0
	}
	return t.fired
}

func (t *Task) Name() string { return t.name }

// Scheduler owns the set of live tasks. Single goroutine only.
type Scheduler struct {
	tasks   []*Task
	pending []*Task
	now     time.Duration
	running bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make([]*Task, 0, 16)}
}

// Every schedules fn to run each period of simulated time, first after one
// full period. A task created while the scheduler is advancing starts
// accumulating on the next Advance.
func (s *Scheduler) Every(name string, period time.Duration, fn func()) *Task {
	if period <= 0 {
		panic("timer: non-positive period for " + name)
	}
	t := &Task{name: name, period: period, fn: fn}
	if s.running {
		s.pending = append(s.pending, t)
	} else {
		s.tasks = append(s.tasks, t)
	}
	return t
}

// Advance moves simulated time forward by dt. Each task fires at most once
// per call; leftover time beyond one period carries over modulo the period.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt
	s.running = true
	for _, t := range s.tasks {
		if t.cancelled {
			continue
		}
		t.acc += dt
		if t.acc < t.period {
			continue
		}
		t.acc %= t.period
		t.fired++
		t.fn()
	}
	s.running = false

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = append(live, s.pending...)
	s.pending = s.pending[:0]
}

// Now returns total simulated time advanced so far.
func (s *Scheduler) Now() time.Duration { return s.now }

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	for _, t := range s.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// System adapts the scheduler to the tick runner. Phase 2 (Update).
type System struct {
	sched *Scheduler
}

func NewSystem(s *Scheduler) *System { return &System{sched: s} }

func (s *System) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *System) Update(dt time.Duration) { s.sched.Advance(dt) }
