package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/core/event"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/persist"
)

// LedgerWriter stores ledger batches.
type LedgerWriter interface {
	Append(ctx context.Context, entries []persist.LedgerEntry) error
}

// LedgerSystem buffers domain events and writes them every interval ticks.
// Phase 5 (Persist).
type LedgerSystem struct {
	repo      LedgerWriter
	session   uuid.UUID
	ticks     func() uint64
	buf       []persist.LedgerEntry
	written   uint64
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
}

// NewLedgerSystem subscribes to the domain events on bus. ticks reports the
// current tick number stamped on each entry.
func NewLedgerSystem(bus *event.Bus, repo LedgerWriter, session uuid.UUID, ticks func() uint64, intervalTicks int, log *zap.Logger) *LedgerSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &LedgerSystem{
		repo:     repo,
		session:  session,
		ticks:    ticks,
		buf:      make([]persist.LedgerEntry, 0, 64),
		log:      log,
		interval: intervalTicks,
	}
	event.Subscribe(bus, func(e event.EntitySpawned) {
		s.record(persist.KindSpawned, e.Category, e.Entity, e.Spawner, 0)
	})
	event.Subscribe(bus, func(e event.EntityCollected) {
		s.record(persist.KindCollected, e.Category, e.Entity, e.Carrier, 0)
	})
	event.Subscribe(bus, func(e event.DepositScored) {
		s.record(persist.KindDeposited, e.Category, e.Entity, e.Carrier, e.Points)
	})
	event.Subscribe(bus, func(e event.EntityReclaimed) {
		s.record(persist.KindReclaimed, e.Category, e.Entity, ecs.NoEntity, 0)
	})
	return s
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) record(kind string, cat data.Category, id, actor ecs.EntityID, amount int) {
	s.buf = append(s.buf, persist.LedgerEntry{
		SessionID: s.session,
		Tick:      s.ticks(),
		Kind:      kind,
		Category:  cat.String(),
		Entity:    uint64(id),
		Actor:     uint64(actor),
		Amount:    amount,
	})
}

func (s *LedgerSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes everything buffered. A failed batch is logged and dropped.
// Called on shutdown so the tail of a session is not lost.
func (s *LedgerSystem) Flush() {
	if len(s.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := len(s.buf)
	if err := s.repo.Append(ctx, s.buf); err != nil {
		s.log.Error("ledger flush failed", zap.Int("entries", n), zap.Error(err))
	} else {
		s.written += uint64(n)
		s.log.Debug("ledger flushed", zap.Int("entries", n))
	}
	s.buf = s.buf[:0]
}

// Pending returns buffered entries not yet written.
func (s *LedgerSystem) Pending() int { return len(s.buf) }

// Written returns entries stored so far.
func (s *LedgerSystem) Written() uint64 { return s.written }
