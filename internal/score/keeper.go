// Package score prices deposits through the reward scripts and keeps the
// running session score.
package score

import (
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/event"
	"github.com/stackyard/stackyard/internal/data"
)

// Rewarder prices one deposit.
type Rewarder interface {
	DepositReward(category string, remaining int) int
}

type Keeper struct {
	rules      Rewarder
	bus        *event.Bus
	total      int64
	byCategory map[data.Category]int64
	deposits   uint64
	log        *zap.Logger
}

// NewKeeper subscribes to deposits on bus. Each scored deposit is re-emitted
// as DepositScored for the next tick.
func NewKeeper(rules Rewarder, bus *event.Bus, log *zap.Logger) *Keeper {
	k := &Keeper{
		rules:      rules,
		bus:        bus,
		byCategory: make(map[data.Category]int64),
		log:        log,
	}
	event.Subscribe(bus, k.onDeposited)
	return k
}

func (k *Keeper) onDeposited(e event.EntityDeposited) {
	pts := k.rules.DepositReward(e.Category.String(), e.Remaining)
	k.total += int64(pts)
	k.byCategory[e.Category] += int64(pts)
	k.deposits++
	k.log.Debug("deposit scored",
		zap.Stringer("entity", e.Entity),
		zap.Stringer("category", e.Category),
		zap.Int("points", pts),
		zap.Int64("total", k.total),
	)
	event.Emit(k.bus, event.DepositScored{
		Entity:   e.Entity,
		Category: e.Category,
		Carrier:  e.Carrier,
		Points:   pts,
	})
}

func (k *Keeper) Total() int64 { return k.total }

func (k *Keeper) Deposits() uint64 { return k.deposits }

func (k *Keeper) CategoryTotal(c data.Category) int64 { return k.byCategory[c] }
