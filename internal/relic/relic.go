// Package relic attaches pluggable modifiers to the event bus and answers
// the engine's questions about roll budgets and preserve charges.
package relic

import (
	"errors"

	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

var (
	// ErrUnknownRelic is returned when a relic ID is not in any catalog.
	ErrUnknownRelic = errors.New("unknown relic")
	// ErrUnknownChannel is returned when a relic targets a channel the bus
	// does not have.
	ErrUnknownChannel = errors.New("unknown event channel")
)

// Relic is a modifier that reacts to bus publications. Subscribe attaches
// its handlers and returns the subscriptions so they can be detached later.
type Relic interface {
	ID() string
	Subscribe(bus *events.Bus) []events.Subscription
}

// RollBonus is implemented by relics that change the per-turn roll budget.
type RollBonus interface {
	RollBonus() int
}

// PreserveCharger is implemented by relics that grant preserve charges each
// turn.
type PreserveCharger interface {
	PreserveCharges() int
}

// BonusRoller is implemented by relics that may grant extra rolls once the
// budget is spent.
type BonusRoller interface {
	BonusRolls() int
}

// Stackable is told how many copies of the relic are owned.
type Stackable interface {
	SetStacks(n int)
}

// Func is a relic built from a subscribe function.
type Func struct {
	Name   string
	Attach func(bus *events.Bus) []events.Subscription
	Bonus  int
}

func (f Func) ID() string { return f.Name }

func (f Func) Subscribe(bus *events.Bus) []events.Subscription {
	if f.Attach == nil {
		return nil
	}
	return f.Attach(bus)
}

func (f Func) RollBonus() int { return f.Bonus }
