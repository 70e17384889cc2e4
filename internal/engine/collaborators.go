package engine

import "github.com/Lepied/DiceSoul-sub001/internal/dice"

// Presenter mirrors hand mutations to whatever draws the dice. Every call is
// made after the engine has released its own lock.
type Presenter interface {
	DiceStateChanged(index int, state dice.State)
	DiceValueChanged(index int, value int)
	HandRepositioned(positions []float64)
}

// RelicProvider answers the engine's questions about active relics.
type RelicProvider interface {
	// RollBonuses lists the roll-budget deltas of every active modifier.
	RollBonuses() []int
	HasPreserveCharge() bool
	ConsumePreserveCharge() bool
	// GrantBonusRoll is asked once per rejected roll at budget zero.
	GrantBonusRoll() bool
}

// HandConsumer receives the finalized values after each roll cycle. The
// engine does not wait on or inspect the outcome.
type HandConsumer interface {
	HandResolved(values []int)
}

// TurnObserver is an optional HandConsumer extension told the settled budget
// of a new turn, after TurnStarted handlers have refilled their relics.
type TurnObserver interface {
	TurnPrepared(turn, maxRolls int)
}

// Shield is the defensive flag held by the player state. A new roll drops it.
type Shield interface {
	ClearShield()
}

type nopPresenter struct{}

func (nopPresenter) DiceStateChanged(int, dice.State) {}
func (nopPresenter) DiceValueChanged(int, int)        {}
func (nopPresenter) HandRepositioned([]float64)       {}

type nopRelics struct{}

func (nopRelics) RollBonuses() []int          { return nil }
func (nopRelics) HasPreserveCharge() bool     { return false }
func (nopRelics) ConsumePreserveCharge() bool { return false }
func (nopRelics) GrantBonusRoll() bool        { return false }

type nopConsumer struct{}

func (nopConsumer) HandResolved([]int) {}

type nopShield struct{}

func (nopShield) ClearShield() {}

// HandConsumerFunc adapts a function to HandConsumer.
type HandConsumerFunc func(values []int)

func (f HandConsumerFunc) HandResolved(values []int) { f(values) }

// Consumers fans a resolved hand out to several consumers in order.
type Consumers []HandConsumer

func (cs Consumers) HandResolved(values []int) {
	for _, c := range cs {
		if c != nil {
			c.HandResolved(append([]int(nil), values...))
		}
	}
}

func (cs Consumers) TurnPrepared(turn, maxRolls int) {
	for _, c := range cs {
		if o, ok := c.(TurnObserver); ok {
			o.TurnPrepared(turn, maxRolls)
		}
	}
}
