// Package journal records a run as an append-only log of events and folds
// the log back into the run's state.
package journal

import (
	"fmt"
	"strings"
)

type EventType string

const (
	EventRunStarted    EventType = "RunStarted"
	EventHandDealt     EventType = "HandDealt"
	EventDiceRolled    EventType = "DiceRolled"
	EventDiceRemoved   EventType = "DiceRemoved"
	EventTurnStarted   EventType = "TurnStarted"
	EventGoldChanged   EventType = "GoldChanged"
	EventHealthChanged EventType = "HealthChanged"
	EventRelicAcquired EventType = "RelicAcquired"
)

// Event is one entry of the run log.
type Event interface {
	Type() EventType
	Apply(state *RunState) error
	Message() string
}

// RunStartedEvent opens a run.
type RunStartedEvent struct {
	RunID     string `json:"run_id"`
	Seed      uint64 `json:"seed"`
	Health    int    `json:"health"`
	Gold      int    `json:"gold"`
	MaxRolls  int    `json:"max_rolls"`
	StartedAt string `json:"started_at"`
}

func (e *RunStartedEvent) Type() EventType { return EventRunStarted }
func (e *RunStartedEvent) Apply(state *RunState) error {
	state.RunID = e.RunID
	state.Seed = e.Seed
	state.Health = e.Health
	state.MaxHealth = e.Health
	state.Gold = e.Gold
	state.MaxRolls = e.MaxRolls
	return nil
}
func (e *RunStartedEvent) Message() string { return fmt.Sprintf("Run %s started.", e.RunID) }

// HandDealtEvent replaces the hand.
type HandDealtEvent struct {
	Dice     []string `json:"dice"`
	Values   []int    `json:"values"`
	MaxRolls int      `json:"max_rolls"`
}

func (e *HandDealtEvent) Type() EventType { return EventHandDealt }
func (e *HandDealtEvent) Apply(state *RunState) error {
	if len(e.Dice) != len(e.Values) {
		return fmt.Errorf("hand has %d dice but %d values", len(e.Dice), len(e.Values))
	}
	state.Dice = append([]string(nil), e.Dice...)
	state.Hand = append([]int(nil), e.Values...)
	state.RollCount = 0
	state.MaxRolls = e.MaxRolls
	state.HandsDealt++
	return nil
}
func (e *HandDealtEvent) Message() string {
	return fmt.Sprintf("Dealt %s.", strings.Join(e.Dice, " "))
}

// DiceRolledEvent records the finalized values of one roll cycle.
type DiceRolledEvent struct {
	Values []int `json:"values"`
}

func (e *DiceRolledEvent) Type() EventType { return EventDiceRolled }
func (e *DiceRolledEvent) Apply(state *RunState) error {
	if len(e.Values) != len(state.Hand) {
		return fmt.Errorf("roll has %d values but the hand holds %d dice", len(e.Values), len(state.Hand))
	}
	state.Hand = append([]int(nil), e.Values...)
	state.RollCount++
	state.TotalRolls++
	return nil
}
func (e *DiceRolledEvent) Message() string { return fmt.Sprintf("Rolled %v.", e.Values) }

// DiceRemovedEvent records dice consumed from the hand.
type DiceRemovedEvent struct {
	Indices []int `json:"indices"`
}

func (e *DiceRemovedEvent) Type() EventType { return EventDiceRemoved }
func (e *DiceRemovedEvent) Apply(state *RunState) error {
	drop := make(map[int]bool, len(e.Indices))
	for _, i := range e.Indices {
		if i < 0 || i >= len(state.Hand) {
			return fmt.Errorf("cannot remove die %d from a hand of %d", i, len(state.Hand))
		}
		drop[i] = true
	}
	hand, types := state.Hand[:0:0], state.Dice[:0:0]
	for i := range state.Hand {
		if drop[i] {
			continue
		}
		hand = append(hand, state.Hand[i])
		types = append(types, state.Dice[i])
	}
	state.Hand, state.Dice = hand, types
	return nil
}
func (e *DiceRemovedEvent) Message() string { return fmt.Sprintf("Removed dice %v.", e.Indices) }

// TurnStartedEvent resets the roll counter.
type TurnStartedEvent struct {
	Turn     int `json:"turn"`
	MaxRolls int `json:"max_rolls"`
}

func (e *TurnStartedEvent) Type() EventType { return EventTurnStarted }
func (e *TurnStartedEvent) Apply(state *RunState) error {
	state.Turn = e.Turn
	state.MaxRolls = e.MaxRolls
	state.RollCount = 0
	return nil
}
func (e *TurnStartedEvent) Message() string { return fmt.Sprintf("Turn %d begins.", e.Turn) }

// GoldChangedEvent moves gold in either direction.
type GoldChangedEvent struct {
	Delta  int    `json:"delta"`
	Source string `json:"source"`
}

func (e *GoldChangedEvent) Type() EventType { return EventGoldChanged }
func (e *GoldChangedEvent) Apply(state *RunState) error {
	if state.Gold+e.Delta < 0 {
		return fmt.Errorf("gold cannot drop below zero (%d%+d)", state.Gold, e.Delta)
	}
	state.Gold += e.Delta
	return nil
}
func (e *GoldChangedEvent) Message() string {
	return fmt.Sprintf("Gold %+d (%s).", e.Delta, e.Source)
}

// HealthChangedEvent moves health, clamped to [0, MaxHealth].
type HealthChangedEvent struct {
	Delta  int    `json:"delta"`
	Source string `json:"source"`
}

func (e *HealthChangedEvent) Type() EventType { return EventHealthChanged }
func (e *HealthChangedEvent) Apply(state *RunState) error {
	state.Health += e.Delta
	if state.Health < 0 {
		state.Health = 0
	}
	if state.Health > state.MaxHealth {
		state.Health = state.MaxHealth
	}
	return nil
}
func (e *HealthChangedEvent) Message() string {
	return fmt.Sprintf("Health %+d (%s).", e.Delta, e.Source)
}

// RelicAcquiredEvent adds stacks of a relic.
type RelicAcquiredEvent struct {
	RelicID string `json:"relic_id"`
	Stacks  int    `json:"stacks"`
}

func (e *RelicAcquiredEvent) Type() EventType { return EventRelicAcquired }
func (e *RelicAcquiredEvent) Apply(state *RunState) error {
	if e.Stacks <= 0 {
		return fmt.Errorf("relic %s acquired with %d stacks", e.RelicID, e.Stacks)
	}
	if _, ok := state.Relics[e.RelicID]; !ok {
		state.RelicOrder = append(state.RelicOrder, e.RelicID)
	}
	state.Relics[e.RelicID] += e.Stacks
	return nil
}
func (e *RelicAcquiredEvent) Message() string {
	return fmt.Sprintf("Acquired %s x%d.", e.RelicID, e.Stacks)
}
