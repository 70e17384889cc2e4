package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
)

// mutate runs fn on the die at index i under the engine lock and reports the
// resulting state to the presenter when fn returns true. Out-of-range
// indices and calls during a roll are rejected.
func (e *Engine) mutate(i int, fn func(d *dice.Die) bool) bool {
	e.mu.Lock()
	if e.rolling.Load() || i < 0 || i >= len(e.hand) {
		e.mu.Unlock()
		if !e.rolling.Load() {
			e.log.Debug("index ignored", zap.Int("index", i))
		}
		return false
	}
	d := e.hand[i]
	ok := fn(d)
	state := d.State()
	e.mu.Unlock()

	if ok {
		e.presenter.DiceStateChanged(i, state)
	}
	return ok
}

// Lock holds the die at index i out of rolls. turns == 0 locks until an
// explicit Unlock; otherwise the lock expires after that many turn starts.
func (e *Engine) Lock(i, turns int) bool {
	if turns < 0 {
		turns = 0
	}
	return e.mutate(i, func(d *dice.Die) bool { return d.Lock(turns) })
}

// Unlock returns a locked die to Normal.
func (e *Engine) Unlock(i int) bool {
	return e.mutate(i, func(d *dice.Die) bool { return d.Unlock() })
}

// ToggleLock flips a die between Normal and an open-ended lock. Preserved
// dice are left alone.
func (e *Engine) ToggleLock(i int) bool {
	return e.mutate(i, func(d *dice.Die) bool {
		switch d.State() {
		case dice.Normal:
			return d.Lock(0)
		case dice.Locked:
			return d.Unlock()
		}
		return false
	})
}

// Keep toggles the lock on each listed index and returns how many changed.
// Invalid indices are skipped.
func (e *Engine) Keep(indices ...int) int {
	n := 0
	for _, i := range indices {
		if e.ToggleLock(i) {
			n++
		}
	}
	return n
}

// Preserve moves a Normal die to Preserved, spending one preserve charge
// from the relic provider. Without a charge the request is rejected.
func (e *Engine) Preserve(i int) bool {
	e.mu.Lock()
	valid := !e.rolling.Load() && i >= 0 && i < len(e.hand) && e.hand[i].State() == dice.Normal
	e.mu.Unlock()
	if !valid || !e.relics.HasPreserveCharge() {
		return false
	}
	if !e.relics.ConsumePreserveCharge() {
		return false
	}
	if !e.mutate(i, func(d *dice.Die) bool { return d.Preserve() }) {
		e.log.Warn("preserve charge spent but die changed state", zap.Int("index", i))
		return false
	}
	return true
}

// Restore returns a preserved die to Normal.
func (e *Engine) Restore(i int) bool {
	return e.mutate(i, func(d *dice.Die) bool { return d.Restore() })
}

// RemoveDice drops the listed indices from the hand, highest first, and
// reports the new positions. Duplicates and out-of-range indices are
// skipped. It returns the number of dice removed.
func (e *Engine) RemoveDice(indices ...int) int {
	e.mu.Lock()
	if e.rolling.Load() {
		e.mu.Unlock()
		return 0
	}
	seen := make(map[int]bool, len(indices))
	var valid []int
	for _, i := range indices {
		if i < 0 || i >= len(e.hand) || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	for _, i := range valid {
		e.hand = append(e.hand[:i], e.hand[i+1:]...)
	}
	positions := e.positionsLocked()
	e.mu.Unlock()

	if len(valid) > 0 {
		e.presenter.HandRepositioned(positions)
	}
	return len(valid)
}

// DieView is a read-only copy of one die.
type DieView struct {
	Type         dice.Type
	Faces        int
	Value        int
	State        dice.State
	LockDuration int
}

// Snapshot is a debug view of the engine state.
type Snapshot struct {
	Dice      []DieView
	Positions []float64
	RollCount int
	MaxRolls  int
	Turn      int
	Rolling   bool
}

// Snapshot copies the current hand and counters.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		Dice:      make([]DieView, len(e.hand)),
		Positions: e.positionsLocked(),
		RollCount: e.rollCount,
		MaxRolls:  e.maxRolls,
		Turn:      e.turn,
		Rolling:   e.rolling.Load(),
	}
	for i, d := range e.hand {
		s.Dice[i] = DieView{
			Type:         d.Type(),
			Faces:        d.Faces(),
			Value:        d.Value(),
			State:        d.State(),
			LockDuration: d.LockDuration(),
		}
	}
	return s
}
