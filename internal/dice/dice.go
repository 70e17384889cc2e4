// Package dice models a single die: its type, face value and the
// Normal/Locked/Preserved lifecycle that decides whether it takes part in
// the next roll.
package dice

import "fmt"

// State is the lifecycle state of a die within a hand.
type State int

const (
	// Normal dice are rerolled on every roll request.
	Normal State = iota
	// Locked dice keep their value until the lock expires or is lifted.
	Locked
	// Preserved dice keep their value until explicitly restored.
	Preserved
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Locked:
		return "locked"
	case Preserved:
		return "preserved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Die is one die of the active hand.
type Die struct {
	typ          Type
	faces        int
	value        int
	state        State
	lockDuration int
}

// New creates a die of the given type and rolls its initial value.
func New(t Type, faces int, r Roller) *Die {
	d := &Die{}
	d.Initialize(t, faces, r)
	return d
}

// Initialize resets the die to a fresh Normal die of type t with a random
// value in [1, faces].
func (d *Die) Initialize(t Type, faces int, r Roller) {
	if faces < 1 {
		faces = 1
	}
	d.typ = t
	d.faces = faces
	d.state = Normal
	d.lockDuration = 0
	d.value = draw(r, faces)
}

func (d *Die) Type() Type        { return d.typ }
func (d *Die) Faces() int        { return d.faces }
func (d *Die) Value() int        { return d.value }
func (d *Die) State() State      { return d.state }
func (d *Die) LockDuration() int { return d.lockDuration }

// CanReroll reports whether the die takes part in roll and reroll passes.
func (d *Die) CanReroll() bool { return d.state == Normal }

// UpdateValue sets the face value. Values outside [1, faces] are ignored and
// false is returned.
func (d *Die) UpdateValue(v int) bool {
	if v < 1 || v > d.faces {
		return false
	}
	d.value = v
	return true
}

// Roll draws a new value for a Normal die and returns the value the die
// shows afterwards. Locked and Preserved dice are left untouched.
func (d *Die) Roll(r Roller) int {
	if d.CanReroll() {
		d.value = draw(r, d.faces)
	}
	return d.value
}

// SetState moves the die to s unconditionally. Leaving Locked clears the
// remaining lock duration.
func (d *Die) SetState(s State) {
	if s != Locked {
		d.lockDuration = 0
	}
	d.state = s
}

// Lock locks the die for the given number of turns. A duration of zero keeps
// the lock until Unlock is called. Locking an already locked die replaces its
// duration; preserved dice cannot be locked.
func (d *Die) Lock(turns int) bool {
	if d.state == Preserved {
		return false
	}
	if turns < 0 {
		turns = 0
	}
	d.state = Locked
	d.lockDuration = turns
	return true
}

// Unlock returns a Locked die to Normal.
func (d *Die) Unlock() bool {
	if d.state != Locked {
		return false
	}
	d.SetState(Normal)
	return true
}

// Preserve exempts a Normal die from rerolls until Restore.
func (d *Die) Preserve() bool {
	if d.state != Normal {
		return false
	}
	d.SetState(Preserved)
	return true
}

// Restore returns a Preserved die to Normal.
func (d *Die) Restore() bool {
	if d.state != Preserved {
		return false
	}
	d.SetState(Normal)
	return true
}

// TickLock counts down a timed lock by one turn. It returns true when the
// die was released back to Normal.
func (d *Die) TickLock() bool {
	if d.state != Locked || d.lockDuration == 0 {
		return false
	}
	d.lockDuration--
	if d.lockDuration == 0 {
		d.state = Normal
		return true
	}
	return false
}

func draw(r Roller, faces int) int {
	if r == nil {
		r = DefaultRoller()
	}
	v := r.Roll(faces)
	if v < 1 {
		return 1
	}
	if v > faces {
		return faces
	}
	return v
}
