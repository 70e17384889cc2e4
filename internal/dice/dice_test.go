package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeResetsDie(t *testing.T) {
	d := New("d6", 6, NewSequence(4))
	assert.Equal(t, Type("d6"), d.Type())
	assert.Equal(t, 4, d.Value())
	assert.Equal(t, Normal, d.State())

	d.Lock(2)
	d.Initialize("d20", 20, NewSequence(17))
	assert.Equal(t, Type("d20"), d.Type())
	assert.Equal(t, 20, d.Faces())
	assert.Equal(t, 17, d.Value())
	assert.Equal(t, Normal, d.State())
	assert.Equal(t, 0, d.LockDuration())
}

func TestInitialValueInRange(t *testing.T) {
	r := NewSeededRoller(7)
	for i := 0; i < 200; i++ {
		d := New("d4", 4, r)
		if d.Value() < 1 || d.Value() > 4 {
			t.Fatalf("value out of bounds for d4: %d", d.Value())
		}
	}
}

func TestUpdateValueIgnoresOutOfRange(t *testing.T) {
	d := New("d6", 6, NewSequence(3))

	assert.False(t, d.UpdateValue(0))
	assert.False(t, d.UpdateValue(7))
	assert.Equal(t, 3, d.Value())

	assert.True(t, d.UpdateValue(6))
	assert.Equal(t, 6, d.Value())
}

func TestRollSkipsLockedAndPreserved(t *testing.T) {
	seq := NewSequence(2, 5, 5, 5)
	d := New("d6", 6, seq)

	d.Lock(0)
	assert.Equal(t, 2, d.Roll(seq))

	d.Unlock()
	d.Preserve()
	assert.Equal(t, 2, d.Roll(seq))

	d.Restore()
	assert.Equal(t, 5, d.Roll(seq))
}

func TestTickLock(t *testing.T) {
	d := New("d6", 6, NewSequence(1))

	t.Run("timed lock expires", func(t *testing.T) {
		d.Lock(2)
		assert.False(t, d.TickLock())
		assert.Equal(t, Locked, d.State())
		assert.Equal(t, 1, d.LockDuration())
		assert.True(t, d.TickLock())
		assert.Equal(t, Normal, d.State())
	})

	t.Run("open lock never expires", func(t *testing.T) {
		d.Lock(0)
		for i := 0; i < 5; i++ {
			assert.False(t, d.TickLock())
		}
		assert.Equal(t, Locked, d.State())
	})

	t.Run("preserved dice are not ticked", func(t *testing.T) {
		require.True(t, d.Unlock())
		require.True(t, d.Preserve())
		assert.False(t, d.TickLock())
		assert.Equal(t, Preserved, d.State())
	})
}

func TestTransitionGuards(t *testing.T) {
	d := New("d6", 6, NewSequence(1))

	assert.False(t, d.Unlock())
	assert.False(t, d.Restore())

	require.True(t, d.Preserve())
	assert.False(t, d.Lock(1))
	assert.False(t, d.Preserve())
	assert.True(t, d.Restore())

	require.True(t, d.Lock(1))
	assert.True(t, d.Lock(3))
	assert.Equal(t, 3, d.LockDuration())
	assert.False(t, d.Preserve())
}

func TestSetStateClearsLockDuration(t *testing.T) {
	d := New("d6", 6, NewSequence(1))
	d.Lock(3)
	d.SetState(Preserved)
	assert.Equal(t, 0, d.LockDuration())
	assert.Equal(t, "preserved", d.State().String())
}

func TestSequenceClampsThroughDraw(t *testing.T) {
	d := New("d6", 6, NewSequence(9))
	assert.Equal(t, 6, d.Value())

	d = New("d6", 6, NewSequence(-1))
	assert.Equal(t, 1, d.Value())
}

func TestSequenceFallback(t *testing.T) {
	seq := NewSequence(3)
	seq.Fallback = RollerFunc(func(int) int { return 2 })

	assert.Equal(t, 3, seq.Roll(6))
	assert.Equal(t, 0, seq.Remaining())
	assert.Equal(t, 2, seq.Roll(6))

	seq.Push(1, 1)
	require.Equal(t, 2, seq.Remaining())
}

func TestSeededRollerIsReplicable(t *testing.T) {
	a := NewSeededRoller(42)
	b := NewSeededRoller(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Roll(20), b.Roll(20))
	}
}
