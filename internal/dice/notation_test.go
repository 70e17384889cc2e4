package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeck(t *testing.T) {
	deck, err := ParseDeck("3d6 d20,2D8")
	require.NoError(t, err)
	assert.Equal(t, []Type{"d6", "d6", "d6", "d20", "d8", "d8"}, deck)
}

func TestParseDeckErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "six", "0d6", "2d0", "d6+1"} {
		_, err := ParseDeck(in)
		assert.ErrorIs(t, err, ErrInvalidNotation, "input %q", in)
	}
}

func TestFaceTable(t *testing.T) {
	ft := DefaultFaces()

	n, ok := ft.Faces("d12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ft.Faces("d3")
	assert.False(t, ok)

	assert.Equal(t, []Type{"d4", "d6", "d8", "d10", "d12", "d20"}, ft.Types())
}

func TestRollExpr(t *testing.T) {
	res, err := RollExpr("2d6+3", NewSequence(4, 5))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, res.RawRolls)
	assert.Equal(t, 3, res.Modifier)
	assert.Equal(t, 12, res.Total)

	res, err = RollExpr("d1-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	_, err = RollExpr("4d6kh3", nil)
	assert.ErrorIs(t, err, ErrInvalidNotation)
}
