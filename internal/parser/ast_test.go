package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lepied/DiceSoul-sub001/internal/parser"
)

func TestParseDeal(t *testing.T) {
	cmd, err := parser.Parse("deal 3d6, d20 2D8")
	require.NoError(t, err)
	require.NotNil(t, cmd.Deal)
	assert.Equal(t, []string{"3d6", "d20", "2D8"}, cmd.Deal.Deck)
}

func TestParseIndices(t *testing.T) {
	cmd, err := parser.Parse("keep 0 2, 4")
	require.NoError(t, err)
	require.NotNil(t, cmd.Keep)
	assert.Equal(t, []int{0, 2, 4}, cmd.Keep.Indices)

	cmd, err = parser.Parse("remove 3 1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, cmd.Remove.Indices)

	cmd, err = parser.Parse("unlock 1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, cmd.Unlock.Indices)
}

func TestParseLock(t *testing.T) {
	t.Run("open ended", func(t *testing.T) {
		cmd, err := parser.Parse("lock 2")
		require.NoError(t, err)
		require.NotNil(t, cmd.Lock)
		assert.Equal(t, 2, cmd.Lock.Index)
		assert.Equal(t, 0, cmd.Lock.Turns)
	})

	t.Run("timed", func(t *testing.T) {
		cmd, err := parser.Parse("LOCK 1 for: 3")
		require.NoError(t, err)
		assert.Equal(t, 1, cmd.Lock.Index)
		assert.Equal(t, 3, cmd.Lock.Turns)
	})
}

func TestParseAttack(t *testing.T) {
	cmd, err := parser.Parse("attack")
	require.NoError(t, err)
	require.NotNil(t, cmd.Attack)
	assert.Nil(t, cmd.Attack.Base)

	cmd, err = parser.Parse("attack 12")
	require.NoError(t, err)
	require.NotNil(t, cmd.Attack.Base)
	assert.Equal(t, 12, *cmd.Attack.Base)
}

func TestParseLedgerCommands(t *testing.T) {
	cmd, err := parser.Parse("damage 4 from: ogre")
	require.NoError(t, err)
	assert.Equal(t, 4, cmd.Damage.Amount)
	assert.Equal(t, "ogre", cmd.Damage.Source)

	cmd, err = parser.Parse("buy potion 20")
	require.NoError(t, err)
	assert.Equal(t, "potion", cmd.Buy.Item)
	assert.Equal(t, 20, cmd.Buy.Price)

	cmd, err = parser.Parse("wave 40 reward: 12")
	require.NoError(t, err)
	assert.Equal(t, 40, cmd.Wave.EnemyHealth)
	assert.Equal(t, 12, cmd.Wave.Reward)

	cmd, err = parser.Parse("zone 2 heal: 10")
	require.NoError(t, err)
	assert.Equal(t, 2, cmd.Zone.Zone)
	assert.Equal(t, 10, cmd.Zone.Heal)

	cmd, err = parser.Parse("relic loaded_die")
	require.NoError(t, err)
	assert.Equal(t, "loaded_die", cmd.Relic.ID)
}

func TestParseBareKeywords(t *testing.T) {
	for input, check := range map[string]func(*parser.Command) bool{
		"roll":   func(c *parser.Command) bool { return c.Roll != nil },
		"end":    func(c *parser.Command) bool { return c.End != nil },
		"shield": func(c *parser.Command) bool { return c.Shield != nil },
		"Status": func(c *parser.Command) bool { return c.Status != nil },
		"help":   func(c *parser.Command) bool { return c.Help != nil },
		"exit":   func(c *parser.Command) bool { return c.Quit != nil },
	} {
		cmd, err := parser.Parse(input)
		require.NoError(t, err, input)
		assert.True(t, check(cmd), input)
	}
}

func TestParseErrorsGiveUsage(t *testing.T) {
	_, err := parser.Parse("lock")
	assert.EqualError(t, err, "The command lock must be: lock <index> [for: <turns>]")

	_, err = parser.Parse("deal six")
	assert.ErrorContains(t, err, "deal <dice>")

	_, err = parser.Parse("dance")
	assert.EqualError(t, err, "I wasn't able to understand your command")

	_, err = parser.Parse("   ")
	assert.Error(t, err)
}
