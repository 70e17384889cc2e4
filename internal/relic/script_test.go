package relic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/engine"
	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

func newEvaluator(t *testing.T, r dice.Roller) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(r)
	require.NoError(t, err)
	return ev
}

func TestScriptedScalarEffects(t *testing.T) {
	ev := newEvaluator(t, nil)
	bus := events.NewBus(nil)

	whetstone, err := NewScripted(Definition{
		ID: "whetstone",
		Effects: []EffectDef{{
			On:   events.ChanAttack,
			When: "ctx.hand_rank == 'pair'",
			Set:  map[string]string{FieldFlatBonus: "ctx.flat_bonus + 5 * relic.stacks"},
		}},
	}, ev)
	require.NoError(t, err)

	lens, err := NewScripted(Definition{
		ID: "lens",
		Effects: []EffectDef{{
			On:  events.ChanAttack,
			Set: map[string]string{FieldMultiplier: "ctx.flat_bonus > 0 ? 2.0 : 1.0"},
		}},
	}, ev)
	require.NoError(t, err)

	c := NewCollection(bus, nil)
	require.True(t, c.Acquire(whetstone))
	require.True(t, c.Acquire(lens))

	t.Run("guard matches", func(t *testing.T) {
		ctx := events.NewAttackContext(7, []int{3, 3}, []int{0, 1}, "pair")
		bus.Attack.Publish(ctx)
		assert.Equal(t, 24, ctx.Calculate())
	})

	t.Run("guard does not match", func(t *testing.T) {
		ctx := events.NewAttackContext(7, []int{1, 6}, nil, "high")
		bus.Attack.Publish(ctx)
		assert.Equal(t, 7, ctx.Calculate())
	})

	t.Run("stacks scale the effect", func(t *testing.T) {
		require.True(t, c.Acquire(whetstone))
		ctx := events.NewAttackContext(7, []int{3, 3}, []int{0, 1}, "pair")
		bus.Attack.Publish(ctx)
		assert.Equal(t, 34, ctx.Calculate())
	})
}

func TestScriptedCancel(t *testing.T) {
	ev := newEvaluator(t, nil)
	bus := events.NewBus(nil)
	ward, err := NewScripted(Definition{
		ID: "ward",
		Effects: []EffectDef{{
			On:  events.ChanDamage,
			Set: map[string]string{FieldCancelled: "ctx.base <= 3"},
		}},
	}, ev)
	require.NoError(t, err)
	ward.Subscribe(bus)

	small := events.NewDamageContext(3, "bat")
	bus.Damage.Publish(small)
	assert.True(t, small.IsCancelled())

	big := events.NewDamageContext(9, "ogre")
	bus.Damage.Publish(big)
	assert.False(t, big.IsCancelled())
}

func TestScriptedRollEffects(t *testing.T) {
	ev := newEvaluator(t, nil)
	bus := events.NewBus(nil)

	weighted, err := NewScripted(Definition{
		ID: "weighted",
		Effects: []EffectDef{
			{
				On:   events.ChanDiceRolled,
				When: "ctx.is_first_roll",
				Set: map[string]string{
					FieldValues: "ctx.values.map(v, v < 2 ? 2 : v)",
					FieldReroll: "[0]",
				},
			},
			{
				On:  events.ChanDiceRerolled,
				Set: map[string]string{FieldReroll: "[1, 2]"},
			},
		},
	}, ev)
	require.NoError(t, err)
	weighted.Subscribe(bus)

	seq := dice.NewSequence(4, 4, 4, 1, 5, 1, 6)
	e := engine.New(bus, engine.DefaultConfig(), engine.WithRoller(seq))
	require.True(t, e.DealHand([]dice.Type{"d6", "d6", "d6"}))

	res, ok := e.RequestRoll(context.Background())
	require.True(t, ok)
	assert.Equal(t, []int{0}, res.Rerolled)
	assert.Equal(t, []int{6, 5, 2}, res.Values)
	assert.Equal(t, 0, seq.Remaining())
}

func TestScriptedCancelReroll(t *testing.T) {
	ev := newEvaluator(t, nil)
	r, err := NewScripted(Definition{
		ID: "anchor",
		Effects: []EffectDef{{
			On:  events.ChanDiceRolled,
			Set: map[string]string{FieldCancelReroll: "size(ctx.reroll) > 0"},
		}},
	}, ev)
	require.NoError(t, err)

	ctx := events.NewRollContext([]int{1, 2}, []dice.Type{"d6", "d6"}, 1)
	ctx.RequestReroll(0)
	require.NoError(t, r.applyRoll(r.effects[0], ctx))
	assert.True(t, ctx.CancelReroll)
}

func TestScriptedHelpers(t *testing.T) {
	ev := newEvaluator(t, dice.NewSequence(3, 4))
	bus := events.NewBus(nil)
	r, err := NewScripted(Definition{
		ID: "purse",
		Effects: []EffectDef{{
			On:   events.ChanGold,
			When: "mod(ctx.base, 2) == 0",
			Set:  map[string]string{FieldFlatBonus: "clamp(roll('2d6'), 0, 5)"},
		}},
	}, ev)
	require.NoError(t, err)
	r.Subscribe(bus)

	even := events.NewGoldContext(4, "chest")
	bus.Gold.Publish(even)
	assert.Equal(t, 9, even.Calculate())

	odd := events.NewGoldContext(5, "chest")
	bus.Gold.Publish(odd)
	assert.Equal(t, 5, odd.Calculate())
}

func TestScriptedRejectsBadDefinitions(t *testing.T) {
	ev := newEvaluator(t, nil)

	_, err := NewScripted(Definition{}, ev)
	assert.Error(t, err)

	_, err = NewScripted(Definition{ID: "x", Effects: []EffectDef{{On: "lunch"}}}, ev)
	assert.ErrorIs(t, err, ErrUnknownChannel)

	_, err = NewScripted(Definition{ID: "x", Effects: []EffectDef{{
		On:  events.ChanHeal,
		Set: map[string]string{FieldValues: "[1]"},
	}}}, ev)
	assert.ErrorContains(t, err, "cannot be set")

	_, err = NewScripted(Definition{ID: "x", Effects: []EffectDef{{
		On:   events.ChanHeal,
		When: "ctx.base >",
	}}}, ev)
	assert.ErrorContains(t, err, "CEL compile error")
}

func TestScriptFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := events.NewBus(zap.New(core))
	ev := newEvaluator(t, nil)

	r, err := NewScripted(Definition{
		ID: "broken",
		Effects: []EffectDef{{
			On:  events.ChanHeal,
			Set: map[string]string{FieldFlatBonus: "'lots'"},
		}},
	}, ev)
	require.NoError(t, err)
	r.Subscribe(bus)

	ctx := events.NewHealContext(4, "rest")
	bus.Heal.Publish(ctx)
	assert.Equal(t, 4, ctx.Calculate())
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}
