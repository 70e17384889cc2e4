package relic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/engine"
	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

type chargeRelic struct {
	id              string
	bonus, charges  int
	grants, stacked int
}

func (r *chargeRelic) ID() string                                 { return r.id }
func (r *chargeRelic) Subscribe(*events.Bus) []events.Subscription { return nil }
func (r *chargeRelic) RollBonus() int                             { return r.bonus }
func (r *chargeRelic) PreserveCharges() int                       { return r.charges }
func (r *chargeRelic) BonusRolls() int                            { return r.grants }
func (r *chargeRelic) SetStacks(n int)                            { r.stacked = n }

func flatDamage(id string, bonus int) Func {
	return Func{
		Name: id,
		Attach: func(bus *events.Bus) []events.Subscription {
			return []events.Subscription{bus.Damage.Subscribe(func(c *events.DamageContext) error {
				c.FlatBonus += bonus
				return nil
			})}
		},
	}
}

func TestAcquireAndRemove(t *testing.T) {
	bus := events.NewBus(nil)
	c := NewCollection(bus, nil)

	require.True(t, c.Acquire(flatDamage("spikes", 3)))
	require.True(t, c.Acquire(flatDamage("spikes", 3)))
	assert.Equal(t, 2, c.Stacks("spikes"))
	assert.Equal(t, 1, bus.Damage.Len(), "handlers attach once per relic")

	ctx := events.NewDamageContext(10, "slime")
	bus.Damage.Publish(ctx)
	assert.Equal(t, 13, ctx.Calculate())

	require.True(t, c.Remove("spikes"))
	assert.False(t, c.Has("spikes"))
	assert.Equal(t, 0, bus.Damage.Len())
	assert.False(t, c.Remove("spikes"))
}

func TestAcquireCanBeCancelled(t *testing.T) {
	bus := events.NewBus(nil)
	c := NewCollection(bus, nil)

	bus.RelicAcquired.Subscribe(func(rc *events.RelicContext) error {
		if rc.RelicID == "cursed" {
			rc.Cancel()
		}
		if rc.RelicID == "twin" {
			rc.Multiplier = 2
		}
		return nil
	})

	assert.False(t, c.Acquire(flatDamage("cursed", 1)))
	assert.Empty(t, c.IDs())

	r := &chargeRelic{id: "twin"}
	require.True(t, c.Acquire(r))
	assert.Equal(t, 2, c.Stacks("twin"))
	assert.Equal(t, 2, r.stacked)
}

func TestRestoreSkipsAcquisitionHandlers(t *testing.T) {
	bus := events.NewBus(nil)
	c := NewCollection(bus, nil)

	published := 0
	bus.RelicAcquired.Subscribe(func(rc *events.RelicContext) error {
		published++
		rc.Cancel()
		return nil
	})

	r := &chargeRelic{id: "amber", charges: 1}
	require.True(t, c.Restore(r, 3))
	assert.Equal(t, 0, published)
	assert.Equal(t, 3, c.Stacks("amber"))
	assert.Equal(t, 3, r.stacked)
	assert.Equal(t, 3, c.PreserveCharges())
	assert.False(t, c.Restore(flatDamage("spikes", 1), 0))
	assert.Equal(t, []string{"amber"}, c.IDs())
}

func TestChargesRefillOnTurnStart(t *testing.T) {
	bus := events.NewBus(nil)
	c := NewCollection(bus, nil)
	require.True(t, c.Acquire(&chargeRelic{id: "amber", charges: 1, grants: 1}))

	assert.True(t, c.HasPreserveCharge())
	assert.True(t, c.ConsumePreserveCharge())
	assert.False(t, c.ConsumePreserveCharge())
	assert.True(t, c.GrantBonusRoll())
	assert.False(t, c.GrantBonusRoll())

	bus.TurnStarted.Publish(&events.TurnContext{Turn: 2})
	assert.Equal(t, 1, c.PreserveCharges())
	assert.True(t, c.GrantBonusRoll())

	c.Close()
	assert.Equal(t, 0, bus.TurnStarted.Len())
}

func TestCollectionDrivesEngineBudget(t *testing.T) {
	bus := events.NewBus(nil)
	c := NewCollection(bus, nil)
	e := engine.New(bus, engine.DefaultConfig(), engine.WithRelics(c), engine.WithRoller(dice.NewSequence()))
	require.True(t, e.DealHand([]dice.Type{"d6", "d6", "d6", "d6", "d6"}))

	require.True(t, c.Acquire(&chargeRelic{id: "hourglass", bonus: 1}))
	require.True(t, c.Acquire(&chargeRelic{id: "sandglass", bonus: 1}))
	require.True(t, e.PrepareNewTurn())
	assert.Equal(t, 5, e.MaxRolls())

	t.Run("bonus roll at budget zero", func(t *testing.T) {
		require.True(t, c.Acquire(&chargeRelic{id: "clover", grants: 1}))
		for i := 0; i < 5; i++ {
			_, ok := e.RequestRoll(context.Background())
			require.True(t, ok)
		}
		res, ok := e.RequestRoll(context.Background())
		require.True(t, ok)
		assert.True(t, res.BonusGranted)
		_, ok = e.RequestRoll(context.Background())
		assert.False(t, ok)
	})

	t.Run("preserve spends a charge", func(t *testing.T) {
		require.True(t, c.Acquire(&chargeRelic{id: "amber", charges: 1}))
		assert.True(t, e.Preserve(0))
		assert.False(t, e.Preserve(1))
		assert.Equal(t, dice.Preserved, e.Snapshot().Dice[0].State)
	})
}
