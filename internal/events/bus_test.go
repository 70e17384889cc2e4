package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOrderedVisibility(t *testing.T) {
	bus := NewBus(nil)

	bus.Attack.Subscribe(func(c *AttackContext) error {
		c.FlatBonus = 5
		return nil
	})
	bus.Attack.Subscribe(func(c *AttackContext) error {
		require.Equal(t, 5, c.FlatBonus)
		c.Multiplier = 2
		return nil
	})

	ctx := NewAttackContext(7, []int{6, 6}, []int{0, 1}, "pair")
	bus.Attack.Publish(ctx)
	assert.Equal(t, (7+5)*2, ctx.Calculate())
}

func TestDamageExample(t *testing.T) {
	bus := NewBus(nil)

	t.Run("no subscribers", func(t *testing.T) {
		ctx := NewDamageContext(10, "slime")
		bus.Damage.Publish(ctx)
		assert.Equal(t, 10, ctx.Calculate())
		assert.Equal(t, 10, ctx.Final)
	})

	t.Run("flat bonus subscriber", func(t *testing.T) {
		bus.Damage.Subscribe(func(c *DamageContext) error {
			c.FlatBonus += 3
			return nil
		})
		ctx := NewDamageContext(10, "slime")
		bus.Damage.Publish(ctx)
		assert.Equal(t, 13, ctx.Calculate())
	})
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	sub := bus.Gold.Subscribe(func(*GoldContext) error {
		calls++
		return nil
	})
	require.True(t, sub.Valid())

	bus.Gold.Publish(NewGoldContext(1, "test"))
	bus.Unsubscribe(sub)
	bus.Gold.Publish(NewGoldContext(1, "test"))
	assert.Equal(t, 1, calls)

	assert.NotPanics(t, func() {
		bus.Unsubscribe(sub)
		bus.Unsubscribe(Subscription{})
	})
	assert.Equal(t, 0, bus.Gold.Len())
}

func TestUnsubscribeKeepsOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []string
	bus.Heal.Subscribe(func(*HealContext) error { order = append(order, "a"); return nil })
	b := bus.Heal.Subscribe(func(*HealContext) error { order = append(order, "b"); return nil })
	bus.Heal.Subscribe(func(*HealContext) error { order = append(order, "c"); return nil })

	bus.Unsubscribe(b)
	bus.Heal.Publish(NewHealContext(1, "potion"))
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestClearAll(t *testing.T) {
	bus := NewBus(nil)
	bus.DiceRolled.Subscribe(func(*RollContext) error { return nil })
	bus.ShopOpened.Subscribe(func(*ShopContext) error { return nil })
	bus.TurnStarted.Subscribe(func(*TurnContext) error { return nil })

	bus.ClearAll()
	assert.Equal(t, 0, bus.DiceRolled.Len())
	assert.Equal(t, 0, bus.ShopOpened.Len())
	assert.Equal(t, 0, bus.TurnStarted.Len())
}

func TestHandlerFaultsAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := NewBus(zap.New(core))

	bus.Heal.Subscribe(func(c *HealContext) error {
		c.FlatBonus = 2
		return errors.New("boom")
	})
	bus.Heal.Subscribe(func(c *HealContext) error {
		panic("relic bug")
	})
	bus.Heal.Subscribe(func(c *HealContext) error {
		c.Multiplier = 3
		return nil
	})

	ctx := NewHealContext(4, "rest")
	require.NotPanics(t, func() { bus.Heal.Publish(ctx) })
	assert.Equal(t, 18, ctx.Calculate())

	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, ChanHeal, entries[0].ContextMap()["channel"])
}

func TestSubscribeDuringPublishWaitsForNextCycle(t *testing.T) {
	bus := NewBus(nil)
	late := 0
	bus.Gold.Subscribe(func(*GoldContext) error {
		bus.Gold.Subscribe(func(*GoldContext) error { late++; return nil })
		return nil
	})

	bus.Gold.Publish(NewGoldContext(1, "chest"))
	assert.Equal(t, 0, late)
	bus.Gold.Publish(NewGoldContext(1, "chest"))
	assert.Equal(t, 1, late)
}

func TestScalarChannel(t *testing.T) {
	bus := NewBus(nil)

	sub, ok := bus.ScalarChannel(ChanShopOpened)
	require.True(t, ok)
	sub(func(s Scalar) error {
		s.Terms().FlatBonus -= 5
		assert.Equal(t, "potion", s.Facts()["item"])
		return nil
	})

	ctx := NewShopContext("potion", 20)
	bus.ShopOpened.Publish(ctx)
	assert.Equal(t, 15, ctx.Calculate())

	_, ok = bus.ScalarChannel(ChanDiceRolled)
	assert.False(t, ok)
	_, ok = bus.RollChannel(ChanDiceRerolled)
	assert.True(t, ok)
}
