// Package resolve publishes calculation contexts and commits their finals
// to the run's ledger.
package resolve

import (
	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

// Ledger is the game state the resolver writes to.
type Ledger interface {
	DamageEnemy(n int)
	TakeDamage(n int)
	Heal(n int)
	AddGold(n int)
	SpendGold(n int) bool
}

// Resolver owns one publish cycle per call: it builds the context, publishes
// it, calculates the final and applies it unless a subscriber cancelled it.
// Finals of zero or less are never applied.
type Resolver struct {
	bus    *events.Bus
	ledger Ledger
	log    *zap.Logger
}

func New(bus *events.Bus, ledger Ledger, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{bus: bus, ledger: ledger, log: log.Named("resolve")}
}

// settle calculates f and reports whether its final should be applied.
func (r *Resolver) settle(kind string, f *events.Formula) bool {
	final := f.Calculate()
	if f.IsCancelled() {
		r.log.Debug("effect cancelled", zap.String("kind", kind), zap.Int("base", f.Base))
		return false
	}
	r.log.Debug("effect resolved", zap.String("kind", kind),
		zap.Int("base", f.Base), zap.Int("flat_bonus", f.FlatBonus),
		zap.Float64("multiplier", f.Multiplier), zap.Int("final", final))
	return final > 0
}

// Attack deals the scored hand's damage to the enemy.
func (r *Resolver) Attack(base int, values, used []int, rank string) (*events.AttackContext, bool) {
	ctx := events.NewAttackContext(base, values, used, rank)
	r.bus.Attack.Publish(ctx)
	if !r.settle("attack", &ctx.Formula) {
		return ctx, false
	}
	r.ledger.DamageEnemy(ctx.Final)
	return ctx, true
}

// Damage hits the player.
func (r *Resolver) Damage(base int, source string) (*events.DamageContext, bool) {
	ctx := events.NewDamageContext(base, source)
	r.bus.Damage.Publish(ctx)
	if !r.settle("damage", &ctx.Formula) {
		return ctx, false
	}
	r.ledger.TakeDamage(ctx.Final)
	return ctx, true
}

// Heal restores player health.
func (r *Resolver) Heal(base int, source string) (*events.HealContext, bool) {
	ctx := events.NewHealContext(base, source)
	r.bus.Heal.Publish(ctx)
	if !r.settle("heal", &ctx.Formula) {
		return ctx, false
	}
	r.ledger.Heal(ctx.Final)
	return ctx, true
}

// Gold grants gold.
func (r *Resolver) Gold(base int, source string) (*events.GoldContext, bool) {
	ctx := events.NewGoldContext(base, source)
	r.bus.Gold.Publish(ctx)
	if !r.settle("gold", &ctx.Formula) {
		return ctx, false
	}
	r.ledger.AddGold(ctx.Final)
	return ctx, true
}

// StartWave announces a wave. The returned context carries the clear
// reward after modifiers; pass it to ClearWave once the wave is beaten.
func (r *Resolver) StartWave(zone, wave, reward int) *events.WaveContext {
	ctx := events.NewWaveContext(zone, wave, reward)
	r.bus.WaveStarted.Publish(ctx)
	ctx.Calculate()
	return ctx
}

// ClearWave pays out a wave's reward through the gold channel.
func (r *Resolver) ClearWave(w *events.WaveContext) (*events.GoldContext, bool) {
	if w == nil || w.IsCancelled() || w.Final <= 0 {
		return nil, false
	}
	return r.Gold(w.Final, "wave")
}

// EnterZone announces a zone and applies the entry heal directly.
func (r *Resolver) EnterZone(zone, heal int) (*events.ZoneContext, bool) {
	ctx := events.NewZoneContext(zone, heal)
	r.bus.ZoneStarted.Publish(ctx)
	if !r.settle("zone", &ctx.Formula) {
		return ctx, false
	}
	r.ledger.Heal(ctx.Final)
	return ctx, true
}

// Buy prices an item through the shop channel and spends the gold. A
// cancelled context or an unaffordable price refuses the purchase; a price
// reduced to zero or less is free.
func (r *Resolver) Buy(item string, price int) (*events.ShopContext, bool) {
	ctx := events.NewShopContext(item, price)
	r.bus.ShopOpened.Publish(ctx)
	final := ctx.Calculate()
	if ctx.IsCancelled() {
		return ctx, false
	}
	if final <= 0 {
		return ctx, true
	}
	return ctx, r.ledger.SpendGold(final)
}
