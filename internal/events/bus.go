package events

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Handler reacts to a publication. It may mutate the context it receives.
// A returned error is logged and does not stop the remaining handlers.
type Handler[T any] func(ctx T) error

type entry[T any] struct {
	id uint64
	fn Handler[T]
}

// Channel is a single typed event channel with ordered fan-out.
type Channel[T any] struct {
	name string
	log  *zap.Logger
	seq  *atomic.Uint64

	mu       sync.RWMutex
	handlers []entry[T]
}

func newChannel[T any](name string, log *zap.Logger, seq *atomic.Uint64) *Channel[T] {
	return &Channel[T]{name: name, log: log, seq: seq}
}

// Name returns the channel identifier used in logs and relic catalogs.
func (c *Channel[T]) Name() string { return c.name }

// Subscribe appends fn to the channel. Handlers run in subscription order.
func (c *Channel[T]) Subscribe(fn Handler[T]) Subscription {
	if fn == nil {
		return Subscription{}
	}
	id := c.seq.Add(1)
	c.mu.Lock()
	c.handlers = append(c.handlers, entry[T]{id: id, fn: fn})
	c.mu.Unlock()
	return Subscription{id: id, from: c}
}

func (c *Channel[T]) remove(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.handlers {
		if e.id == id {
			c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of subscribed handlers.
func (c *Channel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// Clear drops every handler on the channel.
func (c *Channel[T]) Clear() {
	c.mu.Lock()
	c.handlers = nil
	c.mu.Unlock()
}

// Publish passes ctx to every handler subscribed at the moment of the call,
// synchronously and in order. Each handler sees the writes of the handlers
// that ran before it. Handlers must not publish on the channel they were
// invoked from.
func (c *Channel[T]) Publish(ctx T) {
	c.mu.RLock()
	snapshot := make([]entry[T], len(c.handlers))
	copy(snapshot, c.handlers)
	c.mu.RUnlock()

	for _, e := range snapshot {
		if err := c.invoke(e, ctx); err != nil {
			c.log.Warn("event handler failed",
				zap.String("channel", c.name),
				zap.Uint64("subscription", e.id),
				zap.Error(err))
		}
	}
}

func (c *Channel[T]) invoke(e entry[T], ctx T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return e.fn(ctx)
}

type remover interface {
	remove(id uint64) bool
}

// Subscription identifies one handler on one channel. The zero value is
// valid and refers to nothing.
type Subscription struct {
	id   uint64
	from remover
}

// Valid reports whether the subscription refers to a handler.
func (s Subscription) Valid() bool { return s.from != nil }

// Bus is the set of typed channels a session publishes on. It is created by
// the session root and passed to every publisher and subscriber.
type Bus struct {
	DiceRolled    *Channel[*RollContext]
	DiceRerolled  *Channel[*RollContext]
	Attack        *Channel[*AttackContext]
	Damage        *Channel[*DamageContext]
	Heal          *Channel[*HealContext]
	Gold          *Channel[*GoldContext]
	WaveStarted   *Channel[*WaveContext]
	ZoneStarted   *Channel[*ZoneContext]
	ShopOpened    *Channel[*ShopContext]
	RelicAcquired *Channel[*RelicContext]
	TurnStarted   *Channel[*TurnContext]

	clearers []func()
}

// Channel names as they appear in logs and relic catalogs.
const (
	ChanDiceRolled    = "dice_rolled"
	ChanDiceRerolled  = "dice_rerolled"
	ChanAttack        = "attack"
	ChanDamage        = "damage"
	ChanHeal          = "heal"
	ChanGold          = "gold"
	ChanWaveStarted   = "wave_started"
	ChanZoneStarted   = "zone_started"
	ChanShopOpened    = "shop_opened"
	ChanRelicAcquired = "relic_acquired"
	ChanTurnStarted   = "turn_started"
)

// NewBus creates an empty bus. A nil logger discards handler failures.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("events")
	seq := new(atomic.Uint64)

	b := &Bus{
		DiceRolled:    newChannel[*RollContext](ChanDiceRolled, log, seq),
		DiceRerolled:  newChannel[*RollContext](ChanDiceRerolled, log, seq),
		Attack:        newChannel[*AttackContext](ChanAttack, log, seq),
		Damage:        newChannel[*DamageContext](ChanDamage, log, seq),
		Heal:          newChannel[*HealContext](ChanHeal, log, seq),
		Gold:          newChannel[*GoldContext](ChanGold, log, seq),
		WaveStarted:   newChannel[*WaveContext](ChanWaveStarted, log, seq),
		ZoneStarted:   newChannel[*ZoneContext](ChanZoneStarted, log, seq),
		ShopOpened:    newChannel[*ShopContext](ChanShopOpened, log, seq),
		RelicAcquired: newChannel[*RelicContext](ChanRelicAcquired, log, seq),
		TurnStarted:   newChannel[*TurnContext](ChanTurnStarted, log, seq),
	}
	b.clearers = []func(){
		b.DiceRolled.Clear, b.DiceRerolled.Clear, b.Attack.Clear, b.Damage.Clear,
		b.Heal.Clear, b.Gold.Clear, b.WaveStarted.Clear, b.ZoneStarted.Clear,
		b.ShopOpened.Clear, b.RelicAcquired.Clear, b.TurnStarted.Clear,
	}
	return b
}

// Unsubscribe removes the handler behind sub. Unknown or already removed
// subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	if sub.from == nil {
		return
	}
	sub.from.remove(sub.id)
}

// ClearAll drops every subscriber on every channel. Call it when a session
// is torn down so stale handlers never fire into the next one.
func (b *Bus) ClearAll() {
	for _, fn := range b.clearers {
		fn()
	}
}

// ScalarChannel returns a subscribe function for the named calculation
// channel, so generic modifiers can attach to it without knowing its
// concrete context type.
func (b *Bus) ScalarChannel(name string) (func(Handler[Scalar]) Subscription, bool) {
	switch name {
	case ChanAttack:
		return adapt(b.Attack), true
	case ChanDamage:
		return adapt(b.Damage), true
	case ChanHeal:
		return adapt(b.Heal), true
	case ChanGold:
		return adapt(b.Gold), true
	case ChanWaveStarted:
		return adapt(b.WaveStarted), true
	case ChanZoneStarted:
		return adapt(b.ZoneStarted), true
	case ChanShopOpened:
		return adapt(b.ShopOpened), true
	case ChanRelicAcquired:
		return adapt(b.RelicAcquired), true
	}
	return nil, false
}

// RollChannel returns the named dice channel.
func (b *Bus) RollChannel(name string) (*Channel[*RollContext], bool) {
	switch name {
	case ChanDiceRolled:
		return b.DiceRolled, true
	case ChanDiceRerolled:
		return b.DiceRerolled, true
	}
	return nil, false
}

func adapt[T Scalar](c *Channel[T]) func(Handler[Scalar]) Subscription {
	return func(fn Handler[Scalar]) Subscription {
		return c.Subscribe(func(ctx T) error { return fn(ctx) })
	}
}
