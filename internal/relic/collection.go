package relic

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

type owned struct {
	relic  Relic
	stacks int
	subs   []events.Subscription
}

// Collection holds the relics of a run. It implements the engine's relic
// provider: roll bonuses are summed over owned relics, and preserve charges
// and bonus-roll grants refill whenever a turn starts.
type Collection struct {
	bus *events.Bus
	log *zap.Logger

	mu       sync.Mutex
	byID     map[string]*owned
	order    []string
	charges  int
	grants   int
	turnSub  events.Subscription
	attached bool
}

// NewCollection creates an empty collection bound to bus.
func NewCollection(bus *events.Bus, log *zap.Logger) *Collection {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collection{
		bus:  bus,
		log:  log.Named("relic"),
		byID: make(map[string]*owned),
	}
	c.turnSub = bus.TurnStarted.Subscribe(func(*events.TurnContext) error {
		c.Refill()
		return nil
	})
	c.attached = true
	return c
}

// Acquire offers r to the run. RelicAcquired is published first; a
// cancelled context refuses the relic, otherwise Final stacks are added.
// A relic is subscribed to the bus only once however many stacks it gains.
func (c *Collection) Acquire(r Relic) bool {
	rc := events.NewRelicContext(r.ID())
	c.bus.RelicAcquired.Publish(rc)
	stacks := rc.Calculate()
	if rc.IsCancelled() || stacks <= 0 {
		c.log.Info("relic refused", zap.String("relic", r.ID()))
		return false
	}
	c.add(r, stacks)
	return true
}

// Restore adds stacks of r that were already granted in an earlier session.
// RelicAcquired is not published again.
func (c *Collection) Restore(r Relic, stacks int) bool {
	if stacks <= 0 {
		return false
	}
	c.add(r, stacks)
	return true
}

func (c *Collection) add(r Relic, stacks int) {
	c.mu.Lock()
	o, existing := c.byID[r.ID()]
	if !existing {
		o = &owned{relic: r}
		c.byID[r.ID()] = o
		c.order = append(c.order, r.ID())
	}
	o.stacks += stacks
	total := o.stacks
	c.charges += perTurnCharges(r) * stacks
	c.grants += perTurnGrants(r) * stacks
	c.mu.Unlock()

	if s, ok := r.(Stackable); ok {
		s.SetStacks(total)
	}
	if !existing {
		subs := r.Subscribe(c.bus)
		c.mu.Lock()
		o.subs = subs
		c.mu.Unlock()
	}
	c.log.Info("relic acquired", zap.String("relic", r.ID()), zap.Int("stacks", total))
}

// Remove detaches every handler of the relic and drops it.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	o, ok := c.byID[id]
	if ok {
		delete(c.byID, id)
		for i, v := range c.order {
			if v == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	for _, s := range o.subs {
		c.bus.Unsubscribe(s)
	}
	return true
}

// Has reports whether the relic is owned.
func (c *Collection) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byID[id]
	return ok
}

// Stacks returns the number of copies owned.
func (c *Collection) Stacks(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.byID[id]; ok {
		return o.stacks
	}
	return 0
}

// IDs returns the owned relic IDs in acquisition order.
func (c *Collection) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Refill resets preserve charges and bonus-roll grants to their per-turn
// totals.
func (c *Collection) Refill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charges, c.grants = 0, 0
	for _, o := range c.byID {
		c.charges += perTurnCharges(o.relic) * o.stacks
		c.grants += perTurnGrants(o.relic) * o.stacks
	}
}

func (c *Collection) RollBonuses() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []int
	for _, id := range c.order {
		o := c.byID[id]
		if b, ok := o.relic.(RollBonus); ok && b.RollBonus() != 0 {
			out = append(out, b.RollBonus()*o.stacks)
		}
	}
	return out
}

func (c *Collection) HasPreserveCharge() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charges > 0
}

func (c *Collection) ConsumePreserveCharge() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.charges <= 0 {
		return false
	}
	c.charges--
	return true
}

func (c *Collection) GrantBonusRoll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grants <= 0 {
		return false
	}
	c.grants--
	c.log.Debug("bonus roll granted", zap.Int("left", c.grants))
	return true
}

// PreserveCharges returns the charges left this turn.
func (c *Collection) PreserveCharges() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charges
}

// Close detaches every relic and the collection itself from the bus.
func (c *Collection) Close() {
	for _, id := range c.IDs() {
		c.Remove(id)
	}
	c.mu.Lock()
	attached := c.attached
	c.attached = false
	c.mu.Unlock()
	if attached {
		c.bus.Unsubscribe(c.turnSub)
	}
}

func perTurnCharges(r Relic) int {
	if p, ok := r.(PreserveCharger); ok && p.PreserveCharges() > 0 {
		return p.PreserveCharges()
	}
	return 0
}

func perTurnGrants(r Relic) int {
	if b, ok := r.(BonusRoller); ok && b.BonusRolls() > 0 {
		return b.BonusRolls()
	}
	return 0
}
