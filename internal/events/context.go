package events

import "github.com/Lepied/DiceSoul-sub001/internal/dice"

// Formula is the calculation shared by every scalar context:
//
//	Final = (Base + FlatBonus) * Multiplier
//
// truncated toward zero. Base is set by the publisher before publication and
// must not be written by subscribers. FlatBonus, Multiplier and Cancelled
// belong to subscribers. Final is only written by Calculate, which the
// publisher calls after every subscriber has returned.
type Formula struct {
	Base       int
	FlatBonus  int
	Multiplier float64
	Final      int
	Cancelled  bool
}

func newFormula(base int) Formula {
	return Formula{Base: base, Multiplier: 1}
}

// Calculate computes and stores Final.
func (f *Formula) Calculate() int {
	f.Final = int(float64(f.Base+f.FlatBonus) * f.Multiplier)
	return f.Final
}

// Cancel vetoes the effect. The publisher must not apply Final afterwards.
func (f *Formula) Cancel() { f.Cancelled = true }

// IsCancelled reports whether a subscriber vetoed the effect.
func (f *Formula) IsCancelled() bool { return f.Cancelled }

// Reset restores the subscriber-owned fields so the context can be reused
// for another publication.
func (f *Formula) Reset() {
	f.FlatBonus = 0
	f.Multiplier = 1
	f.Final = 0
	f.Cancelled = false
}

// Terms exposes the embedded formula to generic modifiers.
func (f *Formula) Terms() *Formula { return f }

// Scalar is implemented by every context that embeds a Formula.
type Scalar interface {
	Terms() *Formula
	Facts() map[string]any
}

// RollContext is published on DiceRolled after a roll and on DiceRerolled
// after the reroll pass. DiceValues and DiceTypes are index-aligned with the
// hand. Subscribers may overwrite DiceValues[i], request rerolls and set
// CancelReroll; the publisher reads those back after the last subscriber.
type RollContext struct {
	DiceValues    []int
	DiceTypes     []dice.Type
	IsFirstRoll   bool
	RollCount     int
	RerollIndices []int
	CancelReroll  bool
}

// NewRollContext snapshots the given values and types.
func NewRollContext(values []int, types []dice.Type, rollCount int) *RollContext {
	return &RollContext{
		DiceValues:  append([]int(nil), values...),
		DiceTypes:   append([]dice.Type(nil), types...),
		IsFirstRoll: rollCount == 1,
		RollCount:   rollCount,
	}
}

// RequestReroll asks the publisher to reroll the die at index i.
func (c *RollContext) RequestReroll(i int) {
	c.RerollIndices = append(c.RerollIndices, i)
}

// Reset clears the subscriber-owned request fields.
func (c *RollContext) Reset() {
	c.RerollIndices = nil
	c.CancelReroll = false
}

// AttackContext carries an outgoing attack. Base is the damage the scored
// hand deals before relics.
type AttackContext struct {
	Formula
	DiceValues  []int
	UsedIndices []int
	HandRank    string
}

// NewAttackContext prepares an attack of base damage for the given hand.
func NewAttackContext(base int, values, used []int, rank string) *AttackContext {
	return &AttackContext{
		Formula:     newFormula(base),
		DiceValues:  append([]int(nil), values...),
		UsedIndices: append([]int(nil), used...),
		HandRank:    rank,
	}
}

func (c *AttackContext) Facts() map[string]any {
	return map[string]any{
		"values":    toInt64s(c.DiceValues),
		"used":      toInt64s(c.UsedIndices),
		"hand_rank": c.HandRank,
	}
}

// DamageContext carries damage about to be taken by the player.
type DamageContext struct {
	Formula
	Source string
}

func NewDamageContext(base int, source string) *DamageContext {
	return &DamageContext{Formula: newFormula(base), Source: source}
}

func (c *DamageContext) Facts() map[string]any {
	return map[string]any{"source": c.Source}
}

// HealContext carries healing about to be received by the player.
type HealContext struct {
	Formula
	Source string
}

func NewHealContext(base int, source string) *HealContext {
	return &HealContext{Formula: newFormula(base), Source: source}
}

func (c *HealContext) Facts() map[string]any {
	return map[string]any{"source": c.Source}
}

// GoldContext carries gold about to be gained.
type GoldContext struct {
	Formula
	Source string
}

func NewGoldContext(base int, source string) *GoldContext {
	return &GoldContext{Formula: newFormula(base), Source: source}
}

func (c *GoldContext) Facts() map[string]any {
	return map[string]any{"source": c.Source}
}

// WaveContext is published when a wave starts. Base is the gold reward for
// clearing it.
type WaveContext struct {
	Formula
	Zone int
	Wave int
}

func NewWaveContext(zone, wave, reward int) *WaveContext {
	return &WaveContext{Formula: newFormula(reward), Zone: zone, Wave: wave}
}

func (c *WaveContext) Facts() map[string]any {
	return map[string]any{"zone": int64(c.Zone), "wave": int64(c.Wave)}
}

// ZoneContext is published when a zone is entered. Base is the heal granted
// on entry.
type ZoneContext struct {
	Formula
	Zone int
}

func NewZoneContext(zone, heal int) *ZoneContext {
	return &ZoneContext{Formula: newFormula(heal), Zone: zone}
}

func (c *ZoneContext) Facts() map[string]any {
	return map[string]any{"zone": int64(c.Zone)}
}

// ShopContext carries a shop price. A negative FlatBonus is a discount.
type ShopContext struct {
	Formula
	ItemID string
}

func NewShopContext(itemID string, price int) *ShopContext {
	return &ShopContext{Formula: newFormula(price), ItemID: itemID}
}

func (c *ShopContext) Facts() map[string]any {
	return map[string]any{"item": c.ItemID}
}

// RelicContext is published before a relic joins the collection. Base is
// the number of stacks gained; cancelling it refuses the relic.
type RelicContext struct {
	Formula
	RelicID string
}

func NewRelicContext(relicID string) *RelicContext {
	return &RelicContext{Formula: newFormula(1), RelicID: relicID}
}

func (c *RelicContext) Facts() map[string]any {
	return map[string]any{"relic": c.RelicID}
}

// TurnContext announces the start of a turn. It is informational.
// MaxRolls is the budget before handlers run; the engine overwrites it with
// the settled budget once publication returns.
type TurnContext struct {
	Turn     int
	MaxRolls int
}

func toInt64s(xs []int) []any {
	out := make([]any, len(xs))
	for i, v := range xs {
		out[i] = int64(v)
	}
	return out
}
