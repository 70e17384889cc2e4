package relic

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/cel-go/cel"

	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

// Definition is a data-driven relic as it appears in the catalog.
type Definition struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Description     string      `yaml:"description"`
	RollBonus       int         `yaml:"roll_bonus"`
	PreserveCharges int         `yaml:"preserve_charges"`
	BonusRolls      int         `yaml:"bonus_rolls"`
	Effects         []EffectDef `yaml:"effects"`
}

// EffectDef binds a set of assignments to one bus channel. When is an
// optional boolean guard; Set maps a context field to the expression that
// produces its new value.
type EffectDef struct {
	On   string            `yaml:"on"`
	When string            `yaml:"when"`
	Set  map[string]string `yaml:"set"`
}

// Fields a scripted effect may assign.
const (
	FieldFlatBonus    = "flat_bonus"
	FieldMultiplier   = "multiplier"
	FieldCancelled    = "cancelled"
	FieldValues       = "values"
	FieldReroll       = "reroll"
	FieldCancelReroll = "cancel_reroll"
)

var (
	scalarFields = map[string]bool{FieldFlatBonus: true, FieldMultiplier: true, FieldCancelled: true}
	rollFields   = map[string]bool{FieldValues: true, FieldReroll: true, FieldCancelReroll: true}
)

type assignment struct {
	field string
	prg   cel.Program
}

type effect struct {
	on   string
	when cel.Program
	set  []assignment
}

// Scripted is a relic whose effects are CEL expressions compiled once from
// its definition.
type Scripted struct {
	def     Definition
	ev      *Evaluator
	effects []effect
	stacks  atomic.Int64
}

// NewScripted compiles every expression of def.
func NewScripted(def Definition, ev *Evaluator) (*Scripted, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("relic definition has no id")
	}
	s := &Scripted{def: def, ev: ev}
	s.stacks.Store(1)

	for i, ed := range def.Effects {
		allowed := scalarFields
		switch ed.On {
		case events.ChanDiceRolled, events.ChanDiceRerolled:
			allowed = rollFields
		case events.ChanAttack, events.ChanDamage, events.ChanHeal, events.ChanGold,
			events.ChanWaveStarted, events.ChanZoneStarted, events.ChanShopOpened, events.ChanRelicAcquired:
		default:
			return nil, fmt.Errorf("relic %s effect %d: %w %q", def.ID, i, ErrUnknownChannel, ed.On)
		}

		eff := effect{on: ed.On}
		if ed.When != "" {
			prg, err := ev.Compile(ed.When)
			if err != nil {
				return nil, fmt.Errorf("relic %s effect %d when: %w", def.ID, i, err)
			}
			eff.when = prg
		}

		// Assignments run in a fixed order so results do not depend on map
		// iteration.
		fields := make([]string, 0, len(ed.Set))
		for f := range ed.Set {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			if !allowed[f] {
				return nil, fmt.Errorf("relic %s effect %d: field %q cannot be set on %s", def.ID, i, f, ed.On)
			}
			prg, err := ev.Compile(ed.Set[f])
			if err != nil {
				return nil, fmt.Errorf("relic %s effect %d %s: %w", def.ID, i, f, err)
			}
			eff.set = append(eff.set, assignment{field: f, prg: prg})
		}
		s.effects = append(s.effects, eff)
	}
	return s, nil
}

func (s *Scripted) ID() string             { return s.def.ID }
func (s *Scripted) Definition() Definition { return s.def }
func (s *Scripted) RollBonus() int         { return s.def.RollBonus }
func (s *Scripted) PreserveCharges() int   { return s.def.PreserveCharges }
func (s *Scripted) BonusRolls() int        { return s.def.BonusRolls }
func (s *Scripted) SetStacks(n int)        { s.stacks.Store(int64(n)) }

func (s *Scripted) relicVars() map[string]any {
	return map[string]any{"id": s.def.ID, "stacks": s.stacks.Load()}
}

// Subscribe attaches one handler per effect.
func (s *Scripted) Subscribe(bus *events.Bus) []events.Subscription {
	var subs []events.Subscription
	for _, eff := range s.effects {
		if ch, ok := bus.RollChannel(eff.on); ok {
			subs = append(subs, ch.Subscribe(func(c *events.RollContext) error {
				return s.applyRoll(eff, c)
			}))
			continue
		}
		if sub, ok := bus.ScalarChannel(eff.on); ok {
			subs = append(subs, sub(func(c events.Scalar) error {
				return s.applyScalar(eff, c)
			}))
		}
	}
	return subs
}

func (s *Scripted) guard(eff effect, vars map[string]any) (bool, error) {
	if eff.when == nil {
		return true, nil
	}
	out, err := s.ev.Eval(eff.when, vars)
	if err != nil {
		return false, fmt.Errorf("relic %s: %w", s.def.ID, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("relic %s: guard returned %T, want bool", s.def.ID, out)
	}
	return ok, nil
}

func (s *Scripted) applyScalar(eff effect, c events.Scalar) error {
	f := c.Terms()
	vars := map[string]any{"ctx": scalarVars(c), "relic": s.relicVars()}
	ok, err := s.guard(eff, vars)
	if err != nil || !ok {
		return err
	}

	for _, a := range eff.set {
		out, err := s.ev.Eval(a.prg, vars)
		if err != nil {
			return fmt.Errorf("relic %s %s: %w", s.def.ID, a.field, err)
		}
		switch a.field {
		case FieldFlatBonus:
			n, ok := toInt(out)
			if !ok {
				return fmt.Errorf("relic %s: flat_bonus must be a number, got %T", s.def.ID, out)
			}
			f.FlatBonus = n
		case FieldMultiplier:
			x, ok := toFloat(out)
			if !ok {
				return fmt.Errorf("relic %s: multiplier must be a number, got %T", s.def.ID, out)
			}
			f.Multiplier = x
		case FieldCancelled:
			b, ok := out.(bool)
			if !ok {
				return fmt.Errorf("relic %s: cancelled must be a bool, got %T", s.def.ID, out)
			}
			if b {
				f.Cancel()
			}
		}
	}
	return nil
}

func (s *Scripted) applyRoll(eff effect, c *events.RollContext) error {
	vars := map[string]any{"ctx": rollVars(c), "relic": s.relicVars()}
	ok, err := s.guard(eff, vars)
	if err != nil || !ok {
		return err
	}

	for _, a := range eff.set {
		switch a.field {
		case FieldValues:
			values, err := s.ev.EvalInts(a.prg, vars)
			if err != nil {
				return fmt.Errorf("relic %s values: %w", s.def.ID, err)
			}
			for i := 0; i < len(values) && i < len(c.DiceValues); i++ {
				c.DiceValues[i] = values[i]
			}
		case FieldReroll:
			indices, err := s.ev.EvalInts(a.prg, vars)
			if err != nil {
				return fmt.Errorf("relic %s reroll: %w", s.def.ID, err)
			}
			for _, i := range indices {
				c.RequestReroll(i)
			}
		case FieldCancelReroll:
			out, err := s.ev.Eval(a.prg, vars)
			if err != nil {
				return fmt.Errorf("relic %s cancel_reroll: %w", s.def.ID, err)
			}
			if b, ok := out.(bool); ok && b {
				c.CancelReroll = true
			}
		}
	}
	return nil
}

func scalarVars(c events.Scalar) map[string]any {
	f := c.Terms()
	vars := c.Facts()
	vars["base"] = int64(f.Base)
	vars["flat_bonus"] = int64(f.FlatBonus)
	vars["multiplier"] = f.Multiplier
	vars["cancelled"] = f.Cancelled
	return vars
}

func rollVars(c *events.RollContext) map[string]any {
	values := make([]any, len(c.DiceValues))
	for i, v := range c.DiceValues {
		values[i] = int64(v)
	}
	types := make([]any, len(c.DiceTypes))
	for i, t := range c.DiceTypes {
		types[i] = string(t)
	}
	reroll := make([]any, len(c.RerollIndices))
	for i, v := range c.RerollIndices {
		reroll[i] = int64(v)
	}
	return map[string]any{
		"values":        values,
		"types":         types,
		"is_first_roll": c.IsFirstRoll,
		"roll_count":    int64(c.RollCount),
		"reroll":        reroll,
		"cancel_reroll": c.CancelReroll,
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
