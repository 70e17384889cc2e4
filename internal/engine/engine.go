package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/events"
)

// Config holds the externally supplied rules of the hand.
type Config struct {
	BaseMaxRolls int
	Faces        dice.FaceTable
	HandSpacing  float64
}

// DefaultConfig returns the stock three-roll configuration.
func DefaultConfig() Config {
	return Config{BaseMaxRolls: 3, Faces: dice.DefaultFaces(), HandSpacing: 1.5}
}

// Option configures an Engine.
type Option func(*Engine)

// WithPresenter sets the view mirroring hand mutations.
func WithPresenter(p Presenter) Option {
	return func(e *Engine) {
		if p != nil {
			e.presenter = p
		}
	}
}

// WithRelics sets the provider of roll bonuses and preserve charges.
func WithRelics(r RelicProvider) Option {
	return func(e *Engine) {
		if r != nil {
			e.relics = r
		}
	}
}

// WithConsumer sets the receiver of finalized hands.
func WithConsumer(c HandConsumer) Option {
	return func(e *Engine) {
		if c != nil {
			e.consumer = c
		}
	}
}

// WithShield sets the flag a new roll clears.
func WithShield(s Shield) Option {
	return func(e *Engine) {
		if s != nil {
			e.shield = s
		}
	}
}

// WithPacer sets the pause between roll phases.
func WithPacer(p Pacer) Option {
	return func(e *Engine) {
		if p != nil {
			e.pacer = p
		}
	}
}

// WithRoller sets the source of die faces.
func WithRoller(r dice.Roller) Option {
	return func(e *Engine) {
		if r != nil {
			e.roller = r
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine owns the active hand and runs the roll protocol for a turn.
//
// mu guards the hand and the counters. It is never held while the bus or a
// collaborator runs, so handlers may read the engine freely. rolling is set
// under mu and gates every hand mutation while a sequence is in flight.
type Engine struct {
	bus *events.Bus
	cfg Config

	presenter Presenter
	relics    RelicProvider
	consumer  HandConsumer
	shield    Shield
	pacer     Pacer
	roller    dice.Roller
	log       *zap.Logger

	mu        sync.Mutex
	hand      []*dice.Die
	rollCount int
	maxRolls  int
	turn      int
	rolling   atomic.Bool
}

// New builds an engine publishing on bus. Missing collaborators are
// replaced by no-ops.
func New(bus *events.Bus, cfg Config, opts ...Option) *Engine {
	if bus == nil {
		bus = events.NewBus(nil)
	}
	if cfg.BaseMaxRolls < 0 {
		cfg.BaseMaxRolls = 0
	}
	if cfg.Faces == nil {
		cfg.Faces = dice.DefaultFaces()
	}
	e := &Engine{
		bus:       bus,
		cfg:       cfg,
		presenter: nopPresenter{},
		relics:    nopRelics{},
		consumer:  nopConsumer{},
		shield:    nopShield{},
		pacer:     nopPacer{},
		roller:    dice.DefaultRoller(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("engine")
	e.maxRolls = cfg.BaseMaxRolls
	return e
}

// Bus returns the bus the engine publishes on.
func (e *Engine) Bus() *events.Bus { return e.bus }

func (e *Engine) budget() int {
	limit := e.cfg.BaseMaxRolls
	for _, b := range e.relics.RollBonuses() {
		limit += b
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

// DealHand replaces the hand with one fresh die per deck entry. Entries
// whose type has no face count are skipped. It does nothing and returns
// false when no die could be dealt or a roll is in flight.
func (e *Engine) DealHand(deck []dice.Type) bool {
	if len(deck) == 0 || e.rolling.Load() {
		return false
	}
	hand := make([]*dice.Die, 0, len(deck))
	for _, t := range deck {
		faces, ok := e.cfg.Faces.Faces(t)
		if !ok {
			e.log.Warn("unknown dice type skipped", zap.String("type", string(t)))
			continue
		}
		hand = append(hand, dice.New(t, faces, e.roller))
	}
	if len(hand) == 0 {
		return false
	}
	limit := e.budget()

	e.mu.Lock()
	if e.rolling.Load() {
		e.mu.Unlock()
		return false
	}
	e.hand = hand
	e.rollCount = 0
	e.maxRolls = limit
	values := e.valuesLocked()
	positions := e.positionsLocked()
	e.mu.Unlock()

	for i, v := range values {
		e.presenter.DiceStateChanged(i, dice.Normal)
		e.presenter.DiceValueChanged(i, v)
	}
	e.presenter.HandRepositioned(positions)
	e.log.Debug("hand dealt", zap.Int("dice", len(values)), zap.Int("max_rolls", limit))
	return true
}

// PrepareNewTurn starts the next turn: the roll counter resets, timed locks
// tick down, the budget is recomputed and TurnStarted is published.
func (e *Engine) PrepareNewTurn() bool {
	limit := e.budget()

	e.mu.Lock()
	if e.rolling.Load() {
		e.mu.Unlock()
		return false
	}
	e.rollCount = 0
	e.maxRolls = limit
	e.turn++
	turn := e.turn
	var expired []int
	for i, d := range e.hand {
		if d.TickLock() {
			expired = append(expired, i)
		}
	}
	e.mu.Unlock()

	for _, i := range expired {
		e.presenter.DiceStateChanged(i, dice.Normal)
	}
	tc := &events.TurnContext{Turn: turn, MaxRolls: limit}
	e.bus.TurnStarted.Publish(tc)

	// Relics refill on TurnStarted and may change the bonus list.
	if after := e.budget(); after != limit {
		e.mu.Lock()
		e.maxRolls = after
		e.mu.Unlock()
		tc.MaxRolls = after
	}
	if o, ok := e.consumer.(TurnObserver); ok {
		o.TurnPrepared(turn, tc.MaxRolls)
	}
	return true
}

// EndTurn closes the current turn and prepares the next one.
func (e *Engine) EndTurn() bool {
	return e.PrepareNewTurn()
}

// Result describes one completed roll sequence.
type Result struct {
	Values       []int
	RollCount    int
	MaxRolls     int
	IsFirstRoll  bool
	Rerolled     []int
	BonusGranted bool
}

// RequestRoll runs one roll sequence. It returns false without touching any
// die when a roll is already in flight, when no hand is dealt, or when the
// budget is spent and no relic grants a bonus roll. ctx only shortens the
// presentation pauses; the sequence always completes once started.
func (e *Engine) RequestRoll(ctx context.Context) (Result, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	if len(e.hand) == 0 || !e.rolling.CompareAndSwap(false, true) {
		e.mu.Unlock()
		return Result{}, false
	}
	exhausted := e.rollCount >= e.maxRolls
	e.mu.Unlock()
	defer e.rolling.Store(false)

	res := Result{}
	if exhausted {
		if !e.relics.GrantBonusRoll() {
			e.log.Debug("roll rejected, budget exhausted")
			return Result{}, false
		}
		res.BonusGranted = true
	}

	e.mu.Lock()
	if res.BonusGranted {
		e.maxRolls++
	}
	e.rollCount++
	res.RollCount = e.rollCount
	res.MaxRolls = e.maxRolls
	res.IsFirstRoll = e.rollCount == 1
	e.mu.Unlock()

	e.shield.ClearShield()
	e.pacer.Pause(ctx, PhaseSpin)

	e.mu.Lock()
	var rolled []int
	for i, d := range e.hand {
		if d.CanReroll() {
			d.Roll(e.roller)
			rolled = append(rolled, i)
		}
	}
	values := e.valuesLocked()
	types := e.typesLocked()
	e.mu.Unlock()
	e.reportValues(rolled, values)

	rc := events.NewRollContext(values, types, res.RollCount)
	e.bus.DiceRolled.Publish(rc)
	values = e.applyTransforms(values, rc.DiceValues)

	if len(rc.RerollIndices) > 0 && !rc.CancelReroll {
		e.pacer.Pause(ctx, PhaseReroll)
		res.Rerolled = e.reroll(rc.RerollIndices)

		e.mu.Lock()
		values = e.valuesLocked()
		e.mu.Unlock()

		second := events.NewRollContext(values, types, res.RollCount)
		e.bus.DiceRerolled.Publish(second)
		if len(second.RerollIndices) > 0 {
			e.log.Debug("reroll requests after reroll pass ignored", zap.Ints("indices", second.RerollIndices))
		}
		values = e.applyTransforms(values, second.DiceValues)
	}

	res.Values = values
	e.consumer.HandResolved(append([]int(nil), values...))
	return res, true
}

// applyTransforms copies published values back onto the hand for every
// index a handler changed. Only Normal dice accept a new value and only
// within their face range.
func (e *Engine) applyTransforms(before, published []int) []int {
	e.mu.Lock()
	var changed []int
	for i, d := range e.hand {
		if i >= len(published) || i >= len(before) || published[i] == before[i] {
			continue
		}
		if !d.CanReroll() {
			e.log.Warn("value transform on held die ignored", zap.Int("index", i))
			continue
		}
		if !d.UpdateValue(published[i]) {
			e.log.Warn("value transform out of range ignored",
				zap.Int("index", i), zap.Int("value", published[i]))
			continue
		}
		changed = append(changed, i)
	}
	values := e.valuesLocked()
	e.mu.Unlock()

	e.reportValues(changed, values)
	return values
}

// reroll draws once more for each distinct, in-range Normal index.
func (e *Engine) reroll(indices []int) []int {
	e.mu.Lock()
	seen := make(map[int]bool, len(indices))
	var done []int
	for _, i := range indices {
		if seen[i] {
			continue
		}
		seen[i] = true
		if i < 0 || i >= len(e.hand) {
			e.log.Warn("reroll index out of range", zap.Int("index", i))
			continue
		}
		if !e.hand[i].CanReroll() {
			continue
		}
		e.hand[i].Roll(e.roller)
		done = append(done, i)
	}
	values := e.valuesLocked()
	e.mu.Unlock()

	e.reportValues(done, values)
	return done
}

func (e *Engine) reportValues(indices, values []int) {
	for _, i := range indices {
		e.presenter.DiceValueChanged(i, values[i])
	}
}

func (e *Engine) valuesLocked() []int {
	out := make([]int, len(e.hand))
	for i, d := range e.hand {
		out[i] = d.Value()
	}
	return out
}

func (e *Engine) typesLocked() []dice.Type {
	out := make([]dice.Type, len(e.hand))
	for i, d := range e.hand {
		out[i] = d.Type()
	}
	return out
}

func (e *Engine) positionsLocked() []float64 {
	n := len(e.hand)
	out := make([]float64, n)
	for i := range out {
		out[i] = (float64(i) - float64(n-1)/2) * e.cfg.HandSpacing
	}
	return out
}

// Values returns the current hand values.
func (e *Engine) Values() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.valuesLocked()
}

// Len returns the number of dice in hand.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.hand)
}

func (e *Engine) RollCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollCount
}

func (e *Engine) MaxRolls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxRolls
}

// Turn returns the number of turns started so far.
func (e *Engine) Turn() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

// IsRolling reports whether a roll sequence is in flight.
func (e *Engine) IsRolling() bool { return e.rolling.Load() }
