package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/config"
	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/engine"
	"github.com/Lepied/DiceSoul-sub001/internal/events"
	"github.com/Lepied/DiceSoul-sub001/internal/game"
	"github.com/Lepied/DiceSoul-sub001/internal/journal"
	"github.com/Lepied/DiceSoul-sub001/internal/parser"
	"github.com/Lepied/DiceSoul-sub001/internal/relic"
	"github.com/Lepied/DiceSoul-sub001/internal/resolve"
)

// Store defines the dependency required by Session to persist events
type Store interface {
	Append(evt journal.Event) error
	Load() ([]journal.Event, error)
}

// Outcome is what a UI client shows after a command.
type Outcome struct {
	Messages []string
	// Status asks the client to render View.
	Status bool
	Quit   bool
}

func (o *Outcome) say(format string, args ...any) {
	o.Messages = append(o.Messages, fmt.Sprintf(format, args...))
}

// Option configures a Session.
type Option func(*Session)

// WithPresenter mirrors hand mutations to a UI.
func WithPresenter(p engine.Presenter) Option {
	return func(s *Session) { s.presenter = p }
}

// WithPacer overrides the configured roll pacing.
func WithPacer(p engine.Pacer) Option {
	return func(s *Session) { s.pacer = p }
}

// WithRoller overrides the configured die roller.
func WithRoller(r dice.Roller) Option {
	return func(s *Session) { s.roller = r }
}

// WithLogger sets the logger shared by the session and its engine.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRunID names a new run. Resumed runs keep the ID from their log.
func WithRunID(id string) Option {
	return func(s *Session) { s.runID = id }
}

// Session manages the loop of taking commands, driving the hand engine and
// the resolvers, and appending the outcome to the run log.
type Session struct {
	cfg       *config.Config
	store     Store
	log       *zap.Logger
	presenter engine.Presenter
	pacer     engine.Pacer
	roller    dice.Roller
	runID     string

	bus      *events.Bus
	engine   *engine.Engine
	relics   *relic.Collection
	catalog  *relic.Catalog
	resolver *resolve.Resolver
	player   *game.Player
	recorder *journal.Recorder

	// mu guards the wave tracking below; View may run beside Execute.
	mu   sync.Mutex
	zone int
	wave int
	// fight is the active wave, nil between waves.
	fight *events.WaveContext
}

// New bootstraps a session. An empty store starts a new run; otherwise the
// log is replayed to restore the ledger, the relics and the dealt dice.
func New(cfg *config.Config, store Store, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.roller == nil {
		s.roller = cfg.Roller()
	}
	if s.pacer == nil {
		s.pacer = cfg.Pacer()
	}

	ev, err := relic.NewEvaluator(s.roller)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize relic scripts: %w", err)
	}
	s.catalog = relic.NewCatalog(cfg.RelicDirs, ev)

	history, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load event log: %w", err)
	}
	state, err := journal.NewProjector().Build(history)
	if err != nil {
		return nil, fmt.Errorf("failed to project run state: %w", err)
	}

	s.bus = events.NewBus(s.log)
	s.relics = relic.NewCollection(s.bus, s.log)
	s.recorder = journal.NewRecorder(store, s.log)

	if len(history) == 0 {
		if s.runID == "" {
			s.runID = uuid.NewString()
		}
		s.player = game.NewPlayer(cfg.Player.Health, cfg.Player.Gold, 0)
		s.recorder.Record(&journal.RunStartedEvent{
			RunID:     s.runID,
			Seed:      cfg.Seed,
			Health:    cfg.Player.Health,
			Gold:      cfg.Player.Gold,
			MaxRolls:  cfg.BaseMaxRolls,
			StartedAt: time.Now().UTC().Format(time.RFC3339),
		})
	} else {
		s.runID = state.RunID
		s.player = game.NewPlayer(state.MaxHealth, state.Gold, 0)
		if lost := state.MaxHealth - state.Health; lost > 0 {
			s.player.TakeDamage(lost)
		}
	}

	engineOpts := []engine.Option{
		engine.WithRelics(s.relics),
		engine.WithConsumer(s.recorder),
		engine.WithShield(s.player),
		engine.WithPacer(s.pacer),
		engine.WithRoller(s.roller),
		engine.WithLogger(s.log),
	}
	if s.presenter != nil {
		engineOpts = append(engineOpts, engine.WithPresenter(s.presenter))
	}
	s.engine = engine.New(s.bus, cfg.Engine(), engineOpts...)
	s.resolver = resolve.New(s.bus, s.player, s.log)

	if len(history) > 0 {
		s.restore(state)
	}
	return s, nil
}

// restore re-attaches the logged relics in acquisition order with their
// logged stacks, and re-deals the logged dice. Dealt dice get fresh values,
// which are recorded as a new hand.
func (s *Session) restore(state *journal.RunState) {
	for _, id := range state.RelicOrder {
		r, err := s.catalog.Load(id)
		if err != nil {
			s.log.Warn("logged relic could not be restored", zap.String("relic", id), zap.Error(err))
			continue
		}
		s.relics.Restore(r, state.Relics[id])
	}
	if len(state.Dice) > 0 {
		deck := make([]dice.Type, len(state.Dice))
		for i, t := range state.Dice {
			deck[i] = dice.Type(t)
		}
		s.deal(deck)
	}
	s.log.Info("run restored", zap.String("run_id", s.runID),
		zap.Int("relics", len(state.RelicOrder)), zap.Int("dice", len(state.Dice)))
}

// Close detaches every bus handler the session installed.
func (s *Session) Close() {
	s.relics.Close()
	s.bus.ClearAll()
}

func (s *Session) RunID() string           { return s.runID }
func (s *Session) Engine() *engine.Engine  { return s.engine }
func (s *Session) Bus() *events.Bus        { return s.bus }
func (s *Session) Catalog() *relic.Catalog { return s.catalog }

// View is a read-only picture of the run for status rendering.
type View struct {
	RunID    string
	Hand     engine.Snapshot
	Player   game.Status
	Relics   map[string]int
	Charges  int
	Zone     int
	Wave     int
	Fighting bool
}

func (s *Session) View() View {
	v := View{
		RunID:   s.runID,
		Hand:    s.engine.Snapshot(),
		Player:  s.player.Status(),
		Relics:  make(map[string]int),
		Charges: s.relics.PreserveCharges(),
	}
	s.mu.Lock()
	v.Zone, v.Wave, v.Fighting = s.zone, s.wave, s.fight != nil
	s.mu.Unlock()
	for _, id := range s.relics.IDs() {
		v.Relics[id] = s.relics.Stacks(id)
	}
	return v
}

// Execute parses one line and applies it.
func (s *Session) Execute(ctx context.Context, input string) (Outcome, error) {
	cmd, err := parser.Parse(input)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	switch {
	case cmd.Deal != nil:
		deck, err := dice.ParseDeck(strings.Join(cmd.Deal.Deck, " "))
		if err != nil {
			return out, err
		}
		if !s.deal(deck) {
			return out, errors.New("no dice could be dealt")
		}
		out.say("Dealt %d dice: %v", s.engine.Len(), s.engine.Values())
	case cmd.Roll != nil:
		return s.roll(ctx)
	case cmd.Keep != nil:
		n := s.engine.Keep(cmd.Keep.Indices...)
		out.say("Toggled the lock on %d dice.", n)
	case cmd.Lock != nil:
		if !s.engine.Lock(cmd.Lock.Index, cmd.Lock.Turns) {
			return out, fmt.Errorf("die %d cannot be locked", cmd.Lock.Index)
		}
		if cmd.Lock.Turns > 0 {
			out.say("Die %d locked for %d turns.", cmd.Lock.Index, cmd.Lock.Turns)
		} else {
			out.say("Die %d locked.", cmd.Lock.Index)
		}
	case cmd.Unlock != nil:
		n := 0
		for _, i := range cmd.Unlock.Indices {
			if s.engine.Unlock(i) {
				n++
			}
		}
		out.say("Unlocked %d dice.", n)
	case cmd.Preserve != nil:
		if !s.engine.Preserve(cmd.Preserve.Index) {
			return out, fmt.Errorf("die %d cannot be preserved (charges left: %d)", cmd.Preserve.Index, s.relics.PreserveCharges())
		}
		out.say("Die %d preserved.", cmd.Preserve.Index)
	case cmd.Restore != nil:
		if !s.engine.Restore(cmd.Restore.Index) {
			return out, fmt.Errorf("die %d is not preserved", cmd.Restore.Index)
		}
		out.say("Die %d restored.", cmd.Restore.Index)
	case cmd.Remove != nil:
		n := s.remove(cmd.Remove.Indices)
		out.say("Removed %d dice.", n)
	case cmd.End != nil:
		if !s.engine.EndTurn() {
			return out, errors.New("cannot end the turn while dice are rolling")
		}
		out.say("Turn %d begins with %d rolls.", s.engine.Turn(), s.engine.MaxRolls())
	case cmd.Attack != nil:
		return s.attack(cmd.Attack)
	case cmd.Damage != nil:
		source := cmd.Damage.Source
		if source == "" {
			source = "enemy"
		}
		s.track(source, func() { s.resolveDamage(&out, cmd.Damage.Amount, source) })
		if s.player.Dead() {
			out.say("You have fallen.")
		}
	case cmd.Heal != nil:
		s.track("heal", func() {
			if c, ok := s.resolver.Heal(cmd.Heal.Amount, "command"); ok {
				out.say("Healed %d.", c.Final)
			} else {
				out.say("The heal fizzled.")
			}
		})
	case cmd.Gold != nil:
		s.track("command", func() {
			if c, ok := s.resolver.Gold(cmd.Gold.Amount, "command"); ok {
				out.say("Gained %d gold.", c.Final)
			} else {
				out.say("No gold gained.")
			}
		})
	case cmd.Buy != nil:
		var bought bool
		var c *events.ShopContext
		s.track("shop:"+cmd.Buy.Item, func() { c, bought = s.resolver.Buy(cmd.Buy.Item, cmd.Buy.Price) })
		if !bought {
			return out, fmt.Errorf("cannot buy %s for %d gold (have %d)", cmd.Buy.Item, c.Final, s.player.Status().Gold)
		}
		out.say("Bought %s for %d gold.", cmd.Buy.Item, max(c.Final, 0))
	case cmd.Relic != nil:
		r, err := s.catalog.Load(cmd.Relic.ID)
		if err != nil {
			return out, err
		}
		before := s.relics.Stacks(r.ID())
		if !s.relics.Acquire(r) {
			return out, fmt.Errorf("relic %s was refused", r.ID())
		}
		s.recorder.Record(&journal.RelicAcquiredEvent{RelicID: r.ID(), Stacks: s.relics.Stacks(r.ID()) - before})
		name := r.Definition().Name
		if name == "" {
			name = r.ID()
		}
		out.say("Acquired %s (x%d).", name, s.relics.Stacks(r.ID()))
	case cmd.Wave != nil:
		s.mu.Lock()
		s.wave++
		zone, wave := s.zone, s.wave
		s.mu.Unlock()
		s.player.SetEnemy(cmd.Wave.EnemyHealth)
		fight := s.resolver.StartWave(zone, wave, cmd.Wave.Reward)
		s.mu.Lock()
		s.fight = fight
		s.mu.Unlock()
		out.say("Wave %d of zone %d: enemy has %d health, reward %d gold.", wave, zone, cmd.Wave.EnemyHealth, fight.Final)
	case cmd.Zone != nil:
		s.mu.Lock()
		s.zone, s.wave, s.fight = cmd.Zone.Zone, 0, nil
		s.mu.Unlock()
		s.track("zone", func() {
			if c, ok := s.resolver.EnterZone(cmd.Zone.Zone, cmd.Zone.Heal); ok {
				out.say("Entered zone %d and healed %d.", cmd.Zone.Zone, c.Final)
			} else {
				out.say("Entered zone %d.", cmd.Zone.Zone)
			}
		})
	case cmd.Shield != nil:
		s.player.RaiseShield()
		out.say("Shield raised until the next roll.")
	case cmd.Status != nil:
		out.Status = true
	case cmd.Help != nil:
		out.Messages = append(out.Messages, helpLines()...)
	case cmd.Quit != nil:
		out.Quit = true
	default:
		return out, errors.New("unsupported command pattern")
	}
	return out, nil
}

func (s *Session) deal(deck []dice.Type) bool {
	if !s.engine.DealHand(deck) {
		return false
	}
	snap := s.engine.Snapshot()
	types := make([]string, len(snap.Dice))
	values := make([]int, len(snap.Dice))
	for i, d := range snap.Dice {
		types[i], values[i] = string(d.Type), d.Value
	}
	s.recorder.Record(&journal.HandDealtEvent{Dice: types, Values: values, MaxRolls: snap.MaxRolls})
	return true
}

func (s *Session) remove(indices []int) int {
	n := len(s.engine.Values())
	seen := make(map[int]bool, len(indices))
	var valid []int
	for _, i := range indices {
		if i >= 0 && i < n && !seen[i] {
			seen[i] = true
			valid = append(valid, i)
		}
	}
	removed := s.engine.RemoveDice(valid...)
	if removed > 0 {
		s.recorder.Record(&journal.DiceRemovedEvent{Indices: valid})
	}
	return removed
}

func (s *Session) roll(ctx context.Context) (Outcome, error) {
	var out Outcome
	res, ok := s.engine.RequestRoll(ctx)
	if !ok {
		switch {
		case s.engine.Len() == 0:
			return out, errors.New("deal a hand before rolling")
		case s.engine.IsRolling():
			return out, errors.New("the dice are already rolling")
		default:
			return out, fmt.Errorf("no rolls left this turn (%d/%d)", s.engine.RollCount(), s.engine.MaxRolls())
		}
	}
	if res.BonusGranted {
		out.say("A relic grants a bonus roll.")
	}
	out.say("Roll %d/%d: %v", res.RollCount, res.MaxRolls, res.Values)
	if len(res.Rerolled) > 0 {
		out.say("Rerolled dice %v.", res.Rerolled)
	}
	return out, nil
}

func (s *Session) attack(cmd *parser.AttackCmd) (Outcome, error) {
	var out Outcome
	values := s.engine.Values()
	if len(values) == 0 {
		return out, errors.New("no dice to attack with")
	}
	if s.engine.IsRolling() {
		return out, errors.New("the dice are still rolling")
	}
	score := game.Evaluate(values)
	base := score.Damage
	if cmd.Base != nil {
		base = *cmd.Base
	}
	c, hit := s.resolver.Attack(base, values, score.Used, score.Rank)
	if hit {
		out.say("%s with %v deals %d damage.", strings.ReplaceAll(score.Rank, "_", " "), pick(values, score.Used), c.Final)
	} else {
		out.say("The attack was blocked.")
	}
	s.remove(score.Used)

	s.mu.Lock()
	fight, number := s.fight, s.wave
	cleared := fight != nil && s.player.Status().EnemyHealth <= 0
	if cleared {
		s.fight = nil
	}
	s.mu.Unlock()
	if cleared {
		out.say("Wave %d cleared.", number)
		s.track("wave", func() {
			if g, ok := s.resolver.ClearWave(fight); ok {
				out.say("Earned %d gold.", g.Final)
			}
		})
	}
	return out, nil
}

func (s *Session) resolveDamage(out *Outcome, amount int, source string) {
	before := s.player.Status()
	if _, ok := s.resolver.Damage(amount, source); !ok {
		out.say("The hit from %s was negated.", source)
		return
	}
	lost := before.Health - s.player.Status().Health
	if before.Shield {
		out.say("Took %d damage from %s through the shield.", lost, source)
		return
	}
	out.say("Took %d damage from %s.", lost, source)
}

// track records the health and gold deltas caused by fn.
func (s *Session) track(source string, fn func()) {
	before := s.player.Status()
	fn()
	after := s.player.Status()
	if d := after.Health - before.Health; d != 0 {
		s.recorder.Record(&journal.HealthChangedEvent{Delta: d, Source: source})
	}
	if d := after.Gold - before.Gold; d != 0 {
		s.recorder.Record(&journal.GoldChangedEvent{Delta: d, Source: source})
	}
}

func pick(values, indices []int) []int {
	out := make([]int, len(indices))
	for k, i := range indices {
		out[k] = values[i]
	}
	return out
}

func helpLines() []string {
	keys := make([]string, 0, len(parser.Usage))
	for k := range parser.Usage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys)+1)
	lines = append(lines, "Commands (dice are numbered from 0):")
	for _, k := range keys {
		lines = append(lines, "  "+parser.Usage[k])
	}
	return lines
}
