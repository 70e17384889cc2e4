package journal

import "go.uber.org/zap"

// Appender is the write side of a Store.
type Appender interface {
	Append(evt Event) error
}

// Recorder writes engine and bus outcomes to the run log. Write failures
// are logged and never interrupt play.
type Recorder struct {
	out Appender
	log *zap.Logger
}

func NewRecorder(out Appender, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{out: out, log: log.Named("journal")}
}

// Record appends evt.
func (r *Recorder) Record(evt Event) {
	if err := r.out.Append(evt); err != nil {
		r.log.Warn("failed to record event", zap.String("type", string(evt.Type())), zap.Error(err))
	}
}

// HandResolved records the finalized values of a roll cycle.
func (r *Recorder) HandResolved(values []int) {
	r.Record(&DiceRolledEvent{Values: append([]int(nil), values...)})
}

// TurnPrepared records a turn start with its settled roll budget.
func (r *Recorder) TurnPrepared(turn, maxRolls int) {
	r.Record(&TurnStartedEvent{Turn: turn, MaxRolls: maxRolls})
}
