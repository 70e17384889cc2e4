package engine

import (
	"context"
	"time"
)

// Phase names a pause in the roll sequence.
type Phase int

const (
	// PhaseSpin precedes committing fresh values.
	PhaseSpin Phase = iota
	// PhaseReroll precedes the reroll pass.
	PhaseReroll
)

func (p Phase) String() string {
	switch p {
	case PhaseSpin:
		return "spin"
	case PhaseReroll:
		return "reroll"
	default:
		return "unknown"
	}
}

// Pacer spaces out the roll sequence for presentation. Gameplay never
// depends on it: a cancelled ctx cuts the wait short but the sequence still
// runs to completion.
type Pacer interface {
	Pause(ctx context.Context, phase Phase)
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, phase Phase)

func (f PacerFunc) Pause(ctx context.Context, phase Phase) { f(ctx, phase) }

type nopPacer struct{}

func (nopPacer) Pause(context.Context, Phase) {}

// TimerPacer waits a fixed duration per phase.
type TimerPacer struct {
	Spin   time.Duration
	Reroll time.Duration
}

func (p TimerPacer) Pause(ctx context.Context, phase Phase) {
	d := p.Spin
	if phase == PhaseReroll {
		d = p.Reroll
	}
	if d <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
