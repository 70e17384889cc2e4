package journal

import "fmt"

// Projector computes RunState from the event sequence.
type Projector struct{}

func NewProjector() *Projector {
	return &Projector{}
}

// Build folds the events in order. The first event that cannot apply stops
// the fold.
func (p *Projector) Build(events []Event) (*RunState, error) {
	state := NewRunState()

	for i, evt := range events {
		if err := evt.Apply(state); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, evt.Type(), err)
		}
	}

	return state, nil
}
