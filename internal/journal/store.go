package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// maxLineSize bounds a single serialized event.
const maxLineSize = 16 << 20

// envelope tags each serialized event with its type.
type envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Store is an append-only JSONL event log.
type Store struct {
	mu   sync.Mutex
	file *os.File
}

// OpenStore opens or creates the log at path.
func OpenStore(path string) (*Store, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return &Store{file: file}, nil
}

// Append writes evt as one line and syncs the file.
func (s *Store) Append(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", evt.Type(), err)
	}
	line, err := json.Marshal(envelope{Type: evt.Type(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append %s: %w", evt.Type(), err)
	}
	return s.file.Sync()
}

// Load replays every event in the log.
func (s *Store) Load() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var events []Event
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var env envelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode envelope: %w", line, err)
		}
		evt, err := decodeEvent(env.Type, env.Data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, evt)
	}
	return events, scanner.Err()
}

func (s *Store) Close() error {
	return s.file.Close()
}

func decodeEvent(t EventType, data json.RawMessage) (Event, error) {
	var evt Event

	switch t {
	case EventRunStarted:
		evt = &RunStartedEvent{}
	case EventHandDealt:
		evt = &HandDealtEvent{}
	case EventDiceRolled:
		evt = &DiceRolledEvent{}
	case EventDiceRemoved:
		evt = &DiceRemovedEvent{}
	case EventTurnStarted:
		evt = &TurnStartedEvent{}
	case EventGoldChanged:
		evt = &GoldChangedEvent{}
	case EventHealthChanged:
		evt = &HealthChangedEvent{}
	case EventRelicAcquired:
		evt = &RelicAcquiredEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", t)
	}

	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", t, err)
	}
	return evt, nil
}
