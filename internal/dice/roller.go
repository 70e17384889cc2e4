package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Roller draws a uniform value in [1, faces].
type Roller interface {
	Roll(faces int) int
}

// RollerFunc adapts a plain function to Roller.
type RollerFunc func(faces int) int

func (f RollerFunc) Roll(faces int) int { return f(faces) }

// cryptoRoller fetches a strongly uniform random integer via crypto/rand.
type cryptoRoller struct{}

func (cryptoRoller) Roll(faces int) int {
	if faces <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(faces)))
	if err != nil {
		return mrand.IntN(faces) + 1
	}
	return int(n.Int64()) + 1
}

// DefaultRoller returns the production roller backed by crypto/rand.
func DefaultRoller() Roller { return cryptoRoller{} }

// seededRoller is a replicable source for deterministic runs.
type seededRoller struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededRoller returns a deterministic roller for the given seed.
func NewSeededRoller(seed uint64) Roller {
	return &seededRoller{r: mrand.New(mrand.NewPCG(seed, 0))}
}

func (s *seededRoller) Roll(faces int) int {
	if faces <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(faces) + 1
}

// Sequence replays queued results in order. Once the queue is drained it
// delegates to Fallback, or to the crypto roller when Fallback is nil.
type Sequence struct {
	mu       sync.Mutex
	queue    []int
	Fallback Roller
}

// NewSequence prepares a deterministic sequence of results.
func NewSequence(results ...int) *Sequence {
	return &Sequence{queue: append([]int(nil), results...)}
}

// Push appends more results to the queue.
func (s *Sequence) Push(results ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, results...)
}

// Remaining reports how many queued results are left.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Sequence) Roll(faces int) int {
	s.mu.Lock()
	if len(s.queue) > 0 {
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()
	if s.Fallback != nil {
		return s.Fallback.Roll(faces)
	}
	return cryptoRoller{}.Roll(faces)
}
