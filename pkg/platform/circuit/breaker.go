// Package circuit tracks the health of an upstream dependency from the
// outcomes of calls made to it.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	StateClosed State = iota // upstream healthy
	StateOpen                // upstream failing
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Transition reports whether a recorded outcome moved the breaker.
type Transition struct {
	Opened bool
	Closed bool
}

// Breaker opens after a run of consecutive failures and closes again after a
// run of consecutive successes. It only observes; callers decide what an open
// breaker means for them.
type Breaker struct {
	mu         sync.Mutex
	name       string
	state      State
	failures   int
	successes  int
	openAfter  int
	closeAfter int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.openAfter = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes close an open breaker. Default 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.closeAfter = n
		}
	}
}

// New creates a closed breaker for the named dependency.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:       name,
		openAfter:  5,
		closeAfter: 2,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// RecordFailure counts a failed call. The returned state is the position
// after the call was counted.
func (b *Breaker) RecordFailure() (State, Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.failures++
	if b.state == StateClosed && b.failures >= b.openAfter {
		b.state = StateOpen
		return b.state, Transition{Opened: true}
	}
	return b.state, Transition{}
}

// RecordSuccess counts a successful call.
func (b *Breaker) RecordSuccess() (State, Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		b.failures = 0
		return b.state, Transition{}
	}
	b.successes++
	if b.successes >= b.closeAfter {
		b.state = StateClosed
		b.failures = 0
		b.successes = 0
		return b.state, Transition{Closed: true}
	}
	return b.state, Transition{}
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
