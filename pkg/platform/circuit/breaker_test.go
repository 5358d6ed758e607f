package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("passentry", WithFailureThreshold(3))

	for range 2 {
		state, change := b.RecordFailure()
		assert.Equal(t, StateClosed, state)
		assert.False(t, change.Opened)
	}
	state, change := b.RecordFailure()
	assert.Equal(t, StateOpen, state)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	_, change = b.RecordFailure()
	assert.False(t, change.Opened, "already open")
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := New("passentry", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	state, _ := b.RecordFailure()

	assert.Equal(t, StateClosed, state)
}

func TestBreakerClosesAfterConsecutiveSuccesses(t *testing.T) {
	b := New("passentry", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	_, change := b.RecordSuccess()
	assert.False(t, change.Closed)
	b.RecordFailure()
	_, change = b.RecordSuccess()
	assert.False(t, change.Closed, "failure restarts the success run")

	state, change := b.RecordSuccess()
	assert.Equal(t, StateClosed, state)
	assert.True(t, change.Closed)
	assert.Equal(t, "closed", state.String())
}

func TestBreakerReset(t *testing.T) {
	b := New("passentry", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()

	assert.False(t, b.IsOpen())
	assert.Equal(t, "passentry", b.Name())
}

func TestBreakerConcurrentUse(t *testing.T) {
	b := New("passentry", WithFailureThreshold(1000))
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			b.RecordFailure()
			b.RecordSuccess()
		})
	}
	wg.Wait()
	assert.False(t, b.IsOpen())
}
