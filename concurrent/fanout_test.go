package concurrent

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutCollectsEveryWorkerOutcome(t *testing.T) {
	outcomes := FanOut(4, func(worker int) (interface{}, error) {
		return worker * 10, nil
	})
	require.Len(t, outcomes, 4)
	assert.Equal(t, 4, outcomes.SuccessCount())
	assert.Zero(t, outcomes.ErrorCount())
	for i, o := range outcomes {
		assert.Equal(t, i, o.Worker)
		assert.Equal(t, i*10, o.Value)
	}
}

func TestFanOutActuallyOverlapsWorkerLifetimes(t *testing.T) {
	// Every worker blocks until all of them have entered the operation.
	// A serialized fallback would deadlock here; the timeout guards that.
	const n = 5
	var entered sync.WaitGroup
	entered.Add(n)

	done := make(chan Outcomes, 1)
	go func() {
		done <- FanOut(n, func(worker int) (interface{}, error) {
			entered.Done()
			entered.Wait()
			return worker, nil
		})
	}()

	select {
	case outcomes := <-done:
		assert.Equal(t, n, outcomes.SuccessCount())
	case <-time.After(5 * time.Second):
		t.Fatal("workers never overlapped; fan-out appears serialized")
	}
}

func TestFanOutKeepsFailuresIndependent(t *testing.T) {
	var calls int32
	outcomes := FanOut(5, func(worker int) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		if worker%2 == 1 {
			return nil, fmt.Errorf("worker %d failed", worker)
		}
		return worker, nil
	})

	assert.Equal(t, 3, outcomes.SuccessCount())
	assert.Equal(t, 2, outcomes.ErrorCount())
	assert.Len(t, outcomes.Errors(), 2)
	assert.Len(t, outcomes.Values(), 3)
	// one invocation per worker: no retries, no early abort
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestFanOutWithZeroWorkers(t *testing.T) {
	outcomes := FanOut(0, func(int) (interface{}, error) {
		return nil, errors.New("should never run")
	})
	assert.Empty(t, outcomes)
	assert.Zero(t, outcomes.SuccessCount())
}
