package framework

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(func() error {
		calls++
		return nil
	}, 3, ConstantBackoff(time.Millisecond))
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, ConstantBackoff(time.Millisecond))
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastErrorAfterMaxAttempts(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := Retry(func() error {
		calls++
		return sentinel
	}, 3, nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.Is(err, sentinel))
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	err := Retry(func() error { return nil }, 0, nil)
	assert.Error(t, err)
}

func TestLinearBackoffGrowsWithAttempt(t *testing.T) {
	policy := LinearBackoff(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, policy(1))
	assert.Equal(t, 30*time.Millisecond, policy(3))
}
