package framework

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingLoggerKeepsMessagesInOrder(t *testing.T) {
	var l CapturingLogger
	l.Printf("first %d", 1)
	l.Printf("second %d", 2)

	out := l.Output()
	require.Len(t, out, 2)
	assert.Equal(t, "first 1", out[0].Message)
	assert.Equal(t, "second 2", out[1].Message)
	assert.False(t, out[0].Time.After(out[1].Time))
}

func TestCapturingLoggerOutputIsASnapshot(t *testing.T) {
	var l CapturingLogger
	l.Printf("one")
	out := l.Output()
	l.Printf("two")

	assert.Len(t, out, 1)
	assert.Len(t, l.Output(), 2)
}

func TestCapturingLoggerIsSafeForConcurrentWriters(t *testing.T) {
	var l CapturingLogger
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Printf("message")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, l.Output(), 1000)
}
