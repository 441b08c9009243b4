package framework

import (
	"fmt"
	"sync"
	"time"
)

// Logger is the interface for debug output from harness components. It is
// deliberately minimal so that a *log.Logger, a logrus logger, or our own
// CapturingLogger can all satisfy it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is the debug output of one test in arrival order. It is
// plain data; rendering it is the test logger's business.
type CapturedOutput []CapturedMessage

// CapturingLogger accumulates debug output in memory so it can be dumped
// after a test finishes rather than interleaved with live console output.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}
