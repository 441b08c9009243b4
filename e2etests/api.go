package e2etests

import (
	"errors"

	"github.com/stretchr/testify/require"

	"github.com/kwdb/playground-e2e-tests/config"
	"github.com/kwdb/playground-e2e-tests/control"
	"github.com/kwdb/playground-e2e-tests/framework"
	"github.com/kwdb/playground-e2e-tests/session"
)

// T represents a test or subtest in the playground suite.
//
// It implements the same basic functionality as Go's testing.T, but against
// a live service and outside the Go test runner, with per-test captured
// debug logging provided by the framework package. To make assertions, pass
// the *T to the assert and require packages as if it were a *testing.T.
//
// Every T owns a control client wired to its own debug logger; terminal
// sessions are opened per test through ConnectTerminal and closed
// automatically when the test ends.
type T struct {
	context *framework.Context
	cfg     config.SuiteConfig
	control *control.Client
}

func newTestScope(c *framework.Context, cfg config.SuiteConfig) *T {
	ctl := control.NewClient(cfg.ServiceURL, c.DebugLogger())
	return &T{
		context: c,
		cfg:     cfg,
		control: ctl,
	}
}

// Run runs a subtest with its own T instance.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.cfg))
	})
}

// Errorf is called by assertions to log a test failure. It does not cause
// an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Defer registers a cleanup to run when the test ends, however it ends.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// Skip stops the test and marks it skipped.
func (t *T) Skip() {
	t.context.Skip()
}

func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Debug logs debug output for the test; it is shown at the end of the test
// depending on the logger configuration.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Control returns the control API client for this test.
func (t *T) Control() *control.Client {
	return t.control
}

// Config returns the suite configuration.
func (t *T) Config() config.SuiteConfig {
	return t.cfg
}

// CleanupCourseContainers removes any leftover containers for the
// configured course, tolerating failure; scenarios call it to start from a
// known-clean state.
func (t *T) CleanupCourseContainers() {
	if _, err := t.control.CleanupCourseContainers(t.cfg.CourseID); err != nil {
		t.Debug("pre-test cleanup of course %s failed (ignored): %s", t.cfg.CourseID, err)
	}
}

// StartCourseContainer starts the configured course, waits for its
// container to report running, and registers a cleanup that removes the
// course's containers when the test ends. It fails the test if the
// container never becomes ready.
func (t *T) StartCourseContainer() *control.StartResult {
	result, err := t.control.StartCourse(t.cfg.CourseID)
	require.NoError(t, err, "starting course %q", t.cfg.CourseID)
	t.Defer(func() {
		if _, err := t.control.CleanupCourseContainers(t.cfg.CourseID); err != nil {
			t.Debug("post-test cleanup of course %s failed: %s", t.cfg.CourseID, err)
		}
	})
	require.NotEmpty(t, result.ContainerID, "start response had no container id")
	if !t.control.WaitForContainerReady(result.ContainerID, t.cfg.ReadyTimeout.Value()) {
		t.Errorf("container %s did not become ready within %s", result.ContainerID, t.cfg.ReadyTimeout.Value())
		t.FailNow()
	}
	return result
}

// ConnectTerminal opens a terminal session to the given container and
// registers its Close as a cleanup. It fails the test if the connection
// cannot be established.
func (t *T) ConnectTerminal(containerID string) *session.Session {
	d := session.Dialer{
		BaseURL:        t.cfg.ServiceURL,
		ConnectTimeout: t.cfg.ConnectTimeout.Value(),
		Logger:         t.context.DebugLogger(),
	}
	s, err := d.Connect(containerID)
	require.NoError(t, err, "connecting terminal to container %q", containerID)
	t.Defer(func() { _ = s.Close() })
	return s
}

// requireRemoteError asserts that err carries a *control.RemoteError and
// returns it for status code assertions. Message text is never asserted on;
// the service localizes it.
func requireRemoteError(t *T, err error) *control.RemoteError {
	require.Error(t, err)
	var re *control.RemoteError
	require.True(t, errors.As(err, &re), "expected a control.RemoteError, got %T: %v", err, err)
	return re
}
