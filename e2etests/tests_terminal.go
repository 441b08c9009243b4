package e2etests

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/kwdb/playground-e2e-tests/session"
)

func DoTerminalTests(t *T) {
	t.Run("command round trip", func(t *T) {
		t.CleanupCourseContainers()
		started := t.StartCourseContainer()
		s := t.ConnectTerminal(started.ContainerID)

		exec, err := s.ExecuteAndWait("echo harness-ping", session.ExecuteOptions{
			Expect:  ldvalue.NewOptionalString("harness-ping"),
			Timeout: t.Config().CommandTimeout.Value(),
		})
		require.NoError(t, err)
		assert.Equal(t, session.OutcomeSuccess, exec.Outcome,
			"terminal output was: %q", exec.CombinedOutput())
	})

	t.Run("timeout leaves the session usable", func(t *T) {
		t.CleanupCourseContainers()
		started := t.StartCourseContainer()
		s := t.ConnectTerminal(started.ContainerID)

		exec, err := s.ExecuteAndWait("true", session.ExecuteOptions{
			Expect:  ldvalue.NewOptionalString("text-that-never-appears-a6e1"),
			Timeout: 2 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, session.OutcomeTimeout, exec.Outcome)
		assert.True(t, s.IsConnected(), "a wait timeout must not close the session")

		exec, err = s.ExecuteAndWait("echo still-alive", session.ExecuteOptions{
			Expect:  ldvalue.NewOptionalString("still-alive"),
			Timeout: t.Config().CommandTimeout.Value(),
		})
		require.NoError(t, err)
		assert.Equal(t, session.OutcomeSuccess, exec.Outcome)
	})

	t.Run("close is idempotent", func(t *T) {
		t.CleanupCourseContainers()
		started := t.StartCourseContainer()
		s := t.ConnectTerminal(started.ContainerID)

		require.NoError(t, s.Close())
		assert.Equal(t, session.StateClosed, s.State())
		require.NoError(t, s.Close())
		assert.Equal(t, session.StateClosed, s.State())
	})

	t.Run("unknown container is rejected", func(t *T) {
		d := session.Dialer{
			BaseURL:        t.Config().ServiceURL,
			ConnectTimeout: t.Config().ConnectTimeout.Value(),
			Logger:         t.DebugLogger(),
		}
		_, err := d.Connect("definitely-not-a-container")
		assert.Error(t, err, "connecting to a nonexistent container should not succeed")
	})
}
