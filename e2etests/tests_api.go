package e2etests

import (
	"errors"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwdb/playground-e2e-tests/control"
	"github.com/kwdb/playground-e2e-tests/framework"
)

var errHealthCheckFailed = errors.New("health endpoint did not answer with success")

const startedState = control.StateRunning

func DoAPITests(t *T) {
	t.Run("health check", func(t *T) {
		// The service may still be warming up when the suite starts.
		err := framework.Retry(func() error {
			if !t.Control().HealthCheck() {
				return errHealthCheckFailed
			}
			return nil
		}, 3, framework.ConstantBackoff(2*time.Second))
		assert.NoError(t, err, "service never reported healthy")
	})

	t.Run("course catalog", func(t *T) {
		courses, err := t.Control().ListCourses()
		require.NoError(t, err)
		require.NotEmpty(t, courses, "service reports no courses at all")

		var found bool
		for _, course := range courses {
			if course.ID == t.Config().CourseID {
				found = true
			}
		}
		require.True(t, found, "configured course %q is not in the catalog", t.Config().CourseID)

		detail, err := t.Control().GetCourse(t.Config().CourseID)
		require.NoError(t, err)
		assert.Equal(t, t.Config().CourseID, detail.ID)
		assert.NotEmpty(t, detail.Title)
	})

	t.Run("unknown course returns 404", func(t *T) {
		_, err := t.Control().GetCourse("definitely-not-a-course")
		re := requireRemoteError(t, err)
		assert.Equal(t, 404, re.StatusCode)
	})

	t.Run("container lifecycle", func(t *T) {
		t.CleanupCourseContainers()
		started := t.StartCourseContainer()

		status, err := t.Control().GetContainerStatus(started.ContainerID)
		require.NoError(t, err)
		assert.Equal(t, startedState, status.Status)

		logs, err := t.Control().GetContainerLogs(started.ContainerID, 50)
		require.NoError(t, err)
		assert.Equal(t, started.ContainerID, logs.ContainerID)

		require.NoError(t, t.Control().RestartContainer(started.ContainerID))
		assert.True(t, t.Control().WaitForContainerReady(started.ContainerID, t.Config().ReadyTimeout.Value()),
			"container did not come back after restart")

		_, err = t.Control().StopCourse(t.Config().CourseID)
		assert.NoError(t, err)
	})

	t.Run("environment check", func(t *T) {
		summary, err := t.Control().CheckEnvironment()
		if err != nil {
			re := requireRemoteError(t, err)
			if re.StatusCode == 404 {
				t.SkipWithReason("service does not expose the environment check endpoint")
			}
			t.Errorf("environment check request failed: %s", re)
			t.FailNow()
		}
		for _, item := range summary.Items {
			t.Debug("environment check %q: ok=%v (%s)", item.Name, item.OK, item.Message)
		}
		assert.True(t, summary.OK, "service environment check reported problems")
	})

	t.Run("response time sampling", func(t *T) {
		samples := 0
		var total, max time.Duration
		for i := 0; i < t.Config().ResponseTimeSamples; i++ {
			d := t.Control().MeasureResponseTime("/api/courses")
			if d < 0 {
				t.Debug("sample %d failed, skipping", i)
				continue
			}
			samples++
			total += d
			if d > max {
				max = d
			}
		}
		require.Greater(t, samples, 0, "every response time sample failed")
		t.Debug("response time over %d samples: avg=%s max=%s", samples, total/time.Duration(samples), max)
	})
}
