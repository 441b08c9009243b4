package e2etests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwdb/playground-e2e-tests/concurrent"
	"github.com/kwdb/playground-e2e-tests/control"
)

func DoConcurrencyTests(t *T) {
	t.Run("concurrent conflict checks agree", func(t *T) {
		t.CleanupCourseContainers()
		t.StartCourseContainer()

		workers := t.Config().ConcurrentWorkers
		outcomes := concurrent.FanOut(workers, func(int) (interface{}, error) {
			return t.Control().CheckPortConflict(t.Config().CourseID, t.Config().ConflictPort)
		})

		require.Equal(t, workers, outcomes.SuccessCount(),
			"concurrent conflict checks failed: %v", outcomes.Errors())
		for _, value := range outcomes.Values() {
			conflict := value.(*control.PortConflict)
			assert.True(t, conflict.IsConflicted,
				"every concurrent check must see the conflict, not just some")
		}
	})

	t.Run("concurrent status queries stay consistent", func(t *T) {
		t.CleanupCourseContainers()
		started := t.StartCourseContainer()

		workers := t.Config().ConcurrentWorkers
		outcomes := concurrent.FanOut(workers, func(int) (interface{}, error) {
			return t.Control().GetContainerStatus(started.ContainerID)
		})

		require.Equal(t, workers, outcomes.SuccessCount(),
			"concurrent status queries failed: %v", outcomes.Errors())
		for _, value := range outcomes.Values() {
			status := value.(*control.ContainerStatus)
			assert.Equal(t, control.StateRunning, status.Status)
		}
	})

	t.Run("concurrent cleanups do not corrupt bookkeeping", func(t *T) {
		t.CleanupCourseContainers()
		t.StartCourseContainer()

		// All workers race to clean the same course; the service must keep
		// its container registry consistent regardless of who wins.
		outcomes := concurrent.FanOut(3, func(int) (interface{}, error) {
			return t.Control().CleanupCourseContainers(t.Config().CourseID)
		})
		require.Equal(t, 3, outcomes.SuccessCount(),
			"concurrent cleanups failed: %v", outcomes.Errors())

		conflict, err := t.Control().CheckPortConflict(t.Config().CourseID, t.Config().ConflictPort)
		require.NoError(t, err)
		assert.False(t, conflict.IsConflicted, "port still conflicted after cleanup")
	})
}
