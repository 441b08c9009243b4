package e2etests

import (
	"strconv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoPortConflictTests(t *T) {
	t.Run("detects and clears a conflict across the container lifecycle", func(t *T) {
		courseID := t.Config().CourseID
		port := t.Config().ConflictPort
		t.CleanupCourseContainers()

		conflict, err := t.Control().CheckPortConflict(courseID, port)
		require.NoError(t, err)
		assert.False(t, conflict.IsConflicted, "port %d should be free before any container starts", port)
		assert.Empty(t, conflict.ConflictContainers)

		t.StartCourseContainer()

		conflict, err = t.Control().CheckPortConflict(courseID, port)
		require.NoError(t, err)
		assert.True(t, conflict.IsConflicted, "running container should occupy port %d", port)
		assert.Equal(t, strconv.Itoa(port), conflict.Port)
		require.NotEmpty(t, conflict.ConflictContainers)
		assert.Equal(t, strconv.Itoa(port), conflict.ConflictContainers[0].Port)
		assert.Equal(t, courseID, conflict.ConflictContainers[0].CourseID)

		cleanup, err := t.Control().CleanupCourseContainers(courseID)
		require.NoError(t, err)
		assert.True(t, cleanup.Success)
		assert.Greater(t, cleanup.TotalCleaned, 0, "cleanup should have removed at least one container")

		conflict, err = t.Control().CheckPortConflict(courseID, port)
		require.NoError(t, err)
		assert.False(t, conflict.IsConflicted, "port %d should be released after cleanup", port)
		assert.Empty(t, conflict.ConflictContainers)
	})

	t.Run("validates its parameters", func(t *T) {
		courseID := t.Config().CourseID

		_, err := t.Control().CheckPortConflictRaw(courseID, "invalid")
		re := requireRemoteError(t, err)
		assert.Equal(t, 400, re.StatusCode, "malformed port: %s", re.Message)

		_, err = t.Control().CheckPortConflict(courseID, 70000)
		re = requireRemoteError(t, err)
		assert.Equal(t, 400, re.StatusCode, "out-of-range port: %s", re.Message)

		_, err = t.Control().CheckPortConflict("definitely-not-a-course", t.Config().ConflictPort)
		re = requireRemoteError(t, err)
		assert.Equal(t, 404, re.StatusCode, "unknown course: %s", re.Message)
	})
}
