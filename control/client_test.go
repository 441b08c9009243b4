package control

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientForHandler(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, nil)
}

func jsonHandler(content interface{}) http.Handler {
	return httphelpers.HandlerWithJSONResponse(content, nil)
}

func requireRemoteError(t *testing.T, err error) *RemoteError {
	t.Helper()
	require.Error(t, err)
	var re *RemoteError
	require.True(t, errors.As(err, &re), "expected a *RemoteError, got %T: %v", err, err)
	return re
}

func TestListCoursesDecodesResponse(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(jsonHandler(map[string]interface{}{
		"courses": []map[string]interface{}{
			{"id": "sql", "title": "KWDB SQL Basics", "difficulty": "beginner"},
			{"id": "tsdb", "title": "Time Series"},
		},
	}))
	c := newClientForHandler(t, handler)

	courses, err := c.ListCourses()
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "sql", courses[0].ID)
	assert.Equal(t, "KWDB SQL Basics", courses[0].Title)

	req := <-requests
	assert.Equal(t, "GET", req.Request.Method)
	assert.Equal(t, "/api/courses", req.Request.URL.Path)
}

func TestGetCourseUnknownIDIsRemoteError(t *testing.T) {
	c := newClientForHandler(t, httphelpers.HandlerWithResponse(
		404, nil, []byte(`{"error":"course does not exist"}`)))

	_, err := c.GetCourse("nonexistent")
	re := requireRemoteError(t, err)
	assert.Equal(t, 404, re.StatusCode)
	assert.Equal(t, "course does not exist", re.Message)
}

func TestStartCourseDecodesResponseAndUsesPost(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(jsonHandler(map[string]interface{}{
		"message":     "course started",
		"courseId":    "sql",
		"containerId": "kwdb-sql-1",
		"image":       "kwdb:2.0",
	}))
	c := newClientForHandler(t, handler)

	result, err := c.StartCourse("sql")
	require.NoError(t, err)
	assert.Equal(t, "kwdb-sql-1", result.ContainerID)
	assert.Equal(t, "sql", result.CourseID)

	req := <-requests
	assert.Equal(t, "POST", req.Request.Method)
	assert.Equal(t, "/api/courses/sql/start", req.Request.URL.Path)
}

func TestGetContainerLogsPassesLineCount(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(jsonHandler(map[string]interface{}{
		"logs":        "line1\nline2",
		"containerId": "kwdb-sql-1",
		"lines":       2,
	}))
	c := newClientForHandler(t, handler)

	logs, err := c.GetContainerLogs("kwdb-sql-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", logs.Logs)

	req := <-requests
	assert.Equal(t, "/api/containers/kwdb-sql-1/logs", req.Request.URL.Path)
	assert.Equal(t, "2", req.Request.URL.Query().Get("lines"))
}

func TestCheckPortConflictNoConflict(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(jsonHandler(map[string]interface{}{
		"courseId":           "sql",
		"port":               "26257",
		"isConflicted":       false,
		"conflictContainers": []interface{}{},
	}))
	c := newClientForHandler(t, handler)

	conflict, err := c.CheckPortConflict("sql", 26257)
	require.NoError(t, err)
	assert.False(t, conflict.IsConflicted)
	assert.Empty(t, conflict.ConflictContainers)

	req := <-requests
	assert.Equal(t, "/api/courses/sql/check-port-conflict", req.Request.URL.Path)
	assert.Equal(t, "26257", req.Request.URL.Query().Get("port"))
}

func TestCheckPortConflictConflicted(t *testing.T) {
	c := newClientForHandler(t, jsonHandler(map[string]interface{}{
		"courseId":     "sql",
		"port":         "26257",
		"isConflicted": true,
		"conflictContainers": []map[string]interface{}{
			{"id": "kwdb-sql-1", "name": "kwdb-sql-1", "courseId": "sql", "port": "26257", "state": "running"},
		},
	}))

	conflict, err := c.CheckPortConflict("sql", 26257)
	require.NoError(t, err)
	assert.True(t, conflict.IsConflicted)
	require.Len(t, conflict.ConflictContainers, 1)
	assert.Equal(t, "26257", conflict.ConflictContainers[0].Port)
	assert.Equal(t, "sql", conflict.ConflictContainers[0].CourseID)
}

func TestCheckPortConflictDecodesServerWireShape(t *testing.T) {
	// The service formats the top-level port as a string, same as the
	// per-container ports; decode the exact bytes it sends.
	body := []byte(`{"courseId":"sql","port":"26257","isConflicted":true,` +
		`"conflictContainers":[{"id":"kwdb-sql-1","name":"kwdb-sql-1",` +
		`"courseId":"sql","port":"26257","state":"running"}]}`)
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	c := newClientForHandler(t, httphelpers.HandlerWithResponse(200, headers, body))

	conflict, err := c.CheckPortConflict("sql", 26257)
	require.NoError(t, err)
	assert.Equal(t, "26257", conflict.Port)
	assert.True(t, conflict.IsConflicted)
}

func TestCheckPortConflictValidationErrors(t *testing.T) {
	// The service's validation messages are natural language (and localized);
	// the client must surface them verbatim while tests branch on status only.
	c := newClientForHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("port") {
		case "invalid":
			w.WriteHeader(400)
			_, _ = w.Write([]byte(`{"error":"port must be a valid integer"}`))
		case "70000":
			w.WriteHeader(400)
			_, _ = w.Write([]byte(`{"error":"port must be between 1 and 65535"}`))
		default:
			w.WriteHeader(404)
			_, _ = w.Write([]byte(`{"error":"course does not exist"}`))
		}
	}))

	_, err := c.CheckPortConflictRaw("sql", "invalid")
	re := requireRemoteError(t, err)
	assert.Equal(t, 400, re.StatusCode)
	assert.Equal(t, "port must be a valid integer", re.Message)

	_, err = c.CheckPortConflict("sql", 70000)
	re = requireRemoteError(t, err)
	assert.Equal(t, 400, re.StatusCode)

	_, err = c.CheckPortConflict("nonexistent", 26257)
	re = requireRemoteError(t, err)
	assert.Equal(t, 404, re.StatusCode)
}

func TestCleanupCourseContainersDecodesResponse(t *testing.T) {
	c := newClientForHandler(t, jsonHandler(map[string]interface{}{
		"courseId":     "sql",
		"success":      true,
		"totalCleaned": 2,
	}))

	summary, err := c.CleanupCourseContainers("sql")
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.TotalCleaned)
}

func TestRemoteErrorFallsBackToRawBody(t *testing.T) {
	c := newClientForHandler(t, httphelpers.HandlerWithResponse(
		503, nil, []byte("service unavailable")))

	_, err := c.ListCourses()
	re := requireRemoteError(t, err)
	assert.Equal(t, 503, re.StatusCode)
	assert.Equal(t, "service unavailable", re.Message)
}

func TestHealthCheck(t *testing.T) {
	healthy := newClientForHandler(t, jsonHandler(map[string]string{"status": "ok"}))
	assert.True(t, healthy.HealthCheck())

	unhealthy := newClientForHandler(t, httphelpers.HandlerWithStatus(500))
	assert.False(t, unhealthy.HealthCheck())

	unreachable := NewClient("http://127.0.0.1:1", nil)
	assert.False(t, unreachable.HealthCheck())
}
