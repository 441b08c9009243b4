// Package control is a synchronous client for the playground's control API:
// course lifecycle, container status and logs, port conflict bookkeeping,
// and cleanup. Every method is one request/response round trip; the only
// operations that wait are the explicit polling helpers in wait.go.
package control

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kwdb/playground-e2e-tests/framework"
)

const defaultRequestTimeout = 10 * time.Second
const defaultPollInterval = time.Second

// Client issues control API requests against one service base URL. It is
// safe for concurrent use; it holds no per-request state.
type Client struct {
	http         *resty.Client
	logger       framework.Logger
	pollInterval time.Duration
}

// NewClient creates a Client for the service at baseURL (for example
// "http://localhost:8080"). A nil logger silences debug output.
func NewClient(baseURL string, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultRequestTimeout)
	return &Client{
		http:         hc,
		logger:       logger,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval overrides the interval used by WaitForContainerReady.
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

// BaseURL returns the service base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// ListCourses returns every course the service knows about.
func (c *Client) ListCourses() ([]Course, error) {
	var out courseListResponse
	if err := c.get("/api/courses", nil, &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

// GetCourse returns the detail record for one course.
func (c *Client) GetCourse(courseID string) (*Course, error) {
	var out courseDetailResponse
	if err := c.get("/api/courses/"+courseID, nil, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

// StartCourse asks the service to start the course's backing container.
func (c *Client) StartCourse(courseID string) (*StartResult, error) {
	var out StartResult
	if err := c.post("/api/courses/"+courseID+"/start", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopCourse asks the service to stop the course's backing container.
func (c *Client) StopCourse(courseID string) (*StopResult, error) {
	var out StopResult
	if err := c.post("/api/courses/"+courseID+"/stop", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContainerStatus returns the current state of one container.
func (c *Client) GetContainerStatus(containerID string) (*ContainerStatus, error) {
	var out ContainerStatus
	if err := c.get("/api/containers/"+containerID+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContainerLogs returns up to lineCount recent log lines for a container.
func (c *Client) GetContainerLogs(containerID string, lineCount int) (*ContainerLogs, error) {
	var out ContainerLogs
	query := map[string]string{"lines": strconv.Itoa(lineCount)}
	if err := c.get("/api/containers/"+containerID+"/logs", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestartContainer restarts a container in place.
func (c *Client) RestartContainer(containerID string) error {
	var out restartResponse
	return c.post("/api/containers/"+containerID+"/restart", &out)
}

// StopContainer stops and removes a container by its id, independently of
// the course-level stop operation.
func (c *Client) StopContainer(containerID string) error {
	return c.post("/api/containers/"+containerID+"/stop", nil)
}

// CheckPortConflict reports whether starting the course would collide with
// an existing container on the given port.
func (c *Client) CheckPortConflict(courseID string, port int) (*PortConflict, error) {
	return c.CheckPortConflictRaw(courseID, strconv.Itoa(port))
}

// CheckPortConflictRaw is CheckPortConflict with the port passed through
// verbatim as the query parameter, letting tests exercise the service's
// validation of malformed and out-of-range values.
func (c *Client) CheckPortConflictRaw(courseID string, port string) (*PortConflict, error) {
	var out PortConflict
	query := map[string]string{"port": port}
	if err := c.get("/api/courses/"+courseID+"/check-port-conflict", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CleanupCourseContainers removes every container belonging to a course.
func (c *Client) CleanupCourseContainers(courseID string) (*CleanupSummary, error) {
	var out CleanupSummary
	if err := c.post("/api/courses/"+courseID+"/cleanup-containers", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAllContainers returns every container the service is tracking.
func (c *Client) ListAllContainers() ([]ContainerInfo, error) {
	var out []ContainerInfo
	if err := c.get("/api/containers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanupAllContainers removes every managed container regardless of course.
func (c *Client) CleanupAllContainers() (*CleanupResult, error) {
	var out CleanupResult
	resp, err := c.http.R().SetResult(&out).Delete("/api/containers")
	if err := c.finish(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckEnvironment runs the service's environment self-check.
func (c *Client) CheckEnvironment() (*EnvCheckSummary, error) {
	var out EnvCheckSummary
	if err := c.get("/api/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck reports whether the service's health endpoint answered with a
// success status. It never returns an error; an unreachable service is
// simply unhealthy.
func (c *Client) HealthCheck() bool {
	resp, err := c.http.R().Get("/health")
	if err != nil {
		c.logger.Printf("health check failed: %s", err)
		return false
	}
	return resp.IsSuccess()
}

func (c *Client) get(path string, query map[string]string, out interface{}) error {
	req := c.http.R()
	if query != nil {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	return c.finish(resp, err)
}

func (c *Client) post(path string, out interface{}) error {
	req := c.http.R()
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	return c.finish(resp, err)
}

// finish converts transport errors and non-success statuses into the
// client's error taxonomy. Service error bodies are {"error": "..."} (or
// occasionally {"message": "..."}); the text is preserved verbatim.
func (c *Client) finish(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("control request failed: %w", err)
	}
	if resp.IsError() {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		message := body.Error
		if message == "" {
			message = body.Message
		}
		if message == "" {
			message = strings.TrimSpace(string(resp.Body()))
		}
		c.logger.Printf("control API %s %s -> %d (%s)",
			resp.Request.Method, resp.Request.URL, resp.StatusCode(), message)
		return &RemoteError{StatusCode: resp.StatusCode(), Message: message}
	}
	c.logger.Printf("control API %s %s -> %d",
		resp.Request.Method, resp.Request.URL, resp.StatusCode())
	return nil
}
