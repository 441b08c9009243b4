package control

import (
	"time"
)

// ResponseTimeFailure is the sentinel returned by MeasureResponseTime when
// the request fails for any reason. Callers aggregating samples can filter
// on d < 0 without per-call error handling.
const ResponseTimeFailure = time.Duration(-1)

// WaitForContainerReady polls the container's status once per poll interval
// until it reports running or the timeout elapses. It returns true only if
// the container was observed running before the deadline. Transient status
// failures count as "not ready yet", never as fatal; this method never
// returns an error.
func (c *Client) WaitForContainerReady(containerID string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := c.GetContainerStatus(containerID)
		if err == nil && status.Status == StateRunning {
			return true
		}
		if err != nil {
			c.logger.Printf("status poll for %s failed, will retry: %s", containerID, err)
		}
		time.Sleep(c.pollInterval)
	}
	return false
}

// MeasureResponseTime issues one GET against the given endpoint path (for
// example "/api/courses") and returns the elapsed time, or
// ResponseTimeFailure if the request errored or returned a non-success
// status.
func (c *Client) MeasureResponseTime(endpoint string) time.Duration {
	start := time.Now()
	resp, err := c.http.R().Get(endpoint)
	if err != nil || resp.IsError() {
		return ResponseTimeFailure
	}
	return time.Since(start)
}
