package control

import (
	"fmt"
	"time"
)

// ContainerState is the server-observed lifecycle state of a container. The
// authoritative copy lives on the service side; the client only ever reads it.
type ContainerState string

const (
	StateCreating ContainerState = "creating"
	StateStarting ContainerState = "starting"
	StateRunning  ContainerState = "running"
	StateStopped  ContainerState = "stopped"
	StateExited   ContainerState = "exited"
	StateError    ContainerState = "error"
)

// RemoteError is returned for any non-success control channel response. The
// message is whatever text the service supplied and is for display only;
// callers must branch on StatusCode, never on the wording.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("control API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("control API returned status %d: %s", e.StatusCode, e.Message)
}

// Course describes one course as the service reports it. Only the fields the
// harness asserts on are modeled; unknown fields are ignored on decode.
type Course struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Tags             []string `json:"tags"`
	DockerImage      string   `json:"dockerImage"`
}

type courseListResponse struct {
	Courses []Course `json:"courses"`
}

type courseDetailResponse struct {
	Course Course `json:"course"`
}

// StartResult is the response to a course start request.
type StartResult struct {
	Message     string `json:"message"`
	CourseID    string `json:"courseId"`
	ContainerID string `json:"containerId"`
	Image       string `json:"image"`
}

// StopResult is the response to a course stop request.
type StopResult struct {
	Message     string `json:"message"`
	CourseID    string `json:"courseId"`
	ContainerID string `json:"containerId"`
}

// ContainerInfo mirrors the service's container bookkeeping record.
type ContainerInfo struct {
	ID        string            `json:"id"`
	CourseID  string            `json:"courseId"`
	DockerID  string            `json:"dockerId"`
	State     ContainerState    `json:"state"`
	Image     string            `json:"image"`
	StartedAt time.Time         `json:"startedAt"`
	Ports     map[string]string `json:"ports,omitempty"`
	Name      string            `json:"name,omitempty"`
	Port      int               `json:"port,omitempty"`
}

// ContainerStatus is the response to a container status query.
type ContainerStatus struct {
	Status      ContainerState `json:"status"`
	ContainerID string         `json:"containerId"`
	Info        ContainerInfo  `json:"info"`
}

// ContainerLogs is the response to a container log query.
type ContainerLogs struct {
	Logs        string `json:"logs"`
	ContainerID string `json:"containerId"`
	Lines       int    `json:"lines"`
	Follow      bool   `json:"follow"`
}

type restartResponse struct {
	Message     string `json:"message"`
	ContainerID string `json:"containerId"`
}

// ConflictContainer describes one container occupying a checked port. The
// port is a string here because that is how the service reports it.
type ConflictContainer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CourseID string `json:"courseId"`
	Port     string `json:"port"`
	State    string `json:"state"`
}

// PortConflict is the response to a port conflict check. As with
// ConflictContainer, the service formats the port as a string.
type PortConflict struct {
	CourseID           string              `json:"courseId"`
	Port               string              `json:"port"`
	IsConflicted       bool                `json:"isConflicted"`
	ConflictContainers []ConflictContainer `json:"conflictContainers"`
}

// CleanupSummary is the response to cleaning up one course's containers.
type CleanupSummary struct {
	CourseID          string          `json:"courseId"`
	Success           bool            `json:"success"`
	TotalCleaned      int             `json:"totalCleaned"`
	CleanedContainers []ContainerInfo `json:"cleanedContainers"`
	Message           string          `json:"message"`
}

// CleanupResult is the response to a cleanup of every managed container.
type CleanupResult struct {
	Success           bool            `json:"success"`
	CleanedContainers []ContainerInfo `json:"cleanedContainers"`
	FailedContainers  []ContainerInfo `json:"failedContainers,omitempty"`
}

// EnvCheckItem is one entry in the service's environment self-check.
type EnvCheckItem struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// EnvCheckSummary is the response to an environment check request.
type EnvCheckSummary struct {
	OK    bool           `json:"ok"`
	Items []EnvCheckItem `json:"items"`
}
