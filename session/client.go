// Package session is a client for the playground's interactive terminal
// stream: one persistent WebSocket per container, a background receive loop
// feeding a FIFO message queue, and deadline-bounded command execution on
// top of it. The wire protocol has no command-level request IDs, so
// correlating a command with its output is best effort; see ExecuteAndWait.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/kwdb/playground-e2e-tests/framework"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultExecuteTimeout = 10 * time.Second
	closeJoinTimeout      = 5 * time.Second
	inboundQueueSize      = 256
)

var (
	// ErrConnectTimeout means no connection acknowledgement arrived within
	// the connect timeout.
	ErrConnectTimeout = errors.New("timed out waiting for terminal connection acknowledgement")

	// ErrNotConnected means an operation requiring a connected session was
	// attempted in some other state.
	ErrNotConnected = errors.New("terminal session is not connected")
)

// RemoteRejectedError means the service refused the terminal session, either
// at the HTTP upgrade (StatusCode is set) or by closing the stream before
// acknowledging the connection.
type RemoteRejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteRejectedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("terminal session rejected with status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("terminal session rejected: %s", e.Reason)
}

// State is a session's connection lifecycle state. Closed and Failed are
// terminal; no transition leaves them.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Dialer opens terminal sessions against one service base URL.
type Dialer struct {
	// BaseURL is the service's HTTP base URL; the scheme is rewritten to
	// ws/wss for the stream endpoint.
	BaseURL string

	// ConnectTimeout bounds both the upgrade and the wait for the
	// connection acknowledgement. Zero means a 10 second default.
	ConnectTimeout time.Duration

	// Logger receives debug output; nil silences it.
	Logger framework.Logger
}

// Session is one logical terminal connection to a container. Its receive
// loop is the sole producer of the inbound queue; ExecuteAndWait (or
// NextMessage) on a single goroutine is the sole consumer.
type Session struct {
	containerID string
	sessionID   string
	conn        *websocket.Conn
	logger      framework.Logger

	inbound   chan Message
	connected chan struct{}
	closeReq  chan struct{}
	done      chan struct{}

	writeLock sync.Mutex

	lock    sync.Mutex
	state   State
	lastErr error
	closing bool

	closeOnce sync.Once
}

// Connect opens a terminal session for the given container. It returns only
// once the service has acknowledged the connection (state Connected), or
// fails with ErrConnectTimeout, or with *RemoteRejectedError if the service
// refused the container id. It never returns a session still connecting.
func (d Dialer) Connect(containerID string) (*Session, error) {
	logger := d.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	timeout := d.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	wsURL, err := terminalURL(d.BaseURL, containerID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		containerID: containerID,
		sessionID:   wsURL.Query().Get("session_id"),
		logger:      logger,
		inbound:     make(chan Message, inboundQueueSize),
		connected:   make(chan struct{}),
		closeReq:    make(chan struct{}),
		done:        make(chan struct{}),
		state:       StateConnecting,
	}

	logger.Printf("Opening terminal session %s to %s", s.sessionID, wsURL)
	// One deadline covers the whole connect: the WS handshake spends part of
	// it and the acknowledgement wait gets whatever is left.
	start := time.Now()
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.Dial(wsURL.String(), nil)
	if err != nil {
		s.setTerminal(StateFailed, err)
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			return nil, &RemoteRejectedError{StatusCode: resp.StatusCode, Reason: readRejection(resp)}
		}
		return nil, fmt.Errorf("terminal dial failed: %w", err)
	}
	s.conn = conn

	go s.receiveLoop()

	deadline := time.NewTimer(timeout - time.Since(start))
	defer deadline.Stop()
	select {
	case <-s.connected:
		logger.Printf("Terminal session %s connected", s.sessionID)
		return s, nil
	case <-s.done:
		// The acknowledgement and the stream's end can arrive back to back,
		// in which case both channels are ready and the select may have
		// picked this one. An acknowledged session was accepted, not
		// rejected; hand it to the caller, whose next operation will see
		// the lost connection.
		select {
		case <-s.connected:
			logger.Printf("Terminal session %s connected", s.sessionID)
			return s, nil
		default:
		}
		// The stream ended before any acknowledgement: the service did not
		// accept this container id.
		reason := "stream closed before connection acknowledgement"
		if err := s.LastError(); err != nil {
			reason = err.Error()
		}
		_ = s.Close()
		return nil, &RemoteRejectedError{Reason: reason}
	case <-deadline.C:
		s.setTerminal(StateFailed, ErrConnectTimeout)
		_ = s.Close()
		return nil, ErrConnectTimeout
	}
}

// receiveLoop reads frames until the transport closes or errors. It is the
// only writer to the inbound queue, and the queue is closed exactly when
// the loop exits, so a closed queue is the consumer's signal that the
// connection is gone.
func (s *Session) receiveLoop() {
	defer close(s.done)
	index := 0
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.lock.Lock()
			if s.state != StateClosed && s.state != StateFailed {
				if s.closing {
					s.state = StateClosed
				} else {
					s.state = StateFailed
					s.lastErr = err
				}
			}
			s.lock.Unlock()
			s.logger.Printf("Terminal session %s receive loop ended: %s", s.sessionID, err)
			close(s.inbound)
			return
		}

		msg := decodeFrame(data, index)
		index++
		s.logger.Printf("Terminal session %s received %s frame (#%d)", s.sessionID, msg.Type, msg.Index)

		select {
		case s.inbound <- msg:
			// Enqueue before releasing Connect, so the acknowledgement frame
			// is already in the queue (and drainable) when Connect returns.
			if msg.IsHandshake() {
				s.lock.Lock()
				if s.state == StateConnecting {
					s.state = StateConnected
					close(s.connected)
				}
				s.lock.Unlock()
			}
		case <-s.closeReq:
			// The consumer is gone and the queue is full; stop rather than
			// block a close forever.
			s.lock.Lock()
			if s.state != StateFailed {
				s.state = StateClosed
			}
			s.lock.Unlock()
			close(s.inbound)
			return
		}
	}
}

// Send writes one command line to the terminal. The session must be
// connected.
func (s *Session) Send(command string) error {
	if s.State() != StateConnected {
		return ErrNotConnected
	}
	data, err := json.Marshal(outboundFrame{Type: frameTypeInput, Data: command + "\n"})
	if err != nil {
		return err
	}
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("terminal write failed: %w", err)
	}
	s.logger.Printf("Terminal session %s sent command: %s", s.sessionID, command)
	return nil
}

// ExecuteOptions configures one ExecuteAndWait call.
type ExecuteOptions struct {
	// Expect, if defined, is a substring that some message payload must
	// contain for the execution to succeed. If undefined, any message at
	// all counts as success.
	Expect ldvalue.OptionalString

	// Timeout bounds the wait for a matching message. Zero means a
	// 10 second default.
	Timeout time.Duration
}

// ExecuteAndWait drains any messages already queued, sends the command, and
// collects messages until the success condition is met, the timeout
// elapses, or the connection is lost. A timeout ends only this call; the
// session remains usable.
//
// Correlation is by content, not by request id (the wire protocol has none):
// the pre-send drain narrows the window, but output from an earlier command
// still in flight can cross-match an ambiguous expectation.
func (s *Session) ExecuteAndWait(command string, opts ExecuteOptions) (CommandExecution, error) {
	exec := CommandExecution{Command: command, Expect: opts.Expect}

	drained := s.drain()
	if drained > 0 {
		s.logger.Printf("Terminal session %s drained %d stale messages before send", s.sessionID, drained)
	}

	if err := s.Send(command); err != nil {
		return exec, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultExecuteTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case msg, ok := <-s.inbound:
			if !ok {
				exec.Outcome = OutcomeConnectionLost
				return exec, nil
			}
			exec.Messages = append(exec.Messages, msg)
			if matches(msg, opts.Expect) {
				exec.Outcome = OutcomeSuccess
				return exec, nil
			}
		case <-deadline.C:
			exec.Outcome = OutcomeTimeout
			return exec, nil
		}
	}
}

func matches(msg Message, expect ldvalue.OptionalString) bool {
	if !expect.IsDefined() {
		return true
	}
	return strings.Contains(msg.Data, expect.StringValue())
}

// setTerminal moves the session into a terminal state unless it is already
// in one.
func (s *Session) setTerminal(state State, err error) {
	s.lock.Lock()
	if s.state != StateClosed && s.state != StateFailed {
		s.state = state
		if err != nil {
			s.lastErr = err
		}
	}
	s.lock.Unlock()
}

// NextMessage returns the next queued message, waiting up to timeout. It
// fails with ErrNotConnected once the receive loop has closed the queue.
// A timeout fails only this call; the session remains usable.
func (s *Session) NextMessage(timeout time.Duration) (Message, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case msg, ok := <-s.inbound:
		if !ok {
			return Message{}, ErrNotConnected
		}
		return msg, nil
	case <-deadline.C:
		return Message{}, fmt.Errorf("no terminal message within %s", timeout)
	}
}

// drain discards everything currently queued, establishing a correlation
// boundary for the next command.
func (s *Session) drain() int {
	n := 0
	for {
		select {
		case _, ok := <-s.inbound:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Close shuts the transport down and joins the receive loop with a bounded
// wait. It is idempotent and safe to call from any goroutine, including
// concurrently with the receive loop terminating on its own.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.lock.Lock()
		s.closing = true
		s.lock.Unlock()
		close(s.closeReq)

		if s.conn != nil {
			s.writeLock.Lock()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			s.writeLock.Unlock()
			_ = s.conn.Close()

			select {
			case <-s.done:
			case <-time.After(closeJoinTimeout):
				s.logger.Printf("Terminal session %s receive loop did not exit within %s", s.sessionID, closeJoinTimeout)
			}
		}

		s.lock.Lock()
		if s.state != StateFailed {
			s.state = StateClosed
		}
		s.lock.Unlock()
		s.logger.Printf("Terminal session %s closed", s.sessionID)
	})
	return nil
}

// State returns the session's state at the time of the call.
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// IsConnected reports whether the session was connected at the time of the
// call; it is a snapshot, not a guarantee it remains true.
func (s *Session) IsConnected() bool {
	return s.State() == StateConnected
}

// LastError returns the transport error recorded by the receive loop, if
// any.
func (s *Session) LastError() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastErr
}

// ContainerID returns the container this session is attached to.
func (s *Session) ContainerID() string {
	return s.containerID
}

func terminalURL(baseURL string, containerID string) (*url.URL, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}
	u.Path = "/ws/terminal"
	q := url.Values{}
	q.Set("container_id", containerID)
	q.Set("session_id", uuid.NewString())
	u.RawQuery = q.Encode()
	return u, nil
}

func readRejection(resp *http.Response) string {
	if resp.Body == nil {
		return resp.Status
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return string(data)
}
