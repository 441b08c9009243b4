package session

import (
	"encoding/json"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	frameTypeConnected = "connected"
	frameTypeInput     = "input"
	frameTypeRaw       = "raw"
)

// Message is one inbound unit from the terminal stream, immutable once
// enqueued. Index is the arrival order within the session, starting at 0.
type Message struct {
	Type  string
	Data  string
	Raw   bool
	Index int
}

// IsHandshake reports whether this is the connection acknowledgement the
// service sends after the terminal session is established.
func (m Message) IsHandshake() bool {
	return m.Type == frameTypeConnected
}

type inboundFrame struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type outboundFrame struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// decodeFrame turns a wire frame into a Message. Frames that do not decode
// as the expected {type,data} JSON shape are preserved as raw messages
// rather than dropped, because interactive terminals can emit anything.
func decodeFrame(data []byte, index int) Message {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Message{Type: frameTypeRaw, Data: string(data), Raw: true, Index: index}
	}
	return Message{Type: frame.Type, Data: frame.Data, Index: index}
}

// Outcome is the terminal result of one command execution.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeConnectionLost Outcome = "connection-lost"
)

// CommandExecution records one issued command and the messages collected
// while waiting for its result. Once Outcome is set the record is sealed;
// nothing mutates it afterwards.
type CommandExecution struct {
	Command  string
	Expect   ldvalue.OptionalString
	Messages []Message
	Outcome  Outcome
}

// Succeeded reports whether the execution reached its success condition.
func (e CommandExecution) Succeeded() bool {
	return e.Outcome == OutcomeSuccess
}

// CombinedOutput concatenates the payloads of every collected message, in
// arrival order.
func (e CommandExecution) CombinedOutput() string {
	out := ""
	for _, m := range e.Messages {
		out += m.Data
	}
	return out
}
