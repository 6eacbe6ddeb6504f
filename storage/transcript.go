// Package storage records session transcripts.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Messages stored as kind plus JSON payload; decoding back to
//   conversation.Message variants stays inside this package
// - Transcripts are an audit log: nothing here feeds a History

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richinex/toolloop/conversation"
)

// ErrSessionNotFound is returned by Load for an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// TranscriptStore appends conversation messages to per-session transcripts.
type TranscriptStore interface {
	// Append adds msgs to the end of the session's transcript, creating the
	// session if needed. Either all messages are stored or none.
	Append(ctx context.Context, sessionID string, msgs []conversation.Message) error

	// Load returns the session's records in append order.
	Load(ctx context.Context, sessionID string) ([]Record, error)

	// ListSessions lists sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]Session, error)

	// Delete removes a session and its records.
	Delete(ctx context.Context, sessionID string) error

	Close() error
}

// Record is one stored message.
type Record struct {
	Index     int
	Kind      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Message decodes the record back into its conversation variant.
func (r Record) Message() (conversation.Message, error) {
	return decodeMessage(r.Kind, r.Payload)
}

// Session summarizes a stored transcript.
type Session struct {
	ID        string
	Messages  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func encodeMessage(msg conversation.Message) (json.RawMessage, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", msg.Kind(), err)
	}
	return data, nil
}

func decodeMessage(kind string, payload json.RawMessage) (conversation.Message, error) {
	var (
		msg conversation.Message
		err error
	)
	switch kind {
	case "user_text":
		var m conversation.UserText
		err = json.Unmarshal(payload, &m)
		msg = m
	case "assistant_text":
		var m conversation.AssistantText
		err = json.Unmarshal(payload, &m)
		msg = m
	case "assistant_tool_calls":
		var m conversation.AssistantToolCalls
		err = json.Unmarshal(payload, &m)
		msg = m
	case "tool_result":
		var m conversation.ToolResult
		err = json.Unmarshal(payload, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown message kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", kind, err)
	}
	return msg, nil
}
