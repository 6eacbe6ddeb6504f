package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/richinex/toolloop/conversation"
)

// InMemoryStorage implements TranscriptStore using an in-memory map.
// Data is lost when process terminates.
type InMemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	now      func() time.Time
}

type memorySession struct {
	records   []Record
	createdAt time.Time
	updatedAt time.Time
}

// NewInMemoryStorage creates a new in-memory storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// Append appends messages to a session.
func (s *InMemoryStorage) Append(ctx context.Context, sessionID string, msgs []conversation.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Encode everything first so a bad message stores nothing.
	payloads := make([]Record, 0, len(msgs))
	now := s.now()
	for _, msg := range msgs {
		data, err := encodeMessage(msg)
		if err != nil {
			return err
		}
		payloads = append(payloads, Record{Kind: msg.Kind(), Payload: data, CreatedAt: now})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{createdAt: now}
		s.sessions[sessionID] = sess
	}
	for _, rec := range payloads {
		rec.Index = len(sess.records)
		sess.records = append(sess.records, rec)
	}
	sess.updatedAt = now
	return nil
}

// Load returns a copy of the session's records.
func (s *InMemoryStorage) Load(ctx context.Context, sessionID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	// Return a copy to avoid external mutations
	copied := make([]Record, len(sess.records))
	copy(copied, sess.records)
	return copied, nil
}

// ListSessions lists all sessions, most recently updated first.
func (s *InMemoryStorage) ListSessions(ctx context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sessions = append(sessions, Session{
			ID:        id,
			Messages:  len(sess.records),
			CreatedAt: sess.createdAt,
			UpdatedAt: sess.updatedAt,
		})
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Delete deletes a session.
func (s *InMemoryStorage) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close is a no-op.
func (s *InMemoryStorage) Close() error { return nil }

// Verify InMemoryStorage implements TranscriptStore
var _ TranscriptStore = (*InMemoryStorage)(nil)
