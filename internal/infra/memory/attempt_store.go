package memory

import (
	"context"
	"sync"
	"time"

	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
// Sessions are kept encoded so callers never share a live value.
type AttemptStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	attempts map[string]storedAttempt
}

type storedAttempt struct {
	data      []byte
	expiresAt time.Time
}

// NewAttemptStore keeps attempts for ttl after their last save; zero keeps them forever.
func NewAttemptStore(ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		ttl:      ttl,
		clock:    time.Now,
		attempts: make(map[string]storedAttempt),
	}
}

func (s *AttemptStore) Save(_ context.Context, session *attempt.Session) error {
	data, err := session.MarshalBinary()
	if err != nil {
		return err
	}
	entry := storedAttempt{data: data}
	if s.ttl > 0 {
		entry.expiresAt = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[session.ID] = entry
	return nil
}

func (s *AttemptStore) Load(_ context.Context, attemptID string) (*attempt.Session, error) {
	s.mu.RLock()
	entry, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if !ok || (!entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock())) {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt.Restore(entry.data)
}

func (s *AttemptStore) Delete(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
	return nil
}
