package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/domain"
)

// AttemptStore keeps attempt sessions in Redis so any instance can serve the next step.
// Sessions are stored as: SET quiz:attempt:{attemptID} {json} EX ttl
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Save(ctx context.Context, session *attempt.Session) error {
	data, err := session.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, attemptKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save attempt %s: %w", session.ID, err)
	}
	return nil
}

func (s *AttemptStore) Load(ctx context.Context, attemptID string) (*attempt.Session, error) {
	data, err := s.client.Get(ctx, attemptKey(attemptID)).Bytes()
	if isMiss(err) {
		return nil, domain.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt %s: %w", attemptID, err)
	}
	return attempt.Restore(data)
}

func (s *AttemptStore) Delete(ctx context.Context, attemptID string) error {
	return s.client.Del(ctx, attemptKey(attemptID)).Err()
}

func attemptKey(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
