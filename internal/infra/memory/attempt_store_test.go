package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore(time.Minute)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	session := attempt.New("a1", "u1", "quiz-1", now)
	require.NoError(t, session.Begin(sampleQuiz(), attempt.Setup{QuestionCount: 1}, nil, now))
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, session.View(), loaded.View())

	// mutating the loaded copy must not leak into the store
	require.NoError(t, loaded.Select("o1", now))
	again, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, again.Responses)

	require.NoError(t, store.Delete(ctx, "a1"))
	_, err = store.Load(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
}

func TestAttemptStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore(time.Minute)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, attempt.New("a1", "u1", "quiz-1", now)))
	now = now.Add(time.Minute)

	_, err := store.Load(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
}
