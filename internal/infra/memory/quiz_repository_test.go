package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "Arithmetic", quiz.Title)
	assert.EqualValues(t, 1, loader.calls.Load())

	_, err = repo.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, loader.calls.Load(), "expected cache hit")

	repo.Invalidate("quiz-1")
	_, err = repo.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestQuizRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{"quiz-1": sampleQuiz()})}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, err := repo.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestQuizRepositoryMissingQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	_, err := repo.GetQuiz(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

type countingLoader struct {
	QuizLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls.Add(1)
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:     "quiz-1",
		Title:  "Arithmetic",
		Active: true,
		Questions: []domain.Question{
			{
				ID:         "q1",
				Text:       "What is 2 + 2?",
				Difficulty: domain.DifficultyEasy,
				Options: []domain.Option{
					{ID: "o1", Text: "3", Correct: false},
					{ID: "o2", Text: "4", Correct: true},
				},
			},
		},
	}
}
