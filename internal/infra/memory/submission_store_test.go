package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/domain"
)

func TestSubmissionStoreOverwritesOnRetake(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()
	first := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

	sub, err := store.FinishQuiz(ctx, domain.FinishInput{
		UserID: "u1", QuizID: "quiz-1", Score: 1, SubmittedAt: first,
		Responses: []domain.Response{
			{QuestionID: "q1", SelectedOptionID: "o2", IsCorrect: true},
			{QuestionID: "q2", SelectedOptionID: "o3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.TotalQuestions)
	assert.Equal(t, 1, sub.CorrectAnswers)

	second, err := store.FinishQuiz(ctx, domain.FinishInput{
		UserID: "u1", QuizID: "quiz-1", Score: 1, SubmittedAt: first.Add(time.Hour),
		Responses: []domain.Response{
			{QuestionID: "q3", SelectedOptionID: "o9", IsCorrect: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, second.ID)
	assert.Equal(t, 1, store.Count())

	stored, err := store.GetSubmission(ctx, "u1", "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalQuestions)
	assert.Equal(t, first.Add(time.Hour), stored.SubmittedAt)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "q3", stored.Answers[0].QuestionID)
}

func TestSubmissionStoreMissing(t *testing.T) {
	_, err := NewSubmissionStore().GetSubmission(context.Background(), "u1", "quiz-1")
	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
}

func TestPolicy(t *testing.T) {
	ctx := context.Background()
	policy := NewPolicy(domain.RoleAdmin)
	policy.AddUser(domain.User{ID: "u1", Role: domain.RoleStudent})
	policy.AddUser(domain.User{ID: "root", Role: domain.RoleAdmin})
	policy.Assign("u1", "quiz-1")

	assigned, err := policy.IsAssigned(ctx, "u1", "quiz-1")
	require.NoError(t, err)
	assert.True(t, assigned)

	assigned, err = policy.IsAssigned(ctx, "u1", "quiz-2")
	require.NoError(t, err)
	assert.False(t, assigned)

	barred, err := policy.IsBarred(ctx, "root")
	require.NoError(t, err)
	assert.True(t, barred)

	barred, err = policy.IsBarred(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, barred)

	_, err = policy.Lookup(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
