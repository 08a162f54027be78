package attempt

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/domain"
)

var testNow = time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

// threeQuestionQuiz has 3 questions with 4 options each; option "<q>-c" is correct.
func threeQuestionQuiz() domain.Quiz {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Arithmetic", Active: true}
	difficulties := []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyEasy}
	for i := 1; i <= 3; i++ {
		qid := fmt.Sprintf("q%d", i)
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:         qid,
			Text:       "Question " + qid,
			Difficulty: difficulties[i-1],
			Options: []domain.Option{
				{ID: qid + "-a", Text: "A"},
				{ID: qid + "-b", Text: "B"},
				{ID: qid + "-c", Text: "C", Correct: true},
				{ID: qid + "-d", Text: "D"},
			},
		})
	}
	return quiz
}

func newSrc() *rand.Rand {
	return rand.New(rand.NewPCG(3, 4))
}

func startedSession(t *testing.T, setup Setup) *Session {
	t.Helper()
	s := New("a1", "u1", "quiz-1", testNow)
	require.NoError(t, s.Begin(threeQuestionQuiz(), setup, newSrc(), testNow))
	return s
}

func TestBeginShufflesSelectedQuestions(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})

	assert.Equal(t, StateInProgress, s.State)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Len(t, s.Questions, 3)
	ids := make([]string, 0, 3)
	for _, q := range s.Questions {
		ids = append(ids, q.ID)
	}
	assert.ElementsMatch(t, []string{"q1", "q2", "q3"}, ids)

	current, ok := s.Current()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{current.ID + "-a", current.ID + "-b", current.ID + "-c", current.ID + "-d"}, s.OptionOrder)
}

func TestBeginClampsCount(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 99})
	assert.Len(t, s.Questions, 3)
	assert.Equal(t, 3, s.Setup.QuestionCount)

	s = startedSession(t, Setup{QuestionCount: 0})
	assert.Len(t, s.Questions, 1)
}

func TestBeginFiltersDifficultyCaseInsensitively(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3, Difficulty: "EASY"})
	require.Len(t, s.Questions, 2)
	for _, q := range s.Questions {
		assert.Equal(t, domain.DifficultyEasy, q.Difficulty)
	}
}

func TestBeginRejectsWhenNoQuestionMatches(t *testing.T) {
	s := New("a1", "u1", "quiz-1", testNow)
	err := s.Begin(threeQuestionQuiz(), Setup{QuestionCount: 3, Difficulty: domain.DifficultyHard}, newSrc(), testNow)

	require.ErrorIs(t, err, domain.ErrNoMatchingQuestions)
	assert.True(t, domain.IsSetupRejected(err))
	assert.Equal(t, StateSetup, s.State)
	assert.Empty(t, s.Questions)
}

func TestBeginTwiceIsRejected(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})
	err := s.Begin(threeQuestionQuiz(), Setup{QuestionCount: 1}, newSrc(), testNow)
	assert.ErrorIs(t, err, domain.ErrAttemptAlreadyStarted)
	assert.Len(t, s.Questions, 3)
}

func TestSelectUpsertsResponse(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})
	current, _ := s.Current()

	require.NoError(t, s.Select(current.ID+"-a", testNow))
	require.NoError(t, s.Select(current.ID+"-c", testNow))

	require.Len(t, s.Responses, 1)
	assert.Equal(t, domain.Response{QuestionID: current.ID, SelectedOptionID: current.ID + "-c", IsCorrect: true}, s.Responses[0])
	assert.Equal(t, current.ID+"-c", s.ActiveOptionID)
}

func TestSelectRejectsForeignOption(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})
	current, _ := s.Current()
	other := "q1-a"
	if current.ID == "q1" {
		other = "q2-a"
	}

	assert.ErrorIs(t, s.Select(other, testNow), domain.ErrOptionNotFound)
	assert.Empty(t, s.Responses)
}

func TestAdvanceRequiresSelection(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})

	completed, err := s.Advance(newSrc(), testNow)
	require.ErrorIs(t, err, domain.ErrNoActiveSelection)
	assert.True(t, domain.IsAdvanceRejected(err))
	assert.False(t, completed)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, StateInProgress, s.State)
	assert.Empty(t, s.Responses)
}

func TestAdvanceResetsActiveSelectionAndReshufflesOptions(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})
	first, _ := s.Current()
	require.NoError(t, s.Select(first.ID+"-c", testNow))

	completed, err := s.Advance(newSrc(), testNow)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Empty(t, s.ActiveOptionID)

	second, _ := s.Current()
	assert.NotEqual(t, first.ID, second.ID)
	assert.ElementsMatch(t, []string{second.ID + "-a", second.ID + "-b", second.ID + "-c", second.ID + "-d"}, s.OptionOrder)

	_, err = s.Advance(newSrc(), testNow)
	assert.ErrorIs(t, err, domain.ErrNoActiveSelection)
}

func TestFullAttemptScoresTwoOfThree(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 3})

	for i := 0; i < 3; i++ {
		q, ok := s.Current()
		require.True(t, ok)
		choice := q.ID + "-c"
		if i == 2 {
			choice = q.ID + "-b"
		}
		require.NoError(t, s.Select(choice, testNow))
		completed, err := s.Advance(newSrc(), testNow)
		require.NoError(t, err)
		assert.Equal(t, i == 2, completed)
	}

	assert.Equal(t, StateComplete, s.State)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, Result{CorrectAnswers: 2, TotalQuestions: 3, Percentage: 66.7}, s.Result())

	assert.ErrorIs(t, s.Select("q1-a", testNow), domain.ErrAttemptComplete)
	_, err := s.Advance(newSrc(), testNow)
	assert.ErrorIs(t, err, domain.ErrAttemptComplete)
}

func TestSelectBeforeBegin(t *testing.T) {
	s := New("a1", "u1", "quiz-1", testNow)
	assert.ErrorIs(t, s.Select("q1-a", testNow), domain.ErrAttemptNotInProgress)
}

func TestRestoreRoundTrip(t *testing.T) {
	s := startedSession(t, Setup{QuestionCount: 2, Difficulty: domain.DifficultyEasy})
	current, _ := s.Current()
	require.NoError(t, s.Select(current.ID+"-a", testNow))

	data, err := s.MarshalBinary()
	require.NoError(t, err)
	restored, err := Restore(data)
	require.NoError(t, err)

	assert.Equal(t, s.View(), restored.View())
	assert.Equal(t, s.Responses, restored.Responses)
	assert.Equal(t, s.Questions, restored.Questions)

	_, err = Restore([]byte("{"))
	assert.Error(t, err)
}
