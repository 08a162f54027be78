// Package attempt holds the per-user quiz attempt state machine.
//
// A Session moves SETUP -> IN_PROGRESS -> COMPLETE. It is a plain serializable value: the
// caller loads it, applies one transition and saves it back.
package attempt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/shuffle"
)

type State string

const (
	StateSetup      State = "setup"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Setup is what the user picks before the first question.
type Setup struct {
	QuestionCount int               `json:"questionCount"`
	Difficulty    domain.Difficulty `json:"difficulty,omitempty"`
}

// Session is one user's run through a quiz.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	QuizID    string `json:"quizId"`
	QuizTitle string `json:"quizTitle,omitempty"`
	State     State  `json:"state"`
	Setup     Setup  `json:"setup"`

	// Questions is fixed once the attempt begins. It is a snapshot, so content edits
	// made mid-attempt do not change what the user is scored against.
	Questions      []domain.Question `json:"questions,omitempty"`
	CurrentIndex   int               `json:"currentIndex"`
	OptionOrder    []string          `json:"optionOrder,omitempty"`
	ActiveOptionID string            `json:"activeOptionId,omitempty"`
	Responses      []domain.Response `json:"responses,omitempty"`

	// Persisted is set once the submission writer stored the completed attempt.
	Persisted bool `json:"persisted,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// New returns a session in the setup state.
func New(id, userID, quizID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		QuizID:    quizID,
		State:     StateSetup,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Restore decodes a session saved with MarshalBinary.
func Restore(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode attempt: %w", err)
	}
	return &s, nil
}

// MarshalBinary encodes the session for an attempt store.
func (s *Session) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

// ClampCount bounds a requested question count to [1, available].
func ClampCount(requested, available int) int {
	if available <= 0 {
		return 0
	}
	return max(1, min(requested, available))
}

// SelectQuestions filters by difficulty and truncates to the clamped count, keeping quiz order.
func SelectQuestions(all []domain.Question, setup Setup) []domain.Question {
	filtered := lo.Filter(all, func(q domain.Question, _ int) bool {
		return setup.Difficulty.Matches(q.Difficulty)
	})
	return filtered[:ClampCount(setup.QuestionCount, len(filtered))]
}

// Begin applies the setup and moves the session to IN_PROGRESS. On error the session is unchanged.
func (s *Session) Begin(quiz domain.Quiz, setup Setup, src shuffle.Source, now time.Time) error {
	if s.State != StateSetup {
		return domain.ErrAttemptAlreadyStarted
	}

	questions := SelectQuestions(quiz.Questions, setup)
	if len(questions) == 0 {
		return domain.ErrNoMatchingQuestions
	}
	shuffle.InPlace(questions, src)

	setup.QuestionCount = len(questions)
	s.QuizTitle = quiz.Title
	s.Setup = setup
	s.Questions = questions
	s.CurrentIndex = 0
	s.ActiveOptionID = ""
	s.Responses = nil
	s.State = StateInProgress
	s.shuffleOptions(src)
	s.UpdatedAt = now
	return nil
}

// Current returns the question being displayed.
func (s *Session) Current() (domain.Question, bool) {
	if s.State != StateInProgress || s.CurrentIndex >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Select records optionID as the answer for the current question, replacing any earlier choice.
func (s *Session) Select(optionID string, now time.Time) error {
	if err := s.requireInProgress(); err != nil {
		return err
	}
	question := s.Questions[s.CurrentIndex]
	option, ok := question.Option(optionID)
	if !ok {
		return domain.ErrOptionNotFound
	}

	s.upsert(domain.Response{
		QuestionID:       question.ID,
		SelectedOptionID: option.ID,
		IsCorrect:        option.Correct,
	})
	s.ActiveOptionID = option.ID
	s.UpdatedAt = now
	return nil
}

// Advance moves to the next question, or to COMPLETE from the last one.
// It reports whether the attempt completed. Without an active selection nothing changes.
func (s *Session) Advance(src shuffle.Source, now time.Time) (bool, error) {
	if err := s.requireInProgress(); err != nil {
		return false, err
	}
	if s.ActiveOptionID == "" {
		return false, domain.ErrNoActiveSelection
	}

	s.UpdatedAt = now
	if s.CurrentIndex >= len(s.Questions)-1 {
		s.State = StateComplete
		s.ActiveOptionID = ""
		s.OptionOrder = nil
		s.CompletedAt = &now
		return true, nil
	}

	s.CurrentIndex++
	s.ActiveOptionID = ""
	s.shuffleOptions(src)
	return false, nil
}

// Result scores the responses collected so far.
func (s *Session) Result() Result {
	return Score(s.Responses)
}

func (s *Session) requireInProgress() error {
	switch s.State {
	case StateInProgress:
		return nil
	case StateComplete:
		return domain.ErrAttemptComplete
	default:
		return domain.ErrAttemptNotInProgress
	}
}

func (s *Session) upsert(r domain.Response) {
	for i := range s.Responses {
		if s.Responses[i].QuestionID == r.QuestionID {
			s.Responses[i] = r
			return
		}
	}
	s.Responses = append(s.Responses, r)
}

// shuffleOptions recomputes the display order for the current question.
func (s *Session) shuffleOptions(src shuffle.Source) {
	question, ok := s.Current()
	if !ok {
		s.OptionOrder = nil
		return
	}
	order := lo.Map(question.Options, func(o domain.Option, _ int) string { return o.ID })
	shuffle.InPlace(order, src)
	s.OptionOrder = order
}
