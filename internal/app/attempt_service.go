package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/events"
	"quiz-attempt-service/internal/metrics"
	"quiz-attempt-service/internal/shuffle"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore saves and restores attempt sessions between requests.
type AttemptStore interface {
	Save(ctx context.Context, session *attempt.Session) error
	Load(ctx context.Context, attemptID string) (*attempt.Session, error)
	Delete(ctx context.Context, attemptID string) error
}

// SubmissionStore persists completed attempts. FinishQuiz must be atomic.
type SubmissionStore interface {
	FinishQuiz(ctx context.Context, in domain.FinishInput) (domain.Submission, error)
	GetSubmission(ctx context.Context, userID, quizID string) (domain.Submission, error)
}

// AccessPolicy answers the authorization questions asked before an attempt starts.
type AccessPolicy interface {
	IsAssigned(ctx context.Context, userID, quizID string) (bool, error)
	IsBarred(ctx context.Context, userID string) (bool, error)
}

// EventTrigger receives attempt notifications. *events.Dispatcher implements it.
type EventTrigger interface {
	Trigger(ctx context.Context, event events.Event)
}

const persistWarning = "your result could not be saved; resubmit to keep it"

// AttemptService contains the quiz attempt use cases.
type AttemptService struct {
	quizzes     QuizRepository
	attempts    AttemptStore
	submissions SubmissionStore
	policy      AccessPolicy

	events EventTrigger
	logger *slog.Logger
	rnd    shuffle.Source
	now    func() time.Time
	newID  func() string
}

type Option func(*AttemptService)

// WithEvents sets where attempt notifications go.
func WithEvents(trigger EventTrigger) Option {
	return func(s *AttemptService) { s.events = trigger }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *AttemptService) { s.logger = logger }
}

// WithRandom is test-only; the source must be safe for concurrent use in production.
func WithRandom(src shuffle.Source) Option {
	return func(s *AttemptService) { s.rnd = src }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *AttemptService) { s.newID = newID }
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptStore, submissions SubmissionStore, policy AccessPolicy, opts ...Option) *AttemptService {
	s := &AttemptService{
		quizzes:     quizzes,
		attempts:    attempts,
		submissions: submissions,
		policy:      policy,
		logger:      slog.Default(),
		rnd:         shuffle.Global,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuizView is what the setup screen needs. It never includes correctness flags.
type QuizView struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Active         bool           `json:"active"`
	TotalQuestions int            `json:"totalQuestions"`
	Difficulties   map[string]int `json:"difficulties"`
}

// Completion is returned once an attempt reaches COMPLETE.
type Completion struct {
	Result     attempt.Result       `json:"result"`
	Review     []attempt.ReviewItem `json:"review"`
	Submission *domain.Submission   `json:"submission,omitempty"`
	Persisted  bool                 `json:"persisted"`
	Warning    string               `json:"warning,omitempty"`
}

// AdvanceResult is the session after an advance plus, when it finished, its completion.
type AdvanceResult struct {
	Session    *attempt.Session
	Completion *Completion
}

// Quiz returns the setup view of a quiz.
func (s *AttemptService) Quiz(ctx context.Context, quizID string) (QuizView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizView{}, err
	}
	return QuizView{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		Active:         quiz.Active,
		TotalQuestions: len(quiz.Questions),
		Difficulties:   lo.CountValuesBy(quiz.Questions, func(q domain.Question) string {
			if q.Difficulty == domain.DifficultyUnspecified {
				return "unspecified"
			}
			return string(q.Difficulty)
		}),
	}, nil
}

// Start runs the setup checks and, when they pass, begins a new attempt.
// Rejections leave nothing behind and satisfy domain.IsSetupRejected.
func (s *AttemptService) Start(ctx context.Context, p domain.Principal, quizID string, setup attempt.Setup) (*attempt.Session, error) {
	session, err := s.start(ctx, p, quizID, setup)
	if err != nil {
		if domain.IsSetupRejected(err) {
			metrics.RecordAttemptRejected(rejectionReason(err))
			s.logger.InfoContext(ctx, "attempt setup rejected", "reason", err.Error(), "user_id", p.UserID, "quiz_id", quizID)
		}
		return nil, err
	}

	metrics.RecordAttemptStarted()
	s.trigger(ctx, events.Event{
		Type:   events.TypeAttemptStarted,
		UserID: p.UserID,
		QuizID: quizID,
		Payload: map[string]any{
			"attempt_id":     session.ID,
			"question_count": len(session.Questions),
			"difficulty":     string(session.Setup.Difficulty),
		},
	})
	return session, nil
}

func (s *AttemptService) start(ctx context.Context, p domain.Principal, quizID string, setup attempt.Setup) (*attempt.Session, error) {
	if !p.Authenticated() {
		return nil, domain.ErrNotSignedIn
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.Active {
		return nil, domain.ErrQuizInactive
	}

	barred, err := s.policy.IsBarred(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("check role: %w", err)
	}
	if barred {
		return nil, domain.ErrRoleNotPermitted
	}

	assigned, err := s.policy.IsAssigned(ctx, p.UserID, quizID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return nil, domain.ErrNotAssigned
	}

	now := s.now()
	session := attempt.New(s.newID(), p.UserID, quiz.ID, now)
	if err := session.Begin(quiz, setup, s.rnd, now); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return session, nil
}

// Attempt returns an attempt owned by p.
func (s *AttemptService) Attempt(ctx context.Context, p domain.Principal, attemptID string) (*attempt.Session, error) {
	return s.load(ctx, p, attemptID)
}

// Select records optionID for the current question of the attempt.
func (s *AttemptService) Select(ctx context.Context, p domain.Principal, attemptID, optionID string) (*attempt.Session, error) {
	session, err := s.load(ctx, p, attemptID)
	if err != nil {
		return nil, err
	}
	if err := session.Select(optionID, s.now()); err != nil {
		return session, err
	}
	if err := s.attempts.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return session, nil
}

// Advance moves to the next question. From the last question it completes the attempt,
// scores it and writes the submission.
//
// A failed write does not fail the call: the completion carries Persisted=false and a warning,
// and the attempt is kept so the caller can Retry.
func (s *AttemptService) Advance(ctx context.Context, p domain.Principal, attemptID string) (AdvanceResult, error) {
	session, err := s.load(ctx, p, attemptID)
	if err != nil {
		return AdvanceResult{}, err
	}

	completed, err := session.Advance(s.rnd, s.now())
	if err != nil {
		return AdvanceResult{Session: session}, err
	}
	if !completed {
		if err := s.attempts.Save(ctx, session); err != nil {
			return AdvanceResult{}, fmt.Errorf("save attempt: %w", err)
		}
		return AdvanceResult{Session: session}, nil
	}

	completion := s.persist(ctx, session)
	if err := s.settle(ctx, session); err != nil {
		return AdvanceResult{}, err
	}
	return AdvanceResult{Session: session, Completion: completion}, nil
}

// Retry writes the submission of a completed attempt whose earlier write failed.
func (s *AttemptService) Retry(ctx context.Context, p domain.Principal, attemptID string) (*Completion, error) {
	session, err := s.load(ctx, p, attemptID)
	if err != nil {
		return nil, err
	}
	if session.State != attempt.StateComplete {
		return nil, domain.ErrAttemptIncomplete
	}
	if session.Persisted {
		return nil, domain.ErrAttemptAlreadyPersisted
	}

	completion := s.persist(ctx, session)
	if err := s.settle(ctx, session); err != nil {
		return nil, err
	}
	return completion, nil
}

// Abandon drops an attempt without scoring it.
func (s *AttemptService) Abandon(ctx context.Context, p domain.Principal, attemptID string) error {
	if _, err := s.load(ctx, p, attemptID); err != nil {
		return err
	}
	return s.attempts.Delete(ctx, attemptID)
}

// Submission returns the caller's stored submission for a quiz.
func (s *AttemptService) Submission(ctx context.Context, p domain.Principal, quizID string) (domain.Submission, error) {
	if !p.Authenticated() {
		return domain.Submission{}, domain.ErrNotSignedIn
	}
	return s.submissions.GetSubmission(ctx, p.UserID, quizID)
}

func (s *AttemptService) load(ctx context.Context, p domain.Principal, attemptID string) (*attempt.Session, error) {
	session, err := s.attempts.Load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !p.Authenticated() || session.UserID != p.UserID {
		return nil, domain.ErrAttemptNotFound
	}
	return session, nil
}

func (s *AttemptService) persist(ctx context.Context, session *attempt.Session) *Completion {
	result := session.Result()
	completion := &Completion{Result: result, Review: session.Review()}

	submission, err := s.submissions.FinishQuiz(ctx, domain.FinishInput{
		UserID:      session.UserID,
		QuizID:      session.QuizID,
		Score:       result.CorrectAnswers,
		Responses:   session.Responses,
		SubmittedAt: s.now(),
	})
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "failed to persist quiz submission",
			"error", err,
			"user_id", session.UserID,
			"quiz_id", session.QuizID,
			"attempt_id", session.ID,
			"correct_answers", result.CorrectAnswers,
			"total_questions", result.TotalQuestions,
		)
		completion.Warning = persistWarning
		return completion
	}

	metrics.RecordSubmission(metrics.OutcomePersisted)
	session.Persisted = true
	completion.Persisted = true
	completion.Submission = &submission

	s.trigger(ctx, events.Event{
		Type:   events.TypeSubmissionRecorded,
		UserID: session.UserID,
		QuizID: session.QuizID,
		Payload: map[string]any{
			"submission_id":   submission.ID,
			"score":           submission.Score,
			"correct_answers": submission.CorrectAnswers,
			"total_questions": submission.TotalQuestions,
		},
	})
	return completion
}

// settle tears a persisted attempt down and keeps an unpersisted one for Retry.
func (s *AttemptService) settle(ctx context.Context, session *attempt.Session) error {
	if session.Persisted {
		if err := s.attempts.Delete(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop finished attempt", "error", err, "attempt_id", session.ID)
		}
		return nil
	}
	if err := s.attempts.Save(ctx, session); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptService) trigger(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now()
	s.events.Trigger(ctx, event)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotSignedIn):
		return "not_signed_in"
	case errors.Is(err, domain.ErrQuizNotFound):
		return "quiz_not_found"
	case errors.Is(err, domain.ErrQuizInactive):
		return "quiz_inactive"
	case errors.Is(err, domain.ErrRoleNotPermitted):
		return "role_not_permitted"
	case errors.Is(err, domain.ErrNotAssigned):
		return "not_assigned"
	case errors.Is(err, domain.ErrNoMatchingQuestions):
		return "no_matching_questions"
	default:
		return "other"
	}
}
