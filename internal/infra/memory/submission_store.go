package memory

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"quiz-attempt-service/internal/domain"
)

// SubmissionStore keeps one submission per (user, quiz) in memory. A single lock makes
// FinishQuiz atomic with respect to readers and other writers.
type SubmissionStore struct {
	mu           sync.RWMutex
	submissions  map[submissionKey]domain.Submission
	nextID       int64
	nextAnswerID int64
}

type submissionKey struct {
	userID string
	quizID string
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{submissions: make(map[submissionKey]domain.Submission)}
}

func (s *SubmissionStore) FinishQuiz(_ context.Context, in domain.FinishInput) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey{userID: in.UserID, quizID: in.QuizID}
	submission, ok := s.submissions[key]
	if !ok {
		s.nextID++
		submission = domain.Submission{ID: s.nextID, UserID: in.UserID, QuizID: in.QuizID}
	}

	submission.Score = in.Score
	submission.TotalQuestions = len(in.Responses)
	submission.CorrectAnswers = lo.CountBy(in.Responses, func(r domain.Response) bool { return r.IsCorrect })
	submission.SubmittedAt = in.SubmittedAt
	submission.Answers = make([]domain.Answer, 0, len(in.Responses))
	for _, r := range in.Responses {
		s.nextAnswerID++
		submission.Answers = append(submission.Answers, domain.Answer{
			ID:               s.nextAnswerID,
			SubmissionID:     submission.ID,
			QuestionID:       r.QuestionID,
			SelectedOptionID: r.SelectedOptionID,
			IsCorrect:        r.IsCorrect,
		})
	}

	s.submissions[key] = submission
	return cloneSubmission(submission), nil
}

func (s *SubmissionStore) GetSubmission(_ context.Context, userID, quizID string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[submissionKey{userID: userID, quizID: quizID}]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return cloneSubmission(submission), nil
}

// Count reports how many submissions are stored.
func (s *SubmissionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions)
}

func cloneSubmission(sub domain.Submission) domain.Submission {
	sub.Answers = append([]domain.Answer(nil), sub.Answers...)
	return sub
}
