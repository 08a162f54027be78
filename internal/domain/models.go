package domain

import (
	"strings"
	"time"
)

// Difficulty labels a question. The empty value means unspecified.
type Difficulty string

const (
	DifficultyUnspecified Difficulty = ""
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyHard        Difficulty = "hard"
)

// ParseDifficulty normalizes a user supplied label. "unspecified", "any" and "" all mean no filter.
func ParseDifficulty(raw string) Difficulty {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "", "unspecified", "any":
		return DifficultyUnspecified
	default:
		return Difficulty(v)
	}
}

// Matches reports whether a question labelled other passes this filter.
func (d Difficulty) Matches(other Difficulty) bool {
	if d == DifficultyUnspecified {
		return true
	}
	return strings.EqualFold(string(d), strings.TrimSpace(string(other)))
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a single-answer question. Exactly one option is expected to be correct.
type Question struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
	Options     []Option   `json:"options"`
}

// CorrectOption returns the first option flagged correct.
func (q Question) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return Option{}, false
}

// Option looks up an option by id.
func (q Question) Option(optionID string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	Questions   []Question `json:"questions"`
}

// Response is the answer recorded for one question during an attempt.
type Response struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
}

// Submission is the persisted summary of the latest completed attempt for a (user, quiz) pair.
type Submission struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	SubmittedAt    time.Time `json:"submittedAt"`
	Answers        []Answer  `json:"answers,omitempty"`
}

// Answer is the persisted per-question record of a submission.
type Answer struct {
	ID               int64  `json:"id"`
	SubmissionID     int64  `json:"submissionId"`
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
}

// FinishInput carries everything the submission writer needs for one completed attempt.
type FinishInput struct {
	UserID      string
	QuizID      string
	Score       int
	Responses   []Response
	SubmittedAt time.Time
}

// Role is the coarse role a user holds.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User is an account known to the user directory.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// Principal identifies the caller of a use case. The zero value is an anonymous caller.
type Principal struct {
	UserID string
	Role   Role
}

// Authenticated reports whether the principal carries a user id.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}
