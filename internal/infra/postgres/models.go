package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          string `bun:"id,pk"`
	Title       string `bun:"title,notnull"`
	Description string `bun:"description,notnull"`
	Active      bool   `bun:"active,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID          string `bun:"id,pk"`
	QuizID      string `bun:"quiz_id,notnull"`
	Position    int    `bun:"position,notnull"`
	Text        string `bun:"text,notnull"`
	Difficulty  string `bun:"difficulty,notnull"`
	Explanation string `bun:"explanation,notnull"`
}

type optionModel struct {
	bun.BaseModel `bun:"table:options,alias:o"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id,notnull"`
	Position   int    `bun:"position,notnull"`
	Text       string `bun:"text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string `bun:"id,pk"`
	DisplayName string `bun:"display_name,notnull"`
	Role        string `bun:"role,notnull"`
}

type assignmentModel struct {
	bun.BaseModel `bun:"table:assignments,alias:asg"`

	UserID     string    `bun:"user_id,pk"`
	QuizID     string    `bun:"quiz_id,pk"`
	AssignedAt time.Time `bun:"assigned_at,notnull"`
}

type submissionModel struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         string    `bun:"user_id,notnull,unique:submissions_user_quiz"`
	QuizID         string    `bun:"quiz_id,notnull,unique:submissions_user_quiz"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	CorrectAnswers int       `bun:"correct_answers,notnull"`
	SubmittedAt    time.Time `bun:"submitted_at,notnull"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID               int64  `bun:"id,pk,autoincrement"`
	SubmissionID     int64  `bun:"submission_id,notnull"`
	QuestionID       string `bun:"question_id,notnull"`
	SelectedOptionID string `bun:"selected_option_id,notnull"`
	IsCorrect        bool   `bun:"is_correct,notnull"`
}

func (m submissionModel) toDomain(answers []answerModel) domain.Submission {
	sub := domain.Submission{
		ID:             m.ID,
		UserID:         m.UserID,
		QuizID:         m.QuizID,
		Score:          m.Score,
		TotalQuestions: m.TotalQuestions,
		CorrectAnswers: m.CorrectAnswers,
		SubmittedAt:    m.SubmittedAt.UTC(),
		Answers:        make([]domain.Answer, 0, len(answers)),
	}
	for _, a := range answers {
		sub.Answers = append(sub.Answers, domain.Answer{
			ID:               a.ID,
			SubmissionID:     a.SubmissionID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
		})
	}
	return sub
}
