package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

const loadQuizSQL = `
SELECT qz.id, qz.title, qz.description, qz.active,
       qs.id, qs.text, qs.difficulty, qs.explanation,
       o.id, o.text, o.is_correct
FROM quizzes qz
LEFT JOIN questions qs ON qs.quiz_id = qz.id
LEFT JOIN options o ON o.question_id = qs.id
WHERE qz.id = $1
ORDER BY qs.position, qs.id, o.position, o.id`

// QuizLoader loads a quiz with its questions and options from Postgres in one round trip.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, loadQuizSQL, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	defer rows.Close()

	var (
		quiz  domain.Quiz
		found bool
	)
	for rows.Next() {
		var (
			questionID, questionText, difficulty, explanation *string
			optionID, optionText                              *string
			isCorrect                                         *bool
		)
		if err := rows.Scan(
			&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Active,
			&questionID, &questionText, &difficulty, &explanation,
			&optionID, &optionText, &isCorrect,
		); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan quiz: %w", err)
		}
		found = true
		if questionID == nil {
			continue
		}

		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != *questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{
				ID:          *questionID,
				Text:        deref(questionText),
				Difficulty:  domain.Difficulty(deref(difficulty)),
				Explanation: deref(explanation),
			})
			n++
		}
		if optionID != nil {
			quiz.Questions[n-1].Options = append(quiz.Questions[n-1].Options, domain.Option{
				ID:      *optionID,
				Text:    deref(optionText),
				Correct: isCorrect != nil && *isCorrect,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if !found {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
