package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// ContentStore reads and writes quiz content through bun. It serves as the quiz loader when
// the service runs on SQLite and as the writer behind the seed command.
type ContentStore struct {
	db *bun.DB
}

func NewContentStore(db *bun.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz quizModel
	err := s.db.NewSelect().Model(&quiz).Where("id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var questions []questionModel
	if err := s.db.NewSelect().Model(&questions).
		Where("quiz_id = ?", quizID).
		OrderExpr("position ASC, id ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}

	var options []optionModel
	if len(questions) > 0 {
		ids := lo.Map(questions, func(q questionModel, _ int) string { return q.ID })
		if err := s.db.NewSelect().Model(&options).
			Where("question_id IN (?)", bun.In(ids)).
			OrderExpr("position ASC, id ASC").
			Scan(ctx); err != nil {
			return domain.Quiz{}, fmt.Errorf("load options: %w", err)
		}
	}
	byQuestion := lo.GroupBy(options, func(o optionModel) string { return o.QuestionID })

	out := domain.Quiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Active:      quiz.Active,
		Questions:   make([]domain.Question, 0, len(questions)),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, domain.Question{
			ID:          q.ID,
			Text:        q.Text,
			Difficulty:  domain.Difficulty(q.Difficulty),
			Explanation: q.Explanation,
			Options: lo.Map(byQuestion[q.ID], func(o optionModel, _ int) domain.Option {
				return domain.Option{ID: o.ID, Text: o.Text, Correct: o.IsCorrect}
			}),
		})
	}
	return out, nil
}

// SaveQuiz replaces a quiz and all of its questions and options.
func (s *ContentStore) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var questionIDs []string
		if err := tx.NewSelect().Model((*questionModel)(nil)).
			Column("id").
			Where("quiz_id = ?", quiz.ID).
			Scan(ctx, &questionIDs); err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		if len(questionIDs) > 0 {
			if _, err := tx.NewDelete().Model((*optionModel)(nil)).
				Where("question_id IN (?)", bun.In(questionIDs)).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete options: %w", err)
			}
			if _, err := tx.NewDelete().Model((*questionModel)(nil)).
				Where("quiz_id = ?", quiz.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete questions: %w", err)
			}
		}

		if _, err := tx.NewInsert().Model(&quizModel{
			ID:          quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			Active:      quiz.Active,
		}).
			On("CONFLICT (id) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("description = EXCLUDED.description").
			Set("active = EXCLUDED.active").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert quiz: %w", err)
		}

		var questions []questionModel
		var options []optionModel
		for i, q := range quiz.Questions {
			questions = append(questions, questionModel{
				ID:          q.ID,
				QuizID:      quiz.ID,
				Position:    i,
				Text:        q.Text,
				Difficulty:  string(q.Difficulty),
				Explanation: q.Explanation,
			})
			for j, o := range q.Options {
				options = append(options, optionModel{
					ID:         o.ID,
					QuestionID: q.ID,
					Position:   j,
					Text:       o.Text,
					IsCorrect:  o.Correct,
				})
			}
		}
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}
		if len(options) > 0 {
			if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
				return fmt.Errorf("insert options: %w", err)
			}
		}
		return nil
	})
}
