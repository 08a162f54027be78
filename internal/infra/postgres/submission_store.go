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

// SubmissionStore is the transactional submission writer.
type SubmissionStore struct {
	db *bun.DB
}

func NewSubmissionStore(db *bun.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// FinishQuiz upserts the (user, quiz) submission and replaces its answers in one transaction.
// Either every row lands or none does.
func (s *SubmissionStore) FinishQuiz(ctx context.Context, in domain.FinishInput) (domain.Submission, error) {
	var out domain.Submission
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		sub := submissionModel{
			UserID:         in.UserID,
			QuizID:         in.QuizID,
			Score:          in.Score,
			TotalQuestions: len(in.Responses),
			CorrectAnswers: lo.CountBy(in.Responses, func(r domain.Response) bool { return r.IsCorrect }),
			SubmittedAt:    in.SubmittedAt.UTC(),
		}

		var existing submissionModel
		err := tx.NewSelect().Model(&existing).
			Column("id").
			Where("user_id = ?", in.UserID).
			Where("quiz_id = ?", in.QuizID).
			Limit(1).
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(&sub).Exec(ctx); err != nil {
				return fmt.Errorf("insert submission: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find submission: %w", err)
		default:
			sub.ID = existing.ID
			if _, err := tx.NewUpdate().Model(&sub).
				Column("score", "total_questions", "correct_answers", "submitted_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update submission: %w", err)
			}
			if _, err := tx.NewDelete().Model((*answerModel)(nil)).
				Where("submission_id = ?", sub.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete answers: %w", err)
			}
		}

		if len(in.Responses) > 0 {
			answers := lo.Map(in.Responses, func(r domain.Response, _ int) answerModel {
				return answerModel{
					SubmissionID:     sub.ID,
					QuestionID:       r.QuestionID,
					SelectedOptionID: r.SelectedOptionID,
					IsCorrect:        r.IsCorrect,
				}
			})
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}

		out, err = getSubmission(ctx, tx, in.UserID, in.QuizID)
		return err
	})
	if err != nil {
		return domain.Submission{}, fmt.Errorf("finish quiz: %w", err)
	}
	return out, nil
}

func (s *SubmissionStore) GetSubmission(ctx context.Context, userID, quizID string) (domain.Submission, error) {
	return getSubmission(ctx, s.db, userID, quizID)
}

func getSubmission(ctx context.Context, db bun.IDB, userID, quizID string) (domain.Submission, error) {
	var sub submissionModel
	err := db.NewSelect().Model(&sub).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("load submission: %w", err)
	}

	var answers []answerModel
	if err := db.NewSelect().Model(&answers).
		Where("submission_id = ?", sub.ID).
		OrderExpr("id ASC").
		Scan(ctx); err != nil {
		return domain.Submission{}, fmt.Errorf("load answers: %w", err)
	}
	return sub.toDomain(answers), nil
}
