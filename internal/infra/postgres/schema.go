package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates every table the service uses. It is idempotent.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model any
		fk    string
	}{
		{model: (*quizModel)(nil)},
		{model: (*questionModel)(nil), fk: `("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`},
		{model: (*optionModel)(nil), fk: `("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`},
		{model: (*userModel)(nil)},
		{model: (*assignmentModel)(nil)},
		{model: (*submissionModel)(nil)},
		{model: (*answerModel)(nil), fk: `("submission_id") REFERENCES "submissions" ("id") ON DELETE CASCADE`},
	}
	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		if table.fk != "" {
			q = q.ForeignKey(table.fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", table.model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{model: (*questionModel)(nil), name: "questions_quiz_position_idx", columns: []string{"quiz_id", "position"}},
		{model: (*optionModel)(nil), name: "options_question_position_idx", columns: []string{"question_id", "position"}},
		{model: (*answerModel)(nil), name: "answers_submission_idx", columns: []string{"submission_id"}},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// DropSchema removes the tables created by CreateSchema, children first.
func DropSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*answerModel)(nil),
		(*submissionModel)(nil),
		(*assignmentModel)(nil),
		(*userModel)(nil),
		(*optionModel)(nil),
		(*questionModel)(nil),
		(*quizModel)(nil),
	}
	for _, model := range models {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table %T: %w", model, err)
		}
	}
	return nil
}
