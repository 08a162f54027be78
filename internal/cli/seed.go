package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"quiz-attempt-service/internal/infra/postgres"
)

// NewSeedCmd loads the demo quiz, users and assignments into the database.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo quizzes, users and assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := runMigrations(ctx, db); err != nil {
				return err
			}

			content := postgres.NewContentStore(db)
			for _, quiz := range demoQuizzes() {
				if err := content.SaveQuiz(ctx, quiz); err != nil {
					return err
				}
			}

			policy := postgres.NewPolicyStore(db)
			for _, user := range demoUsers() {
				if err := policy.UpsertUser(ctx, user); err != nil {
					return err
				}
			}
			now := time.Now()
			for userID, quizIDs := range demoAssignments() {
				for _, quizID := range quizIDs {
					if err := policy.Assign(ctx, userID, quizID, now); err != nil {
						return err
					}
				}
			}
			slog.Info("demo data seeded", "quizzes", len(demoQuizzes()), "users", len(demoUsers()))
			return nil
		},
	}
}
