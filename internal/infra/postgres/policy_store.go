package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// PolicyStore is the user directory and assignment policy backed by the users and
// assignments tables.
type PolicyStore struct {
	db     *bun.DB
	barred []domain.Role
}

func NewPolicyStore(db *bun.DB, barred ...domain.Role) *PolicyStore {
	return &PolicyStore{db: db, barred: barred}
}

func (s *PolicyStore) Lookup(ctx context.Context, userID string) (domain.User, error) {
	var user userModel
	err := s.db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return domain.User{ID: user.ID, DisplayName: user.DisplayName, Role: domain.Role(user.Role)}, nil
}

func (s *PolicyStore) IsAssigned(ctx context.Context, userID, quizID string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*assignmentModel)(nil)).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return exists, nil
}

// IsBarred reports whether the user's role may not take quizzes. Unknown users are not barred.
func (s *PolicyStore) IsBarred(ctx context.Context, userID string) (bool, error) {
	user, err := s.Lookup(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return slices.Contains(s.barred, user.Role), nil
}

// Assign records that userID must take quizID. Assigning twice is a no-op.
func (s *PolicyStore) Assign(ctx context.Context, userID, quizID string, at time.Time) error {
	_, err := s.db.NewInsert().Model(&assignmentModel{UserID: userID, QuizID: quizID, AssignedAt: at.UTC()}).
		On("CONFLICT (user_id, quiz_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("assign quiz: %w", err)
	}
	return nil
}

// UpsertUser creates or updates a directory entry.
func (s *PolicyStore) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := s.db.NewInsert().Model(&userModel{ID: user.ID, DisplayName: user.DisplayName, Role: string(user.Role)}).
		On("CONFLICT (id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
