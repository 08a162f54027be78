package memory

import (
	"context"
	"slices"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// Policy is an in-memory user directory and assignment policy.
type Policy struct {
	barred []domain.Role

	mu          sync.RWMutex
	users       map[string]domain.User
	assignments map[string]map[string]struct{}
}

// NewPolicy bars the given roles from taking quizzes.
func NewPolicy(barred ...domain.Role) *Policy {
	return &Policy{
		barred:      barred,
		users:       make(map[string]domain.User),
		assignments: make(map[string]map[string]struct{}),
	}
}

func (p *Policy) AddUser(user domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.ID] = user
}

func (p *Policy) Assign(userID, quizID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.assignments[userID] == nil {
		p.assignments[userID] = make(map[string]struct{})
	}
	p.assignments[userID][quizID] = struct{}{}
}

func (p *Policy) Lookup(_ context.Context, userID string) (domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (p *Policy) IsAssigned(_ context.Context, userID, quizID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.assignments[userID][quizID]
	return ok, nil
}

// IsBarred treats unknown users as not barred; the assignment check still applies to them.
func (p *Policy) IsBarred(ctx context.Context, userID string) (bool, error) {
	user, err := p.Lookup(ctx, userID)
	if err != nil {
		return false, nil
	}
	return slices.Contains(p.barred, user.Role), nil
}
