package memory

import (
	"context"
	"strings"
	"sync"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
}

func NewUserRepository() ports.UserRepository {
	return &UserRepository{
		byEmail: make(map[string]*domain.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return domain.ErrUserExists
	}
	copied := *user
	r.byEmail[key] = &copied
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
