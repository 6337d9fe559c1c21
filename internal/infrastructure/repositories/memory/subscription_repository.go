package memory

import (
	"context"
	"sync"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
)

type SubscriptionRepository struct {
	mu            sync.RWMutex
	subscriptions map[domain.UserID]*domain.Subscription
}

func NewSubscriptionRepository() ports.SubscriptionRepository {
	return &SubscriptionRepository{
		subscriptions: make(map[domain.UserID]*domain.Subscription),
	}
}

func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID domain.UserID) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.subscriptions[userID]
	if !exists {
		return nil, domain.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (r *SubscriptionRepository) Set(ctx context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *sub
	r.subscriptions[sub.UserID] = &copied
	return nil
}
