package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

func subscriptionKey(userID domain.UserID) string {
	return "subscription:" + string(userID)
}

type SubscriptionRepository struct {
	client *redis.Client
}

func NewSubscriptionRepository(client *redis.Client) ports.SubscriptionRepository {
	return &SubscriptionRepository{client: client}
}

func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID domain.UserID) (*domain.Subscription, error) {
	data, err := r.client.Get(ctx, subscriptionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	var sub domain.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Set(ctx context.Context, sub *domain.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	if err := r.client.Set(ctx, subscriptionKey(sub.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("store subscription: %w", err)
	}
	return nil
}
