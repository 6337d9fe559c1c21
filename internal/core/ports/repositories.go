package ports

import (
	"context"

	"shipshape/internal/core/domain"
)

type SurveyRepository interface {
	Insert(ctx context.Context, survey *domain.Survey) error
	GetByID(ctx context.Context, id domain.SurveyID) (*domain.Survey, error)
	// ListByOwner returns the owner's surveys ordered by creation time
	// descending.
	ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Survey, error)
	UpdateStatus(ctx context.Context, id domain.SurveyID, status domain.SurveyStatus) error
}

// SubscriptionRepository reads subscription records owned by the billing
// system. Set exists for seeding and billing webhooks, not for the gate.
type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID domain.UserID) (*domain.Subscription, error)
	Set(ctx context.Context, sub *domain.Subscription) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
