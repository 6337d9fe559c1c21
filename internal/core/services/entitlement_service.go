package services

import (
	"context"
	"errors"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	"shipshape/pkg/cache"
	apperrors "shipshape/pkg/errors"

	"go.uber.org/zap"
)

const subscriptionCacheTTL = 30 * time.Second

// entitlementService is the subscription gate: it resolves the caller's
// subscription and decides whether the request may proceed. Every decision,
// granted or denied, lands in the audit trail with the precise reason; the
// client-visible message stays generic for the missing-subscription and
// wrong-plan cases so responses do not reveal plan gating.
type entitlementService struct {
	subscriptions ports.SubscriptionRepository
	audit         ports.AuditSink
	cache         *cache.Cache
	logger        *zap.SugaredLogger
}

func NewEntitlementService(
	subscriptions ports.SubscriptionRepository,
	audit ports.AuditSink,
	logger *zap.SugaredLogger,
) ports.EntitlementService {
	return &entitlementService{
		subscriptions: subscriptions,
		audit:         audit,
		cache:         cache.New(subscriptionCacheTTL),
		logger:        logger,
	}
}

func (s *entitlementService) Authorize(ctx context.Context, userID domain.UserID, path string, requiredPlans ...domain.Plan) error {
	if userID == "" {
		return apperrors.NewUnauthenticated("authentication required")
	}

	sub, err := s.lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			s.record(ctx, userID, path, domain.AuditDenied, domain.DenialNoSubscription)
			return apperrors.NewSubscriptionRequired()
		}
		s.logger.Errorw("subscription lookup failed", "user_id", userID, "path", path, "error", err)
		return apperrors.NewPersistence(err)
	}

	if sub.Status != domain.SubscriptionActive {
		s.record(ctx, userID, path, domain.AuditDenied, domain.DenialInactive)
		return apperrors.NewSubscriptionInactive()
	}

	if len(requiredPlans) > 0 && !planIn(sub.Plan, requiredPlans) {
		s.record(ctx, userID, path, domain.AuditDenied, domain.DenialInsufficientPlan)
		return apperrors.NewSubscriptionRequired()
	}

	s.record(ctx, userID, path, domain.AuditGranted, "")
	return nil
}

// PlanFor resolves the caller's plan through the same cached lookup the
// gate uses. Missing subscriptions are not an error here; the rate limiter
// falls back to its strictest policy and the gate owns the denial.
func (s *entitlementService) PlanFor(ctx context.Context, userID domain.UserID) (domain.Plan, bool) {
	sub, err := s.lookup(ctx, userID)
	if err != nil {
		return "", false
	}
	return sub.Plan, true
}

func (s *entitlementService) lookup(ctx context.Context, userID domain.UserID) (*domain.Subscription, error) {
	key := "subscription:" + string(userID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*domain.Subscription), nil
	}

	sub, err := s.subscriptions.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, sub)
	return sub, nil
}

func (s *entitlementService) record(ctx context.Context, userID domain.UserID, path string, outcome domain.AuditOutcome, reason domain.DenialReason) {
	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: time.Now(),
		UserID:    userID,
		Action:    "authorize",
		Resource:  path,
		Outcome:   outcome,
		Reason:    string(reason),
	})
}

func planIn(plan domain.Plan, set []domain.Plan) bool {
	for _, p := range set {
		if p == plan {
			return true
		}
	}
	return false
}
