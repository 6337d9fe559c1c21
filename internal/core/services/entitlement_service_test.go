package services

import (
	"context"
	"sync"
	"testing"

	"shipshape/internal/core/domain"
	"shipshape/internal/infrastructure/repositories/memory"
	apperrors "shipshape/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (s *captureSink) Record(_ context.Context, entry domain.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *captureSink) last(t *testing.T) domain.AuditEntry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.entries, "expected an audit entry")
	return s.entries[len(s.entries)-1]
}

func newEntitlementFixture(t *testing.T) (*entitlementService, *memory.SubscriptionRepository, *captureSink) {
	t.Helper()
	repo := memory.NewSubscriptionRepository().(*memory.SubscriptionRepository)
	sink := &captureSink{}
	svc := NewEntitlementService(repo, sink, zap.NewNop().Sugar()).(*entitlementService)
	return svc, repo, sink
}

func seedSubscription(t *testing.T, repo *memory.SubscriptionRepository, userID domain.UserID, plan domain.Plan, status domain.SubscriptionStatus) {
	t.Helper()
	require.NoError(t, repo.Set(context.Background(), &domain.Subscription{
		UserID: userID,
		Plan:   plan,
		Status: status,
	}))
}

func TestAuthorize_NoSubscription(t *testing.T) {
	svc, _, sink := newEntitlementFixture(t)

	err := svc.Authorize(context.Background(), "user-1", "/api/v1/surveys", domain.PlanProfessional)

	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeSubscriptionRequired, appErr.Code)
	assert.Equal(t, "Requires a Professional or Enterprise subscription", appErr.Message)

	entry := sink.last(t)
	assert.Equal(t, domain.AuditDenied, entry.Outcome)
	assert.Equal(t, string(domain.DenialNoSubscription), entry.Reason)
}

func TestAuthorize_InactiveSubscription(t *testing.T) {
	svc, repo, sink := newEntitlementFixture(t)
	seedSubscription(t, repo, "user-1", domain.PlanProfessional, domain.SubscriptionInactive)

	err := svc.Authorize(context.Background(), "user-1", "/api/v1/surveys", domain.PlanProfessional)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeSubscriptionInactive, appErr.Code)
	assert.Equal(t, "Subscription is not active", appErr.Message)
	assert.Equal(t, string(domain.DenialInactive), sink.last(t).Reason)
}

func TestAuthorize_InsufficientPlan(t *testing.T) {
	svc, repo, sink := newEntitlementFixture(t)
	seedSubscription(t, repo, "user-1", domain.PlanProfessional, domain.SubscriptionActive)

	err := svc.Authorize(context.Background(), "user-1", "/api/v1/admin", domain.PlanEnterprise)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	// Client message must match the no-subscription case exactly; only the
	// audit reason tells them apart.
	assert.Equal(t, apperrors.ErrCodeSubscriptionRequired, appErr.Code)
	assert.Equal(t, "Requires a Professional or Enterprise subscription", appErr.Message)
	assert.Equal(t, string(domain.DenialInsufficientPlan), sink.last(t).Reason)
}

func TestAuthorize_ActiveMatchingPlan(t *testing.T) {
	svc, repo, sink := newEntitlementFixture(t)
	seedSubscription(t, repo, "user-1", domain.PlanEnterprise, domain.SubscriptionActive)

	err := svc.Authorize(context.Background(), "user-1", "/api/v1/surveys",
		domain.PlanProfessional, domain.PlanEnterprise)

	require.NoError(t, err)
	entry := sink.last(t)
	assert.Equal(t, domain.AuditGranted, entry.Outcome)
	assert.Empty(t, entry.Reason)
}

func TestAuthorize_EmptyPlanSetAllowsAnyActivePlan(t *testing.T) {
	svc, repo, _ := newEntitlementFixture(t)
	seedSubscription(t, repo, "user-1", domain.PlanProfessional, domain.SubscriptionActive)

	require.NoError(t, svc.Authorize(context.Background(), "user-1", "/api/v1/surveys"))
}

func TestAuthorize_MissingIdentity(t *testing.T) {
	svc, _, _ := newEntitlementFixture(t)

	err := svc.Authorize(context.Background(), "", "/api/v1/surveys", domain.PlanProfessional)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeUnauthenticated, appErr.Code)
}

func TestPlanFor(t *testing.T) {
	svc, repo, _ := newEntitlementFixture(t)

	_, ok := svc.PlanFor(context.Background(), "user-1")
	assert.False(t, ok)

	seedSubscription(t, repo, "user-2", domain.PlanEnterprise, domain.SubscriptionActive)
	plan, ok := svc.PlanFor(context.Background(), "user-2")
	require.True(t, ok)
	assert.Equal(t, domain.PlanEnterprise, plan)
}

func TestAuthorize_CachesSubscriptionLookup(t *testing.T) {
	svc, repo, _ := newEntitlementFixture(t)
	seedSubscription(t, repo, "user-1", domain.PlanProfessional, domain.SubscriptionActive)

	require.NoError(t, svc.Authorize(context.Background(), "user-1", "/a", domain.PlanProfessional))

	// Mutating the store is not observed within the cache TTL.
	seedSubscription(t, repo, "user-1", domain.PlanProfessional, domain.SubscriptionCancelled)
	require.NoError(t, svc.Authorize(context.Background(), "user-1", "/a", domain.PlanProfessional))
}
