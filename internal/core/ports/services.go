package ports

import (
	"context"
	"time"

	"shipshape/internal/core/domain"
)

// TokenService issues and validates the bearer tokens that carry a
// caller's identity.
type TokenService interface {
	GenerateToken(userID domain.UserID, email string) (string, error)
	GenerateRefreshToken(userID domain.UserID) (string, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
}

type TokenClaims struct {
	UserID domain.UserID
	Email  string
}

// EntitlementService authorizes a request against the caller's
// subscription. An empty requiredPlans set authorizes any active plan.
type EntitlementService interface {
	Authorize(ctx context.Context, userID domain.UserID, path string, requiredPlans ...domain.Plan) error
	// PlanFor resolves the caller's plan for rate-limit policy selection.
	// ok is false when no subscription exists.
	PlanFor(ctx context.Context, userID domain.UserID) (plan domain.Plan, ok bool)
}

type CreateSurveyInput struct {
	Title       string
	VesselName  string
	Type        domain.SurveyType
	ScheduledAt time.Time
	Location    string
	Description string
}

type SurveyService interface {
	Create(ctx context.Context, owner domain.UserID, input CreateSurveyInput) (*domain.Survey, error)
	List(ctx context.Context, owner domain.UserID) ([]*domain.Survey, error)
	Get(ctx context.Context, owner domain.UserID, id domain.SurveyID) (*domain.Survey, error)
	UpdateStatus(ctx context.Context, owner domain.UserID, id domain.SurveyID, status domain.SurveyStatus) (*domain.Survey, error)
}

// AuditSink receives append-only audit entries. Implementations must be
// safe for concurrent writers.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

// EventPublisher fans an event out to the realtime subscribers of a group.
type EventPublisher interface {
	Publish(group string, event interface{})
}

// Analyzer is the opaque downstream AI analysis collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, payload []byte) ([]byte, error)
}
