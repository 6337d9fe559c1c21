package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	"shipshape/internal/infrastructure/ratelimit"
	apperrors "shipshape/pkg/errors"
	"shipshape/pkg/logger"

	"github.com/gin-gonic/gin"
)

const userIDContextKey = "user_id"

// CurrentUser returns the authenticated caller's id, if the identity stage
// has run.
func CurrentUser(c *gin.Context) (domain.UserID, bool) {
	v, exists := c.Get(userIDContextKey)
	if !exists {
		return "", false
	}
	userID, ok := v.(domain.UserID)
	return userID, ok && userID != ""
}

// identityStage resolves the bearer token into an identity on the request
// context. Everything downstream depends on it.
type identityStage struct {
	tokens ports.TokenService
}

func Identity(tokens ports.TokenService) Stage {
	return &identityStage{tokens: tokens}
}

func (s *identityStage) Name() string { return "identity" }

func (s *identityStage) Attempt(c *gin.Context) error {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return apperrors.NewUnauthenticated("invalid authorization header format")
	}

	claims, err := s.tokens.ValidateToken(parts[1])
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "invalid or expired token", 401)
	}

	c.Set(userIDContextKey, claims.UserID)
	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, string(claims.UserID))
	c.Request = c.Request.WithContext(ctx)
	return nil
}

// PlanResolver maps an identity to its subscription plan for rate-limit
// policy selection. A missing subscription is not an error here; the
// entitlement stage owns that denial, the limiter just uses the strictest
// policy.
type PlanResolver func(ctx context.Context, userID domain.UserID) (domain.Plan, bool)

type rateLimitStage struct {
	limiter *ratelimit.Limiter
	plan    PlanResolver
}

func RateLimit(limiter *ratelimit.Limiter, plan PlanResolver) Stage {
	return &rateLimitStage{limiter: limiter, plan: plan}
}

func (s *rateLimitStage) Name() string { return "rate_limit" }

func (s *rateLimitStage) Attempt(c *gin.Context) error {
	userID, ok := CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	plan, _ := s.plan(c.Request.Context(), userID)
	decision := s.limiter.Admit(string(userID), plan)

	// Standard draft RateLimit headers on every admission attempt; the
	// legacy X-RateLimit variants are deliberately not set.
	c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Header("RateLimit-Reset", strconv.Itoa(int(time.Until(decision.Reset).Seconds())))

	if !decision.Allowed {
		retryAfter := int(decision.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return apperrors.NewRateLimited().WithContext("retry_after_seconds", retryAfter)
	}
	return nil
}

// entitlementStage gates the route on the caller's subscription plan.
type entitlementStage struct {
	entitlements  ports.EntitlementService
	requiredPlans []domain.Plan
}

func Entitlement(entitlements ports.EntitlementService, requiredPlans ...domain.Plan) Stage {
	return &entitlementStage{entitlements: entitlements, requiredPlans: requiredPlans}
}

func (s *entitlementStage) Name() string { return "entitlement" }

func (s *entitlementStage) Attempt(c *gin.Context) error {
	userID, ok := CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return s.entitlements.Authorize(c.Request.Context(), userID, c.Request.URL.Path, s.requiredPlans...)
}
