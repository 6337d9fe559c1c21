package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/services"
	"shipshape/internal/infrastructure/ratelimit"
	"shipshape/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopSink struct{}

func (nopSink) Record(context.Context, domain.AuditEntry) {}

type fixture struct {
	router        *gin.Engine
	tokens        string
	subscriptions *memory.SubscriptionRepository
}

// newFixture wires the full protected-route pipeline over in-memory
// dependencies: identity from a real token, rate limiting with a tiny
// quota, then the subscription entitlement gate.
func newFixture(t *testing.T, policies map[domain.Plan]ratelimit.Policy) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenService := services.NewTokenService("test-secret", time.Minute, time.Hour)
	subscriptions := memory.NewSubscriptionRepository().(*memory.SubscriptionRepository)
	entitlements := services.NewEntitlementService(subscriptions, nopSink{}, zap.NewNop().Sugar())
	limiter := ratelimit.NewLimiter(policies)

	p := New(zap.NewNop().Sugar(),
		Identity(tokenService),
		RateLimit(limiter, entitlements.PlanFor),
		Entitlement(entitlements, domain.PlanProfessional, domain.PlanEnterprise),
	)

	router := gin.New()
	protected := router.Group("/api/v1", p.Handler())
	protected.GET("/surveys", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	token, err := tokenService.GenerateToken("user-1", "skipper@example.com")
	require.NoError(t, err)

	return &fixture{router: router, tokens: token, subscriptions: subscriptions}
}

func (f *fixture) subscribe(t *testing.T, plan domain.Plan, status domain.SubscriptionStatus) {
	t.Helper()
	require.NoError(t, f.subscriptions.Set(context.Background(), &domain.Subscription{
		UserID: "user-1",
		Plan:   plan,
		Status: status,
	}))
}

func (f *fixture) get(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/surveys", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func envelopeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message    string `json:"message"`
			StatusCode int    `json:"statusCode"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Code, body.Error.StatusCode)
	return body.Error.Message
}

func TestPipeline_MissingToken(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultPolicies())

	w := f.get("")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authorization header required", envelopeMessage(t, w))
}

func TestPipeline_MalformedToken(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultPolicies())

	w := f.get("not-a-real-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid or expired token", envelopeMessage(t, w))
}

func TestPipeline_NoSubscription(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultPolicies())

	w := f.get(f.tokens)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Requires a Professional or Enterprise subscription", envelopeMessage(t, w))
}

func TestPipeline_InactiveSubscription(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultPolicies())
	f.subscribe(t, domain.PlanProfessional, domain.SubscriptionPastDue)

	w := f.get(f.tokens)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Subscription is not active", envelopeMessage(t, w))
}

func TestPipeline_AuthorizedRequest(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultPolicies())
	f.subscribe(t, domain.PlanProfessional, domain.SubscriptionActive)

	w := f.get(f.tokens)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "99", w.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("RateLimit-Reset"))
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestPipeline_RateLimitExceeded(t *testing.T) {
	policies := map[domain.Plan]ratelimit.Policy{
		domain.PlanProfessional: {Window: time.Minute, Limit: 2},
		domain.PlanEnterprise:   {Window: time.Minute, Limit: 5},
	}
	f := newFixture(t, policies)
	f.subscribe(t, domain.PlanProfessional, domain.SubscriptionActive)

	assert.Equal(t, http.StatusOK, f.get(f.tokens).Code)
	assert.Equal(t, http.StatusOK, f.get(f.tokens).Code)

	w := f.get(f.tokens)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Flat legacy body shape, not the envelope.
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests, please try again later.", body["error"])

	assert.Equal(t, "2", w.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPipeline_RateLimitRunsBeforeEntitlement(t *testing.T) {
	policies := map[domain.Plan]ratelimit.Policy{
		domain.PlanProfessional: {Window: time.Minute, Limit: 1},
		domain.PlanEnterprise:   {Window: time.Minute, Limit: 1},
	}
	f := newFixture(t, policies)
	// No subscription: the first request is denied by the entitlement
	// stage, repeated probing hits the limiter first.

	assert.Equal(t, http.StatusForbidden, f.get(f.tokens).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.get(f.tokens).Code)
}

func TestWriteError_UnknownErrorBecomesInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", envelopeMessage(t, w))
}
