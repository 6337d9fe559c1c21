package domain

import "time"

type Plan string

const (
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is owned by the billing system; this service only reads it.
type Subscription struct {
	UserID    UserID             `json:"user_id"`
	Plan      Plan               `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DenialReason is the server-side reason an authorization was refused.
// It is logged in the audit trail but never returned to clients verbatim.
type DenialReason string

const (
	DenialNoSubscription   DenialReason = "no_subscription"
	DenialInactive         DenialReason = "inactive_subscription"
	DenialInsufficientPlan DenialReason = "insufficient_plan"
)
