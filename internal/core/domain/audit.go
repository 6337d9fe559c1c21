package domain

import "time"

type AuditOutcome string

const (
	AuditGranted AuditOutcome = "granted"
	AuditDenied  AuditOutcome = "denied"
	AuditSuccess AuditOutcome = "success"
	AuditFailure AuditOutcome = "failure"
)

// AuditEntry captures a security-relevant action. Append-only; entries are
// emitted to a sink and never read back by this service.
type AuditEntry struct {
	Timestamp time.Time
	UserID    UserID
	Action    string
	Resource  string
	Outcome   AuditOutcome
	Reason    string
}
