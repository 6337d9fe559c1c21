package audit

import (
	"context"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"

	"go.uber.org/zap"
)

// zapSink writes audit entries as structured log events. zap cores are safe
// for concurrent writers, which is all the append-only contract needs.
type zapSink struct {
	logger *zap.SugaredLogger
}

func NewZapSink(logger *zap.SugaredLogger) ports.AuditSink {
	return &zapSink{logger: logger.Named("audit")}
}

func (s *zapSink) Record(_ context.Context, entry domain.AuditEntry) {
	fields := []interface{}{
		"timestamp", entry.Timestamp,
		"user_id", entry.UserID,
		"action", entry.Action,
		"resource", entry.Resource,
		"outcome", entry.Outcome,
	}
	if entry.Reason != "" {
		fields = append(fields, "reason", entry.Reason)
	}
	s.logger.Infow("audit", fields...)
}
