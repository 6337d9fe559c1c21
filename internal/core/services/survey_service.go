package services

import (
	"context"
	"errors"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	apperrors "shipshape/pkg/errors"
	"shipshape/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type surveyService struct {
	surveys   ports.SurveyRepository
	publisher ports.EventPublisher
	audit     ports.AuditSink
	logger    *zap.SugaredLogger
}

func NewSurveyService(
	surveys ports.SurveyRepository,
	publisher ports.EventPublisher,
	audit ports.AuditSink,
	logger *zap.SugaredLogger,
) ports.SurveyService {
	return &surveyService{
		surveys:   surveys,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
	}
}

// validateCreate checks constraints in declaration order and reports only
// the first violation.
func validateCreate(input ports.CreateSurveyInput) error {
	if err := validation.ValidateTitle(input.Title); err != nil {
		return apperrors.NewValidation("title", err.Error())
	}
	if err := validation.ValidateVesselName(input.VesselName); err != nil {
		return apperrors.NewValidation("vessel_name", err.Error())
	}
	if !domain.ValidSurveyType(input.Type) {
		return apperrors.NewValidation("survey_type", "must be one of annual, condition, damage, pre-purchase")
	}
	if input.ScheduledAt.IsZero() {
		return apperrors.NewValidation("scheduled_at", "must be a valid date-time")
	}
	if err := validation.ValidateLocation(input.Location); err != nil {
		return apperrors.NewValidation("location", err.Error())
	}
	if err := validation.ValidateDescription(input.Description); err != nil {
		return apperrors.NewValidation("description", err.Error())
	}
	return nil
}

func (s *surveyService) Create(ctx context.Context, owner domain.UserID, input ports.CreateSurveyInput) (*domain.Survey, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	survey := &domain.Survey{
		ID:          domain.SurveyID(uuid.New().String()),
		OwnerID:     owner,
		Title:       input.Title,
		VesselName:  input.VesselName,
		Type:        input.Type,
		ScheduledAt: input.ScheduledAt,
		Location:    input.Location,
		Description: input.Description,
		Status:      domain.StatusDraft,
		CreatedAt:   time.Now(),
	}

	if err := s.surveys.Insert(ctx, survey); err != nil {
		// The attempted payload is logged for diagnostics only and never
		// returned to the client.
		s.logger.Errorw("survey insert failed",
			"owner_id", owner,
			"title", input.Title,
			"vessel_name", input.VesselName,
			"survey_type", input.Type,
			"error", err,
		)
		s.recordAudit(ctx, owner, "survey.create", "", domain.AuditFailure)
		return nil, apperrors.NewPersistence(err)
	}

	s.recordAudit(ctx, owner, "survey.create", string(survey.ID), domain.AuditSuccess)
	s.publisher.Publish(SurveyGroup(survey.ID), SurveyEvent{
		Type:   "survey_created",
		Survey: survey,
	})

	return survey, nil
}

func (s *surveyService) List(ctx context.Context, owner domain.UserID) ([]*domain.Survey, error) {
	surveys, err := s.surveys.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Errorw("survey list failed", "owner_id", owner, "error", err)
		return nil, apperrors.NewPersistence(err)
	}
	return surveys, nil
}

// Get does not distinguish a missing survey from one owned by somebody
// else; both come back as not-found so ids cannot be probed.
func (s *surveyService) Get(ctx context.Context, owner domain.UserID, id domain.SurveyID) (*domain.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSurveyNotFound) {
			return nil, apperrors.NewNotFound("survey")
		}
		s.logger.Errorw("survey get failed", "owner_id", owner, "survey_id", id, "error", err)
		return nil, apperrors.NewPersistence(err)
	}
	if survey.OwnerID != owner {
		return nil, apperrors.NewNotFound("survey")
	}
	return survey, nil
}

func (s *surveyService) UpdateStatus(ctx context.Context, owner domain.UserID, id domain.SurveyID, status domain.SurveyStatus) (*domain.Survey, error) {
	if !domain.ValidSurveyStatus(status) {
		return nil, apperrors.NewValidation("status", "must be one of draft, scheduled, in_progress, completed, cancelled")
	}

	survey, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.surveys.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Errorw("survey status update failed", "owner_id", owner, "survey_id", id, "status", status, "error", err)
		s.recordAudit(ctx, owner, "survey.update_status", string(id), domain.AuditFailure)
		return nil, apperrors.NewPersistence(err)
	}
	survey.Status = status

	s.recordAudit(ctx, owner, "survey.update_status", string(id), domain.AuditSuccess)
	s.publisher.Publish(SurveyGroup(id), SurveyEvent{
		Type:   "survey_updated",
		Survey: survey,
	})

	return survey, nil
}

func (s *surveyService) recordAudit(ctx context.Context, owner domain.UserID, action, resource string, outcome domain.AuditOutcome) {
	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: time.Now(),
		UserID:    owner,
		Action:    action,
		Resource:  resource,
		Outcome:   outcome,
	})
}

// SurveyEvent is the payload broadcast to a survey's subscriber group.
type SurveyEvent struct {
	Type   string         `json:"type"`
	Survey *domain.Survey `json:"survey"`
}

// SurveyGroup names the realtime subscriber group for a survey.
func SurveyGroup(id domain.SurveyID) string {
	return "survey:" + string(id)
}
