package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	"shipshape/internal/infrastructure/repositories/memory"
	apperrors "shipshape/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	mu     sync.Mutex
	groups []string
	events []interface{}
}

func (p *capturePublisher) Publish(group string, event interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, group)
	p.events = append(p.events, event)
}

func newSurveyFixture(t *testing.T) (ports.SurveyService, *memory.SurveyRepository, *capturePublisher) {
	t.Helper()
	repo := memory.NewSurveyRepository().(*memory.SurveyRepository)
	pub := &capturePublisher{}
	svc := NewSurveyService(repo, pub, &captureSink{}, zap.NewNop().Sugar())
	return svc, repo, pub
}

func validInput() ports.CreateSurveyInput {
	return ports.CreateSurveyInput{
		Title:       "Annual hull inspection",
		VesselName:  "MV Northern Star",
		Type:        domain.SurveyTypeAnnual,
		ScheduledAt: time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		Location:    "Rotterdam",
		Description: "Full hull and machinery survey",
	}
}

func TestCreate_Valid(t *testing.T) {
	svc, repo, pub := newSurveyFixture(t)

	survey, err := svc.Create(context.Background(), "owner-1", validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, survey.ID)
	assert.Equal(t, domain.StatusDraft, survey.Status)
	assert.Equal(t, domain.UserID("owner-1"), survey.OwnerID)
	assert.False(t, survey.CreatedAt.IsZero())

	stored, err := repo.GetByID(context.Background(), survey.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.Title, stored.Title)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.groups, 1)
	assert.Equal(t, "survey:"+string(survey.ID), pub.groups[0])
}

func TestCreate_ValidationOrder(t *testing.T) {
	svc, repo, _ := newSurveyFixture(t)

	tests := []struct {
		name      string
		mutate    func(*ports.CreateSurveyInput)
		wantField string
	}{
		{
			name:      "title over limit",
			mutate:    func(in *ports.CreateSurveyInput) { in.Title = strings.Repeat("a", 201) },
			wantField: "title",
		},
		{
			name:      "title empty",
			mutate:    func(in *ports.CreateSurveyInput) { in.Title = "" },
			wantField: "title",
		},
		{
			name:      "vessel name over limit",
			mutate:    func(in *ports.CreateSurveyInput) { in.VesselName = strings.Repeat("b", 101) },
			wantField: "vessel_name",
		},
		{
			name:      "unknown survey type",
			mutate:    func(in *ports.CreateSurveyInput) { in.Type = "quinquennial" },
			wantField: "survey_type",
		},
		{
			name:      "missing scheduled time",
			mutate:    func(in *ports.CreateSurveyInput) { in.ScheduledAt = time.Time{} },
			wantField: "scheduled_at",
		},
		{
			name:      "location over limit",
			mutate:    func(in *ports.CreateSurveyInput) { in.Location = strings.Repeat("c", 201) },
			wantField: "location",
		},
		{
			name:      "description over limit",
			mutate:    func(in *ports.CreateSurveyInput) { in.Description = strings.Repeat("d", 2001) },
			wantField: "description",
		},
		{
			name: "title reported before vessel name",
			mutate: func(in *ports.CreateSurveyInput) {
				in.Title = strings.Repeat("a", 201)
				in.VesselName = strings.Repeat("b", 101)
			},
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), "owner-1", input)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Context["field"])
		})
	}

	// Nothing invalid was persisted.
	surveys, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, surveys)
}

func TestCreate_DescriptionOptional(t *testing.T) {
	svc, _, _ := newSurveyFixture(t)

	input := validInput()
	input.Description = ""

	_, err := svc.Create(context.Background(), "owner-1", input)
	require.NoError(t, err)
}

func TestGet_UniformNotFound(t *testing.T) {
	svc, _, _ := newSurveyFixture(t)

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	require.NoError(t, err)

	_, missingErr := svc.Get(context.Background(), "owner-1", "no-such-id")
	_, foreignErr := svc.Get(context.Background(), "intruder", created.ID)

	for _, err := range []error{missingErr, foreignErr} {
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
		assert.Equal(t, "survey not found", appErr.Message)
	}
}

func TestList_OwnerScopedNewestFirst(t *testing.T) {
	svc, repo, _ := newSurveyFixture(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"s-old", "s-mid", "s-new"} {
		require.NoError(t, repo.Insert(context.Background(), &domain.Survey{
			ID:          domain.SurveyID(id),
			OwnerID:     "owner-1",
			Title:       "Survey " + id,
			VesselName:  "MV Test",
			Type:        domain.SurveyTypeCondition,
			Status:      domain.StatusDraft,
			ScheduledAt: base,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Insert(context.Background(), &domain.Survey{
		ID:        "s-other",
		OwnerID:   "owner-2",
		Title:     "Foreign survey",
		CreatedAt: base,
	}))

	surveys, err := svc.List(context.Background(), "owner-1")
	require.NoError(t, err)

	require.Len(t, surveys, 3)
	assert.Equal(t, domain.SurveyID("s-new"), surveys[0].ID)
	assert.Equal(t, domain.SurveyID("s-mid"), surveys[1].ID)
	assert.Equal(t, domain.SurveyID("s-old"), surveys[2].ID)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, pub := newSurveyFixture(t)

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), "owner-1", created.ID, domain.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), "owner-1", created.ID, "sunk")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)

	_, err = svc.UpdateStatus(context.Background(), "intruder", created.ID, domain.StatusScheduled)
	appErr = apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Len(t, pub.events, 2)
}
