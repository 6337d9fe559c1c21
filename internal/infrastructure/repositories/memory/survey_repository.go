package memory

import (
	"context"
	"sort"
	"sync"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
)

type SurveyRepository struct {
	mu      sync.RWMutex
	surveys map[domain.SurveyID]*domain.Survey
}

func NewSurveyRepository() ports.SurveyRepository {
	return &SurveyRepository{
		surveys: make(map[domain.SurveyID]*domain.Survey),
	}
}

func (r *SurveyRepository) Insert(ctx context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.surveys[survey.ID]; exists {
		return domain.ErrSurveyExists
	}
	copied := *survey
	r.surveys[survey.ID] = &copied
	return nil
}

func (r *SurveyRepository) GetByID(ctx context.Context, id domain.SurveyID) (*domain.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	survey, exists := r.surveys[id]
	if !exists {
		return nil, domain.ErrSurveyNotFound
	}
	copied := *survey
	return &copied, nil
}

func (r *SurveyRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Survey
	for _, survey := range r.surveys {
		if survey.OwnerID == owner {
			copied := *survey
			out = append(out, &copied)
		}
	}

	// Most recent first.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SurveyRepository) UpdateStatus(ctx context.Context, id domain.SurveyID, status domain.SurveyStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	survey, exists := r.surveys[id]
	if !exists {
		return domain.ErrSurveyNotFound
	}
	survey.Status = status
	return nil
}
