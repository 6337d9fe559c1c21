package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const surveyKeyPrefix = "survey:"

func surveyKey(id domain.SurveyID) string {
	return surveyKeyPrefix + string(id)
}

func ownerIndexKey(owner domain.UserID) string {
	return "surveys:owner:" + string(owner)
}

// SurveyRepository stores surveys as JSON values with a per-owner index set.
type SurveyRepository struct {
	client *redis.Client
}

func NewSurveyRepository(client *redis.Client) ports.SurveyRepository {
	return &SurveyRepository{client: client}
}

func (r *SurveyRepository) Insert(ctx context.Context, survey *domain.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}

	ok, err := r.client.SetNX(ctx, surveyKey(survey.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("store survey: %w", err)
	}
	if !ok {
		return domain.ErrSurveyExists
	}

	if err := r.client.SAdd(ctx, ownerIndexKey(survey.OwnerID), string(survey.ID)).Err(); err != nil {
		return fmt.Errorf("index survey: %w", err)
	}
	return nil
}

func (r *SurveyRepository) GetByID(ctx context.Context, id domain.SurveyID) (*domain.Survey, error) {
	data, err := r.client.Get(ctx, surveyKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSurveyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}

	var survey domain.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, fmt.Errorf("unmarshal survey: %w", err)
	}
	return &survey, nil
}

func (r *SurveyRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Survey, error) {
	ids, err := r.client.SMembers(ctx, ownerIndexKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("load owner index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = surveyKey(domain.SurveyID(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load surveys: %w", err)
	}

	out := make([]*domain.Survey, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a value; skip
		}
		var survey domain.Survey
		if err := json.Unmarshal([]byte(raw), &survey); err != nil {
			return nil, fmt.Errorf("unmarshal survey: %w", err)
		}
		out = append(out, &survey)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SurveyRepository) UpdateStatus(ctx context.Context, id domain.SurveyID, status domain.SurveyStatus) error {
	survey, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	survey.Status = status

	data, err := json.Marshal(survey)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}
	if err := r.client.Set(ctx, surveyKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("store survey: %w", err)
	}
	return nil
}
