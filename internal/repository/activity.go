package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type activityRepository struct {
	client *supabase.Client
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(client *supabase.Client) ActivityRepository {
	return &activityRepository{client: client}
}

func (r *activityRepository) List(ctx context.Context, filters *models.ActivityFilters) ([]models.Activity, error) {
	query := map[string]interface{}{
		"select": "*",
		"order":  "created_at.desc",
	}

	if filters != nil {
		if filters.AgeMin != nil {
			query["age_min"] = fmt.Sprintf("gte.%d", *filters.AgeMin)
		}
		if filters.AgeMax != nil {
			query["age_max"] = fmt.Sprintf("lte.%d", *filters.AgeMax)
		}
		if filters.Category != "" {
			query["category"] = fmt.Sprintf("eq.%s", filters.Category)
		}
		if filters.DifficultyLevel != nil {
			query["difficulty_level"] = fmt.Sprintf("eq.%d", *filters.DifficultyLevel)
		}
		if filters.DurationMax != nil {
			query["duration_minutes"] = fmt.Sprintf("lte.%d", *filters.DurationMax)
		}
	}

	body, err := r.client.Query(ctx, "activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return activities, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.QuerySingle(ctx, "activities", query)
	if err != nil {
		if errors.Is(err, supabase.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	var activity models.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &activity, nil
}
