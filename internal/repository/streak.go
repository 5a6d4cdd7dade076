package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type streakRepository struct {
	client *supabase.Client
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(client *supabase.Client) StreakRepository {
	return &streakRepository{client: client}
}

func (r *streakRepository) GetByUserID(ctx context.Context, userID string) (*models.StreakState, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.Query(ctx, "user_streaks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	var streaks []models.StreakState
	if err := json.Unmarshal(body, &streaks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(streaks) == 0 {
		return nil, nil // No streak yet - this is not an error
	}

	return &streaks[0], nil
}

func (r *streakRepository) Create(ctx context.Context, state *models.StreakState) (bool, error) {
	data := streakColumns(state)
	data["user_id"] = state.UserID

	body, err := r.client.InsertIgnoreDuplicates(ctx, "user_streaks", data, "user_id")
	if err != nil {
		return false, fmt.Errorf("failed to create streak: %w", err)
	}

	return insertedRows(body)
}

func (r *streakRepository) Swap(ctx context.Context, prev, next *models.StreakState) (bool, error) {
	query := map[string]interface{}{
		"user_id":          fmt.Sprintf("eq.%s", prev.UserID),
		"current_streak":   fmt.Sprintf("eq.%d", prev.CurrentStreak),
		"longest_streak":   fmt.Sprintf("eq.%d", prev.LongestStreak),
		"total_activities": fmt.Sprintf("eq.%d", prev.TotalActivities),
	}
	if prev.LastActivityDate != nil {
		query["last_activity_date"] = fmt.Sprintf("eq.%s", prev.LastActivityDate.String())
	} else {
		query["last_activity_date"] = "is.null"
	}

	body, err := r.client.UpdateWhere(ctx, "user_streaks", query, streakColumns(next))
	if err != nil {
		return false, fmt.Errorf("failed to update streak: %w", err)
	}

	var streaks []models.StreakState
	if err := json.Unmarshal(body, &streaks); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return len(streaks) > 0, nil
}

func (r *streakRepository) ListActive(ctx context.Context) ([]models.StreakState, error) {
	query := map[string]interface{}{
		"current_streak": "gt.0",
		"select":         "*",
		"order":          "user_id.asc",
	}

	body, err := r.client.Query(ctx, "user_streaks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active streaks: %w", err)
	}

	var streaks []models.StreakState
	if err := json.Unmarshal(body, &streaks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return streaks, nil
}

func streakColumns(state *models.StreakState) map[string]interface{} {
	data := map[string]interface{}{
		"current_streak":     state.CurrentStreak,
		"longest_streak":     state.LongestStreak,
		"total_activities":   state.TotalActivities,
		"last_activity_date": nil,
	}
	if state.LastActivityDate != nil {
		data["last_activity_date"] = state.LastActivityDate.String()
	}
	return data
}
