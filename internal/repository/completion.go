package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

// completionSelect expands the activity and kid of every completion
const completionSelect = "*,activity:activities(*),kid:kids(id,name,age)"

type completionRepository struct {
	client *supabase.Client
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(client *supabase.Client) CompletionRepository {
	return &completionRepository{client: client}
}

func (r *completionRepository) Create(ctx context.Context, c *models.Completion) (*models.Completion, error) {
	data := map[string]interface{}{
		"user_id":      c.UserID,
		"activity_id":  c.ActivityID,
		"completed_at": c.CompletedAt.UTC().Format(time.RFC3339Nano),
	}

	if c.KidID != nil {
		data["kid_id"] = *c.KidID
	}
	if c.Rating != nil {
		data["rating"] = *c.Rating
	}
	if c.ParentRating != nil {
		data["parent_rating"] = *c.ParentRating
	}
	if c.ChildRating != nil {
		data["child_rating"] = *c.ChildRating
	}
	if c.Notes != nil {
		data["notes"] = *c.Notes
	}
	if c.DurationActual != nil {
		data["duration_actual"] = *c.DurationActual
	}

	body, err := r.client.Insert(ctx, "user_activities", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}

	var completions []models.Completion
	if err := json.Unmarshal(body, &completions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(completions) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	return &completions[0], nil
}

func (r *completionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  completionSelect,
		"order":   "completed_at.desc",
	}
	if limit > 0 {
		query["limit"] = limit
	}

	return r.list(ctx, query)
}

func (r *completionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Completion, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     completedAtRange(from, to),
		"select":  completionSelect,
		"order":   "completed_at.desc",
	}

	return r.list(ctx, query)
}

func (r *completionRepository) ListByKid(ctx context.Context, userID, kidID string) ([]models.Completion, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"kid_id":  fmt.Sprintf("eq.%s", kidID),
		"select":  completionSelect,
		"order":   "completed_at.desc",
	}

	return r.list(ctx, query)
}

func (r *completionRepository) ClaimActivityDay(ctx context.Context, userID, activityID string, day models.Date) (bool, error) {
	data := map[string]interface{}{
		"user_id":     userID,
		"activity_id": activityID,
		"day":         day.String(),
	}

	body, err := r.client.InsertIgnoreDuplicates(ctx, "user_activity_days", data, "user_id,activity_id,day")
	if err != nil {
		return false, fmt.Errorf("failed to claim activity day: %w", err)
	}

	return insertedRows(body)
}

func (r *completionRepository) list(ctx context.Context, query map[string]interface{}) ([]models.Completion, error) {
	body, err := r.client.Query(ctx, "user_activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	var completions []models.Completion
	if err := json.Unmarshal(body, &completions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return completions, nil
}

// completedAtRange builds a PostgREST and=() filter for [from, to)
func completedAtRange(from, to time.Time) string {
	return fmt.Sprintf("(completed_at.gte.%s,completed_at.lt.%s)",
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// insertedRows reports whether an ignore-duplicates insert wrote a row
func insertedRows(body []byte) (bool, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return len(rows) > 0, nil
}
