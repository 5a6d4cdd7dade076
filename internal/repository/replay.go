package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

// DefaultReplayWindow is how long a stored response answers retries
const DefaultReplayWindow = 24 * time.Hour

type replayRepository struct {
	client *supabase.Client
	window time.Duration
	now    func() time.Time
}

// NewReplayRepository creates a repository over the request_replays table.
// Responses older than window are ignored and overwritten on the next save.
func NewReplayRepository(client *supabase.Client, window time.Duration) ReplayRepository {
	if window <= 0 {
		window = DefaultReplayWindow
	}
	return &replayRepository{client: client, window: window, now: time.Now}
}

func (r *replayRepository) Find(ctx context.Context, userID, route, key string) (*models.StoredResponse, error) {
	cutoff := r.now().Add(-r.window).UTC()
	query := map[string]interface{}{
		"user_id":   fmt.Sprintf("eq.%s", userID),
		"route":     fmt.Sprintf("eq.%s", route),
		"key":       fmt.Sprintf("eq.%s", key),
		"stored_at": fmt.Sprintf("gt.%s", cutoff.Format(time.RFC3339)),
		"limit":     1,
	}

	body, err := r.client.Query(ctx, "request_replays", query)
	if err != nil {
		return nil, fmt.Errorf("failed to find stored response: %w", err)
	}

	var stored []models.StoredResponse
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored response: %w", err)
	}

	if len(stored) == 0 {
		return nil, nil
	}

	return &stored[0], nil
}

func (r *replayRepository) Save(ctx context.Context, resp *models.StoredResponse) error {
	data := map[string]interface{}{
		"user_id":     resp.UserID,
		"route":       resp.Route,
		"key":         resp.Key,
		"status_code": resp.StatusCode,
		"body":        nil,
		"stored_at":   r.now().UTC().Format(time.RFC3339Nano),
	}
	if len(resp.Body) > 0 {
		data["body"] = resp.Body
	}

	if _, err := r.client.Upsert(ctx, "request_replays", data, "user_id,route,key"); err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}

	return nil
}
