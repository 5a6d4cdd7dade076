package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

// Defaults for a freshly created preferences row
const (
	DefaultNotificationTime     = "09:00"
	DefaultNotificationsEnabled = true
)

type preferencesRepository struct {
	client *supabase.Client
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(client *supabase.Client) PreferencesRepository {
	return &preferencesRepository{client: client}
}

func (r *preferencesRepository) GetOrCreate(ctx context.Context, userID string) (*models.Preferences, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.Query(ctx, "user_preferences", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs []models.Preferences
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(prefs) > 0 {
		return &prefs[0], nil
	}

	// Concurrent first reads race here: the losing insert is ignored and
	// reads the winner's row back.
	data := map[string]interface{}{
		"user_id":               userID,
		"preferred_categories":  []models.ActivityCategory{},
		"notification_time":     DefaultNotificationTime,
		"notifications_enabled": DefaultNotificationsEnabled,
	}

	body, err = r.client.InsertIgnoreDuplicates(ctx, "user_preferences", data, "user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}

	prefs = nil
	if len(body) > 0 {
		if err := json.Unmarshal(body, &prefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	if len(prefs) > 0 {
		return &prefs[0], nil
	}

	body, err = r.client.Query(ctx, "user_preferences", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(prefs) == 0 {
		return nil, fmt.Errorf("no preferences returned")
	}

	return &prefs[0], nil
}

func (r *preferencesRepository) Update(ctx context.Context, p *models.Preferences) (*models.Preferences, error) {
	categories := p.PreferredCategories
	if categories == nil {
		categories = []models.ActivityCategory{}
	}

	data := map[string]interface{}{
		"preferred_categories":   categories,
		"preferred_difficulty":   p.PreferredDifficulty,
		"preferred_duration_max": p.PreferredDurationMax,
		"notification_time":      p.NotificationTime,
		"notifications_enabled":  p.NotificationsEnabled,
	}

	// Use UpdateWhere since the row is keyed by user_id
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", p.UserID),
	}

	body, err := r.client.UpdateWhere(ctx, "user_preferences", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	var prefs []models.Preferences
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(prefs) == 0 {
		return nil, fmt.Errorf("preferences for user %s: %w", p.UserID, ErrNotFound)
	}

	return &prefs[0], nil
}
