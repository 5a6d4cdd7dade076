package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type kidRepository struct {
	client *supabase.Client
}

// NewKidRepository creates a new kid repository
func NewKidRepository(client *supabase.Client) KidRepository {
	return &kidRepository{client: client}
}

func (r *kidRepository) ListByUser(ctx context.Context, userID string) ([]models.Kid, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "created_at.asc",
	}

	body, err := r.client.Query(ctx, "kids", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}

	var kids []models.Kid
	if err := json.Unmarshal(body, &kids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return kids, nil
}

func (r *kidRepository) GetByID(ctx context.Context, userID, id string) (*models.Kid, error) {
	query := map[string]interface{}{
		"id":      fmt.Sprintf("eq.%s", id),
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.QuerySingle(ctx, "kids", query)
	if err != nil {
		if errors.Is(err, supabase.ErrNoRows) {
			return nil, fmt.Errorf("kid %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}

	var kid models.Kid
	if err := json.Unmarshal(body, &kid); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &kid, nil
}

func (r *kidRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	n, err := r.client.Count(ctx, "kids", map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count kids: %w", err)
	}
	return n, nil
}

func (r *kidRepository) Create(ctx context.Context, kid *models.Kid) (*models.Kid, error) {
	data := map[string]interface{}{
		"user_id": kid.UserID,
		"name":    kid.Name,
		"age":     kid.Age,
	}

	body, err := r.client.Insert(ctx, "kids", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create kid: %w", err)
	}

	var kids []models.Kid
	if err := json.Unmarshal(body, &kids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(kids) == 0 {
		return nil, fmt.Errorf("no kid returned")
	}

	return &kids[0], nil
}

func (r *kidRepository) Update(ctx context.Context, kid *models.Kid) (*models.Kid, error) {
	data := map[string]interface{}{
		"name": kid.Name,
		"age":  kid.Age,
	}

	// Scope by owner so one parent can never touch another parent's kid
	query := map[string]interface{}{
		"id":      fmt.Sprintf("eq.%s", kid.ID),
		"user_id": fmt.Sprintf("eq.%s", kid.UserID),
	}

	body, err := r.client.UpdateWhere(ctx, "kids", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update kid: %w", err)
	}

	var kids []models.Kid
	if err := json.Unmarshal(body, &kids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(kids) == 0 {
		return nil, fmt.Errorf("kid %s: %w", kid.ID, ErrNotFound)
	}

	return &kids[0], nil
}

func (r *kidRepository) Delete(ctx context.Context, userID, id string) error {
	query := map[string]interface{}{
		"id":      fmt.Sprintf("eq.%s", id),
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	if err := r.client.DeleteWhere(ctx, "kids", query); err != nil {
		return fmt.Errorf("failed to delete kid: %w", err)
	}

	return nil
}
