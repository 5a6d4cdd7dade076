package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type bookmarkRepository struct {
	client *supabase.Client
}

// NewBookmarkRepository creates a new insight bookmark repository
func NewBookmarkRepository(client *supabase.Client) BookmarkRepository {
	return &bookmarkRepository{client: client}
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID string) ([]models.InsightBookmark, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*,insight:insights(*)",
		"order":   "created_at.desc",
	}

	body, err := r.client.Query(ctx, "user_insight_bookmarks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	var bookmarks []models.InsightBookmark
	if err := json.Unmarshal(body, &bookmarks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return bookmarks, nil
}

func (r *bookmarkRepository) BookmarkedIDs(ctx context.Context, userID string, insightIDs []string) ([]string, error) {
	if len(insightIDs) == 0 {
		return []string{}, nil
	}

	query := map[string]interface{}{
		"user_id":    fmt.Sprintf("eq.%s", userID),
		"insight_id": fmt.Sprintf("in.(%s)", strings.Join(insightIDs, ",")),
		"select":     "insight_id",
	}

	body, err := r.client.Query(ctx, "user_insight_bookmarks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookmarks: %w", err)
	}

	var rows []struct {
		InsightID string `json:"insight_id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.InsightID)
	}
	return ids, nil
}

func (r *bookmarkRepository) Create(ctx context.Context, userID, insightID string) (*models.InsightBookmark, error) {
	data := map[string]interface{}{
		"user_id":    userID,
		"insight_id": insightID,
	}

	body, err := r.client.Upsert(ctx, "user_insight_bookmarks", data, "user_id,insight_id")
	if err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	var bookmarks []models.InsightBookmark
	if err := json.Unmarshal(body, &bookmarks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no bookmark returned")
	}

	return &bookmarks[0], nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, insightID string) error {
	query := map[string]interface{}{
		"user_id":    fmt.Sprintf("eq.%s", userID),
		"insight_id": fmt.Sprintf("eq.%s", insightID),
	}

	if err := r.client.DeleteWhere(ctx, "user_insight_bookmarks", query); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}
