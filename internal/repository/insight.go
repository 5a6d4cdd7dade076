package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type insightRepository struct {
	client *supabase.Client
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(client *supabase.Client) InsightRepository {
	return &insightRepository{client: client}
}

func (r *insightRepository) List(ctx context.Context, filter InsightFilter) ([]models.Insight, error) {
	query := map[string]interface{}{
		"select": "*",
		"order":  "created_at.desc",
	}

	if filter.Category != "" {
		query["category"] = fmt.Sprintf("eq.%s", filter.Category)
	}
	if len(filter.AgeRanges) > 0 {
		ranges := make([]string, len(filter.AgeRanges))
		for i, ar := range filter.AgeRanges {
			ranges[i] = fmt.Sprintf("%q", ar)
		}
		query["age_range"] = fmt.Sprintf("in.(%s)", strings.Join(ranges, ","))
	}
	if term := sanitizeSearch(filter.Search); term != "" {
		query["or"] = fmt.Sprintf("(title.ilike.*%s*,content.ilike.*%s*)", term, term)
	}

	body, err := r.client.Query(ctx, "insights", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}

	var insights []models.Insight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return insights, nil
}

func (r *insightRepository) GetByID(ctx context.Context, id string) (*models.Insight, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.QuerySingle(ctx, "insights", query)
	if err != nil {
		if errors.Is(err, supabase.ErrNoRows) {
			return nil, fmt.Errorf("insight %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	var insight models.Insight
	if err := json.Unmarshal(body, &insight); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &insight, nil
}

// sanitizeSearch strips characters that carry meaning inside a PostgREST
// or=() expression or an ilike pattern
func sanitizeSearch(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '%', '"', '\\':
			return -1
		}
		return r
	}, s))
}
