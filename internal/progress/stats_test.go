package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallsteps/backend/internal/models"
)

func rated(activityID string, parent, child *int, at time.Time) models.Completion {
	return models.Completion{
		ID:           activityID + "-" + at.Format(time.RFC3339),
		ActivityID:   activityID,
		ParentRating: parent,
		ChildRating:  child,
		CompletedAt:  at,
		Activity:     &models.Activity{ID: activityID, Title: "Activity " + activityID},
	}
}

func TestAggregate_DedupesByActivity(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []models.Completion{
		rated("A", intPtr(5), nil, base),
		rated("A", intPtr(3), nil, base.Add(-24*time.Hour)),
		rated("B", intPtr(5), nil, base.Add(-48*time.Hour)),
	}

	stats := Aggregate(completions, ParentRating)

	assert.Equal(t, 2, stats.TotalActivities)
	assert.Equal(t, 5.0, stats.AverageRating)
}

func TestAggregate_TiesKeepInputOrder(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []models.Completion{
		rated("A", intPtr(5), nil, at),
		rated("A", intPtr(3), nil, at),
		rated("B", intPtr(5), nil, at),
	}

	stats := Aggregate(completions, ParentRating)

	assert.Equal(t, 2, stats.TotalActivities)
	assert.Equal(t, 5.0, stats.AverageRating)
}

func TestAggregate_KeepsMostRecentRating(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	// oldest first on purpose
	completions := []models.Completion{
		rated("A", intPtr(2), nil, base.Add(-48*time.Hour)),
		rated("A", intPtr(4), nil, base),
	}

	stats := Aggregate(completions, ParentRating)

	assert.Equal(t, 1, stats.TotalActivities)
	assert.Equal(t, 4.0, stats.AverageRating)
}

func TestAggregate_RatingField(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []models.Completion{
		rated("A", intPtr(4), nil, base),
		rated("B", nil, intPtr(5), base.Add(-time.Hour)),
		rated("C", intPtr(3), intPtr(2), base.Add(-2*time.Hour)),
	}

	parent := Aggregate(completions, ParentRating)
	assert.Equal(t, 2, parent.TotalActivities)
	assert.Equal(t, 3.5, parent.AverageRating)
	assert.Empty(t, parent.FavoriteActivities)

	child := Aggregate(completions, ChildRating)
	assert.Equal(t, 2, child.TotalActivities)
	assert.Equal(t, 3.5, child.AverageRating)
	require.Len(t, child.FavoriteActivities, 1)
	assert.Equal(t, "B", child.FavoriteActivities[0].Activity.ID)
	assert.Equal(t, 5, child.FavoriteActivities[0].Rating)
}

func TestAggregate_Rounding(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "thirds round down", ratings: []int{4, 4, 5}, want: 4.3},
		{name: "two thirds round up", ratings: []int{4, 5, 5}, want: 4.7},
		{name: "half up at the hundredths", ratings: []int{5, 4, 4, 4}, want: 4.3},
		{name: "exact", ratings: []int{1, 2}, want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := make([]models.Completion, 0, len(tt.ratings))
			for i, r := range tt.ratings {
				completions = append(completions, rated(fmt.Sprintf("act-%d", i), intPtr(r), nil, base.Add(-time.Duration(i)*time.Hour)))
			}
			assert.Equal(t, tt.want, Aggregate(completions, ParentRating).AverageRating)
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil, ParentRating)

	assert.Zero(t, stats.TotalActivities)
	assert.Zero(t, stats.AverageRating)
	assert.NotNil(t, stats.FavoriteActivities)
	assert.Empty(t, stats.FavoriteActivities)

	unrated := []models.Completion{{ActivityID: "A", CompletedAt: time.Now()}}
	assert.Zero(t, Aggregate(unrated, ChildRating).TotalActivities)
}

func TestAggregate_FavoritesCap(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var completions []models.Completion
	for i := 0; i < 6; i++ {
		completions = append(completions, rated(fmt.Sprintf("act-%d", i), intPtr(5), nil, base.Add(-time.Duration(i)*time.Hour)))
	}

	stats := Aggregate(completions, ParentRating)

	require.Len(t, stats.FavoriteActivities, MaxFavorites)
	assert.Equal(t, "act-0", stats.FavoriteActivities[0].Activity.ID)
	assert.Equal(t, "act-2", stats.FavoriteActivities[2].Activity.ID)
}

func TestAggregate_FavoritesAreNotDeduplicated(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []models.Completion{
		rated("A", intPtr(5), nil, base),
		rated("A", intPtr(5), nil, base.Add(-24*time.Hour)),
	}

	stats := Aggregate(completions, ParentRating)

	assert.Equal(t, 1, stats.TotalActivities)
	assert.Len(t, stats.FavoriteActivities, 2)
}

func TestAggregate_DoesNotReorderInput(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []models.Completion{
		rated("old", intPtr(5), nil, base.Add(-time.Hour)),
		rated("new", intPtr(5), nil, base),
	}

	first := Aggregate(completions, ParentRating)
	second := Aggregate(completions, ParentRating)

	assert.Equal(t, "old", completions[0].ActivityID)
	assert.Equal(t, first, second)
}

func TestDedupeByActivityTitle(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	older := rated("A", nil, nil, base.Add(-time.Hour))
	newer := rated("A", nil, nil, base)
	other := rated("B", nil, nil, base.Add(-2*time.Hour))
	orphan := models.Completion{ActivityID: "C", CompletedAt: base}

	got := DedupeByActivityTitle([]models.Completion{older, other, newer, orphan})

	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, other.ID, got[1].ID)
	assert.Empty(t, DedupeByActivityTitle(nil))
}

func TestAggregate_FavoritesMostRecentFirst(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	ascending := []models.Completion{
		rated("first", intPtr(5), nil, base.Add(-2*time.Hour)),
		rated("second", intPtr(5), nil, base.Add(-time.Hour)),
		rated("third", intPtr(5), nil, base),
	}

	stats := Aggregate(ascending, ParentRating)

	require.Len(t, stats.FavoriteActivities, 3)
	assert.Equal(t, "third", stats.FavoriteActivities[0].Activity.ID)
	assert.Equal(t, "second", stats.FavoriteActivities[1].Activity.ID)
	assert.Equal(t, "first", stats.FavoriteActivities[2].Activity.ID)
}
