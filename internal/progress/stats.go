package progress

import (
	"math"
	"slices"

	"github.com/smallsteps/backend/internal/models"
)

// MaxFavorites caps ActivityStats.FavoriteActivities
const MaxFavorites = 3

// RatingField selects which rating of a completion is aggregated
type RatingField int

const (
	// ParentRating aggregates Completion.ParentRating
	ParentRating RatingField = iota
	// ChildRating aggregates Completion.ChildRating
	ChildRating
)

func (f RatingField) value(c models.Completion) *int {
	if f == ChildRating {
		return c.ChildRating
	}
	return c.ParentRating
}

// String returns the column name of the rating field
func (f RatingField) String() string {
	if f == ChildRating {
		return "child_rating"
	}
	return "parent_rating"
}

// Aggregate reduces rated completions to distinct-activity statistics.
//
// Completions are first ordered most recent first (ties keep input order),
// so the rating kept for a repeated activity is always its latest one.
// Favorites come from the rated rows before deduplication and are returned
// in that recency order whatever order the caller passed in.
func Aggregate(completions []models.Completion, field RatingField) models.ActivityStats {
	rated := make([]models.Completion, 0, len(completions))
	for _, c := range completions {
		if field.value(c) != nil {
			rated = append(rated, c)
		}
	}
	slices.SortStableFunc(rated, func(a, b models.Completion) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})

	seen := make(map[string]struct{}, len(rated))
	sum := 0
	for _, c := range rated {
		if _, dup := seen[c.ActivityID]; dup {
			continue
		}
		seen[c.ActivityID] = struct{}{}
		sum += *field.value(c)
	}

	stats := models.ActivityStats{
		TotalActivities:    len(seen),
		FavoriteActivities: []models.FavoriteActivity{},
	}
	if stats.TotalActivities > 0 {
		stats.AverageRating = roundTenths(float64(sum) / float64(stats.TotalActivities))
	}

	for _, c := range rated {
		if len(stats.FavoriteActivities) == MaxFavorites {
			break
		}
		if rating := *field.value(c); rating == models.MaxRating {
			stats.FavoriteActivities = append(stats.FavoriteActivities, models.FavoriteActivity{
				Activity:    c.Activity,
				Rating:      rating,
				CompletedAt: c.CompletedAt,
			})
		}
	}

	return stats
}

// DedupeByActivityTitle keeps one completion per activity title, the most
// recent one, in the order titles first appear. Completions without an
// expanded activity are dropped.
func DedupeByActivityTitle(completions []models.Completion) []models.Completion {
	out := []models.Completion{}
	index := make(map[string]int)
	for _, c := range completions {
		if c.Activity == nil {
			continue
		}
		i, ok := index[c.Activity.Title]
		if !ok {
			index[c.Activity.Title] = len(out)
			out = append(out, c)
			continue
		}
		if c.CompletedAt.After(out[i].CompletedAt) {
			out[i] = c
		}
	}
	return out
}

// roundTenths rounds half up at the tenths digit
func roundTenths(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
