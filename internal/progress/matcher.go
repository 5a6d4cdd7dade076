package progress

import (
	"fmt"
	"math"

	"github.com/smallsteps/backend/internal/models"
)

// Match score weights
const (
	baseScore       = 0.5
	ageSpanBonus    = 0.3
	categoryBonus   = 0.2
	difficultyBonus = 0.2
	maxScore        = 1.0
)

// AgeSpan is the [Min, Max] age range spanned by a household's children
type AgeSpan struct {
	Min int
	Max int
}

// HouseholdAgeSpan returns the age span of kids. ok is false when there are
// no kids.
func HouseholdAgeSpan(kids []models.Kid) (span AgeSpan, ok bool) {
	if len(kids) == 0 {
		return AgeSpan{}, false
	}
	span = AgeSpan{Min: kids[0].Age, Max: kids[0].Age}
	for _, k := range kids[1:] {
		span.Min = min(span.Min, k.Age)
		span.Max = max(span.Max, k.Age)
	}
	return span, true
}

// Contains reports whether the activity's age range lies inside the span.
// This is the eligibility filter.
func (s AgeSpan) Contains(a models.Activity) bool {
	return a.AgeMin >= s.Min && a.AgeMax <= s.Max
}

// CoveredBy reports whether the activity's age range covers the whole span.
// This earns the age bonus when scoring and is deliberately the opposite
// direction of Contains.
func (s AgeSpan) CoveredBy(a models.Activity) bool {
	return a.AgeMin <= s.Min && a.AgeMax >= s.Max
}

// SelectTodaysActivity picks the first activity in pool order that fits the
// household age span and was not completed today. pool is expected in store
// order (most recently added first). It returns nil when there are no kids
// or no candidate survives.
func SelectTodaysActivity(kids []models.Kid, completedTodayIDs []string, pool []models.Activity, currentStreak int) *models.DailyActivity {
	span, ok := HouseholdAgeSpan(kids)
	if !ok {
		return nil
	}

	done := toSet(completedTodayIDs)
	for _, a := range pool {
		if _, completed := done[a.ID]; completed {
			continue
		}
		if !span.Contains(a) {
			continue
		}
		return &models.DailyActivity{
			Activity:    a,
			IsCompleted: false,
			StreakCount: currentStreak,
		}
	}
	return nil
}

// RankRecommendations filters pool down to activities the household has
// never completed, that fit the age span and match the preferences, then
// scores each one. Results keep pool order and are cut at limit.
//
// Nil prefs, an empty category list or a nil difficulty act as wildcards.
func RankRecommendations(kids []models.Kid, prefs *models.Preferences, history []models.Completion, pool []models.Activity, limit int) []models.ActivityRecommendation {
	recs := []models.ActivityRecommendation{}

	span, ok := HouseholdAgeSpan(kids)
	if !ok || limit <= 0 {
		return recs
	}

	completed := make(map[string]struct{}, len(history))
	for _, c := range history {
		completed[c.ActivityID] = struct{}{}
	}

	for _, a := range pool {
		if len(recs) == limit {
			break
		}
		if _, seen := completed[a.ID]; seen {
			continue
		}
		if !span.Contains(a) || !matchesPreferences(a, prefs) {
			continue
		}
		recs = append(recs, models.ActivityRecommendation{
			Activity:   a,
			Reason:     RecommendationReason(a, prefs),
			MatchScore: MatchScore(a, prefs, span),
		})
	}
	return recs
}

// MatchScore rates how well an activity suits the household, in [0.5, 1.0]
func MatchScore(a models.Activity, prefs *models.Preferences, span AgeSpan) float64 {
	score := baseScore
	if span.CoveredBy(a) {
		score += ageSpanBonus
	}
	if prefs.HasCategory(a.Category) {
		score += categoryBonus
	}
	if difficultyMatches(a, prefs) {
		score += difficultyBonus
	}
	score = math.Round(score*100) / 100
	return math.Min(score, maxScore)
}

// RecommendationReason returns the single most relevant reason to show.
// Category beats difficulty, which beats the age range fallback.
func RecommendationReason(a models.Activity, prefs *models.Preferences) string {
	switch {
	case prefs.HasCategory(a.Category):
		return fmt.Sprintf("Matches your interest in %s activities", a.Category)
	case difficultyMatches(a, prefs):
		return "Perfect difficulty level for you"
	default:
		return fmt.Sprintf("Great for ages %d-%d", a.AgeMin, a.AgeMax)
	}
}

func matchesPreferences(a models.Activity, prefs *models.Preferences) bool {
	if prefs == nil {
		return true
	}
	if len(prefs.PreferredCategories) > 0 && !prefs.HasCategory(a.Category) {
		return false
	}
	if prefs.PreferredDifficulty != nil && *prefs.PreferredDifficulty != a.DifficultyLevel {
		return false
	}
	return true
}

func difficultyMatches(a models.Activity, prefs *models.Preferences) bool {
	return prefs != nil && prefs.PreferredDifficulty != nil && *prefs.PreferredDifficulty == a.DifficultyLevel
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
