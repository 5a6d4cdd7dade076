// Package progress derives streaks, weekly calendars, recommendations and
// rating statistics from snapshots fetched by the service layer. Every
// function is pure: inputs are never mutated and absent input degrades to an
// empty result instead of an error.
package progress

import (
	"math"
	"time"

	"github.com/smallsteps/backend/internal/models"
)

// WeekLength is the number of days in the rolling weekly calendar
const WeekLength = 7

// ComputeStreakStats returns the stored streak counters verbatim plus the
// number of whole days between the last activity day (midnight in loc) and
// now. A nil state means the user has never completed an activity.
//
// DaysSinceLastActivity is not clamped: a last_activity_date after now
// yields a negative value.
func ComputeStreakStats(state *models.StreakState, now time.Time, loc *time.Location) models.StreakStats {
	if state == nil {
		return models.StreakStats{}
	}

	stats := models.StreakStats{
		CurrentStreak:   state.CurrentStreak,
		LongestStreak:   state.LongestStreak,
		TotalActivities: state.TotalActivities,
	}

	if state.LastActivityDate != nil {
		if loc == nil {
			loc = time.UTC
		}
		y, m, d := state.LastActivityDate.Date()
		lastMidnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		days := int(math.Floor(float64(now.Sub(lastMidnight)) / float64(24*time.Hour)))
		stats.DaysSinceLastActivity = &days
	}

	return stats
}

// ComputeWeeklyCompletion builds the calendar for the 7 days ending on
// today's day in loc, oldest first. A day is completed when at least one
// completion falls on it; completions outside the window are ignored.
func ComputeWeeklyCompletion(completions []models.Completion, today time.Time, loc *time.Location) models.WeeklyProgress {
	end := models.NewDate(today, loc)
	start := end.AddDays(-(WeekLength - 1))

	activitiesPerDay := make(map[string]map[string]struct{}, WeekLength)
	for _, c := range completions {
		day := models.NewDate(c.CompletedAt, loc)
		if day.Before(start) || end.Before(day) {
			continue
		}
		key := day.String()
		if activitiesPerDay[key] == nil {
			activitiesPerDay[key] = make(map[string]struct{})
		}
		activitiesPerDay[key][c.ActivityID] = struct{}{}
	}

	days := make([]models.DayCompletion, 0, WeekLength)
	for i := 0; i < WeekLength; i++ {
		day := start.AddDays(i)
		key := day.String()
		days = append(days, models.DayCompletion{
			Date:      key,
			DayName:   day.Weekday().String()[:3],
			DayNumber: day.Day(),
			Completed: len(activitiesPerDay[key]) > 0,
		})
	}

	return models.WeeklyProgress{
		Days:           days,
		CompletionRate: CompletionRate(days),
	}
}

// CompletionRate is the share of completed days in the calendar, in [0,1]
func CompletionRate(days []models.DayCompletion) float64 {
	if len(days) == 0 {
		return 0
	}
	completed := 0
	for _, d := range days {
		if d.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(days))
}

// HasCompletedToday reports whether any completion falls on today's day in loc
func HasCompletedToday(completions []models.Completion, today time.Time, loc *time.Location) bool {
	day := models.NewDate(today, loc)
	for _, c := range completions {
		if models.NewDate(c.CompletedAt, loc).Equal(day) {
			return true
		}
	}
	return false
}

// ActivityIDsOn returns the distinct activity ids completed on day's
// calendar day in loc, in first-seen order.
func ActivityIDsOn(completions []models.Completion, day time.Time, loc *time.Location) []string {
	target := models.NewDate(day, loc)
	seen := make(map[string]struct{})
	ids := []string{}
	for _, c := range completions {
		if !models.NewDate(c.CompletedAt, loc).Equal(target) {
			continue
		}
		if _, ok := seen[c.ActivityID]; ok {
			continue
		}
		seen[c.ActivityID] = struct{}{}
		ids = append(ids, c.ActivityID)
	}
	return ids
}

// AdvanceStreak applies one new completion to the streak state and returns
// the updated copy. A nil state starts a new streak for userID.
//
// distinct reports whether this is the first completion of the activity on
// its day. Only distinct completions increase TotalActivities, so several
// kids logging the same activity on one day count once.
//
// Completions backfilled before the last activity day only affect the total.
func AdvanceStreak(state *models.StreakState, userID string, completedAt time.Time, loc *time.Location, distinct bool) models.StreakState {
	var next models.StreakState
	if state != nil {
		next = *state
	} else {
		next.UserID = userID
	}

	if distinct {
		next.TotalActivities++
	}

	day := models.NewDate(completedAt, loc)
	switch {
	case next.LastActivityDate == nil:
		next.CurrentStreak = 1
		next.LastActivityDate = &day
	default:
		gap := next.LastActivityDate.DaysUntil(day)
		switch {
		case gap == 0:
			if next.CurrentStreak == 0 {
				next.CurrentStreak = 1
			}
		case gap == 1:
			next.CurrentStreak++
			next.LastActivityDate = &day
		case gap > 1:
			next.CurrentStreak = 1
			next.LastActivityDate = &day
		}
	}

	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	return next
}

// ReconcileStreak breaks a current streak whose last activity day is before
// yesterday. It returns the updated copy and whether anything changed.
// LongestStreak is never lowered.
func ReconcileStreak(state models.StreakState, today time.Time, loc *time.Location) (models.StreakState, bool) {
	if state.CurrentStreak == 0 {
		return state, false
	}

	todayDate := models.NewDate(today, loc)
	if state.LastActivityDate != nil && state.LastActivityDate.DaysUntil(todayDate) <= 1 {
		return state, false
	}

	state.CurrentStreak = 0
	return state, true
}
