package models

import "time"

// StreakStats is the streak summary shown on the home and progress screens
type StreakStats struct {
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
	TotalActivities int `json:"total_activities"`
	// DaysSinceLastActivity is nil when the user has never completed an activity
	DaysSinceLastActivity *int `json:"days_since_last_activity"`
}

// DayCompletion is one day of the rolling weekly calendar
type DayCompletion struct {
	Date      string `json:"date"`
	DayName   string `json:"day_name"`
	DayNumber int    `json:"day_number"`
	Completed bool   `json:"completed"`
}

// WeeklyProgress is the 7-day completion calendar ending today, oldest first
type WeeklyProgress struct {
	Days           []DayCompletion `json:"days"`
	CompletionRate float64         `json:"completion_rate"`
}

// DailyActivity is the activity suggested for today
type DailyActivity struct {
	Activity     Activity    `json:"activity"`
	IsCompleted  bool        `json:"is_completed"`
	UserActivity *Completion `json:"user_activity,omitempty"`
	StreakCount  int         `json:"streak_count"`
}

// ActivityRecommendation is a scored catalog activity with a display reason
type ActivityRecommendation struct {
	Activity   Activity `json:"activity"`
	Reason     string   `json:"reason"`
	MatchScore float64  `json:"match_score"`
}

// FavoriteActivity is a completion rated with the maximum score
type FavoriteActivity struct {
	Activity    *Activity `json:"activity"`
	Rating      int       `json:"rating"`
	CompletedAt time.Time `json:"completed_at"`
}

// ActivityStats summarizes rated completions for a parent or a child
type ActivityStats struct {
	TotalActivities    int                `json:"total_activities"`
	FavoriteActivities []FavoriteActivity `json:"favorite_activities"`
	AverageRating      float64            `json:"average_rating"`
}

// ChildActivityStats is ActivityStats for one kid
type ChildActivityStats struct {
	KidID   string `json:"kid_id"`
	KidName string `json:"kid_name"`
	KidAge  int    `json:"kid_age"`
	ActivityStats
}

// FamilyStats combines per-child and parent statistics
type FamilyStats struct {
	Children []ChildActivityStats `json:"children"`
	Parent   ActivityStats        `json:"parent"`
}

// ProgressOverview backs the progress screen
type ProgressOverview struct {
	Streak           StreakStats    `json:"streak"`
	Weekly           WeeklyProgress `json:"weekly"`
	RecentActivities []Completion   `json:"recent_activities"`
}

// HomeData backs the home screen
type HomeData struct {
	DailyActivity *DailyActivity `json:"daily_activity"`
	Streak        StreakStats    `json:"streak"`
	Insight       *Insight       `json:"insight"`
	Kids          []Kid          `json:"kids"`
}
