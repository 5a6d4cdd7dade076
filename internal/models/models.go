package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActivityCategory is the fixed set of activity categories in the catalog
type ActivityCategory string

const (
	CategoryCreative    ActivityCategory = "creative"
	CategoryPhysical    ActivityCategory = "physical"
	CategoryEducational ActivityCategory = "educational"
	CategoryEmotional   ActivityCategory = "emotional"
	CategorySocial      ActivityCategory = "social"
)

// ActivityCategories lists every valid category in display order
var ActivityCategories = []ActivityCategory{
	CategoryCreative,
	CategoryPhysical,
	CategoryEducational,
	CategoryEmotional,
	CategorySocial,
}

// Valid reports whether c is one of the known categories
func (c ActivityCategory) Valid() bool {
	for _, known := range ActivityCategories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	// MinDifficulty and MaxDifficulty bound Activity.DifficultyLevel
	MinDifficulty = 1
	MaxDifficulty = 3

	// MinRating and MaxRating bound parent and child ratings
	MinRating = 1
	MaxRating = 5

	// MaxKidsPerUser is the number of child profiles a parent may register
	MaxKidsPerUser = 3
)

// Instructions holds activity steps. The store keeps them either as one
// free-text string or as an ordered array of strings.
type Instructions []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (in *Instructions) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*in = nil
		return nil
	}

	var steps []string
	if err := json.Unmarshal(data, &steps); err == nil {
		*in = steps
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("instructions must be a string or an array of strings: %w", err)
	}
	if text == "" {
		*in = Instructions{}
		return nil
	}
	*in = Instructions{text}
	return nil
}

// Activity is a guided activity from the read-mostly catalog
type Activity struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Instructions    Instructions     `json:"instructions"`
	AgeMin          int              `json:"age_min"`
	AgeMax          int              `json:"age_max"`
	DurationMinutes int              `json:"duration_minutes"`
	MaterialsNeeded []string         `json:"materials_needed"`
	Category        ActivityCategory `json:"category"`
	DifficultyLevel int              `json:"difficulty_level"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// KidSummary is the embedded kid projection returned with completions
type KidSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Completion is one logged activity completion (a user_activities row).
// A family completing the same activity with several kids on one day
// produces several rows.
type Completion struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ActivityID     string    `json:"activity_id"`
	KidID          *string   `json:"kid_id,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
	Rating         *int      `json:"rating,omitempty"`
	ParentRating   *int      `json:"parent_rating,omitempty"`
	ChildRating    *int      `json:"child_rating,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	DurationActual *int      `json:"duration_actual,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	// Expanded relations (populated on fetch)
	Activity *Activity  `json:"activity,omitempty"`
	Kid      *KidSummary `json:"kid,omitempty"`
}

// StreakState is the per-user streak row maintained on every completion
type StreakState struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalActivities  int       `json:"total_activities"`
	LastActivityDate *Date     `json:"last_activity_date,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Kid is a child profile owned by a parent account
type Kid struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences holds a parent's recommendation preferences. The row is
// created lazily on first read.
type Preferences struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	PreferredCategories  []ActivityCategory `json:"preferred_categories"`
	PreferredDifficulty  *int               `json:"preferred_difficulty,omitempty"`
	PreferredDurationMax *int               `json:"preferred_duration_max,omitempty"`
	NotificationTime     string             `json:"notification_time"`
	NotificationsEnabled bool               `json:"notifications_enabled"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// HasCategory reports whether category is one of the preferred categories
func (p *Preferences) HasCategory(category ActivityCategory) bool {
	if p == nil {
		return false
	}
	for _, c := range p.PreferredCategories {
		if c == category {
			return true
		}
	}
	return false
}

// User represents an authenticated parent account
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredResponse is a finished mutating request kept so a retry carrying
// the same Idempotency-Key gets the original answer
type StoredResponse struct {
	UserID     string          `json:"user_id"`
	Route      string          `json:"route"`
	Key        string          `json:"key"`
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	StoredAt   time.Time       `json:"stored_at"`
}
