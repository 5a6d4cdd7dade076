package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/smallsteps/backend/internal/models"
)

// ErrNotFound is returned when a single row lookup matches nothing
var ErrNotFound = errors.New("not found")

// ActivityRepository defines the interface for activity catalog access
type ActivityRepository interface {
	// List returns catalog activities matching filters, most recently added first
	List(ctx context.Context, filters *models.ActivityFilters) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
}

// CompletionRepository defines the interface for user_activities access.
// Rows are returned most recent first with activity and kid expanded.
type CompletionRepository interface {
	Create(ctx context.Context, completion *models.Completion) (*models.Completion, error)
	// ListByUser returns the user's completions; limit <= 0 means all
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Completion, error)
	// ListByUserBetween returns completions with from <= completed_at < to
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Completion, error)
	ListByKid(ctx context.Context, userID, kidID string) ([]models.Completion, error)
	// ClaimActivityDay records that the user completed the activity on day.
	// It reports true only for the first claim of that activity and day,
	// so concurrent completions agree on a single winner.
	ClaimActivityDay(ctx context.Context, userID, activityID string, day models.Date) (bool, error)
}

// StreakRepository defines the interface for user_streaks access
type StreakRepository interface {
	// GetByUserID returns nil without error when the user has no streak row
	GetByUserID(ctx context.Context, userID string) (*models.StreakState, error)
	// Create inserts the user's first row. It reports false when a row
	// already exists.
	Create(ctx context.Context, state *models.StreakState) (bool, error)
	// Swap replaces prev with next only while the stored row still equals
	// prev. It reports false when another writer changed the row first.
	Swap(ctx context.Context, prev, next *models.StreakState) (bool, error)
	// ListActive returns every row with a current streak above zero
	ListActive(ctx context.Context) ([]models.StreakState, error)
}

// KidRepository defines the interface for child profile access
type KidRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Kid, error)
	GetByID(ctx context.Context, userID, id string) (*models.Kid, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, kid *models.Kid) (*models.Kid, error)
	Update(ctx context.Context, kid *models.Kid) (*models.Kid, error)
	Delete(ctx context.Context, userID, id string) error
}

// PreferencesRepository defines the interface for user_preferences access
type PreferencesRepository interface {
	// GetOrCreate returns the user's row, creating the defaults on first use
	GetOrCreate(ctx context.Context, userID string) (*models.Preferences, error)
	Update(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error)
}

// InsightFilter narrows an insight listing. Zero values match everything.
type InsightFilter struct {
	Category  models.InsightCategory
	AgeRanges []models.AgeRange
	// Search is a case-insensitive substring of title or content
	Search string
}

// InsightRepository defines the interface for insight catalog access
type InsightRepository interface {
	List(ctx context.Context, filter InsightFilter) ([]models.Insight, error)
	GetByID(ctx context.Context, id string) (*models.Insight, error)
}

// BookmarkRepository defines the interface for insight bookmark access
type BookmarkRepository interface {
	// ListByUser returns bookmarks with the insight expanded, newest first
	ListByUser(ctx context.Context, userID string) ([]models.InsightBookmark, error)
	// BookmarkedIDs returns the subset of insightIDs the user bookmarked
	BookmarkedIDs(ctx context.Context, userID string, insightIDs []string) ([]string, error)
	// Create is idempotent: bookmarking twice keeps a single row
	Create(ctx context.Context, userID, insightID string) (*models.InsightBookmark, error)
	Delete(ctx context.Context, userID, insightID string) error
}

// ReplayRepository keeps finished responses for Idempotency-Key retries
type ReplayRepository interface {
	// Find returns the response stored for the user, route and key inside
	// the replay window, or nil
	Find(ctx context.Context, userID, route, key string) (*models.StoredResponse, error)
	// Save records resp, replacing an expired response under the same key
	Save(ctx context.Context, resp *models.StoredResponse) error
}
