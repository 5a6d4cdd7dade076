package service

import (
	"context"

	"github.com/smallsteps/backend/internal/models"
)

// ActivityService defines the interface for catalog and completion logic
type ActivityService interface {
	ListActivities(ctx context.Context, filters *models.ActivityFilters) ([]models.Activity, error)
	GetActivity(ctx context.Context, activityID string) (*models.Activity, error)
	// GetTodaysActivity returns nil without error when nothing fits the household
	GetTodaysActivity(ctx context.Context, userID string) (*models.DailyActivity, error)
	GetRecommendations(ctx context.Context, userID string, limit int) ([]models.ActivityRecommendation, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]models.Completion, error)
	CompleteActivity(ctx context.Context, userID, activityID string, req *models.CompleteActivityRequest) (*models.Completion, error)
}

// ProgressService defines the interface for streak and weekly progress views
type ProgressService interface {
	GetStreakStats(ctx context.Context, userID string) (*models.StreakStats, error)
	GetWeeklyCompletion(ctx context.Context, userID string) (*models.WeeklyProgress, error)
	HasCompletedToday(ctx context.Context, userID string) (bool, error)
	GetRecentActivities(ctx context.Context, userID string, limit int) ([]models.Completion, error)
	GetOverview(ctx context.Context, userID string) (*models.ProgressOverview, error)
}

// StatsService defines the interface for rating statistics
type StatsService interface {
	GetChildStats(ctx context.Context, userID string) ([]models.ChildActivityStats, error)
	GetParentStats(ctx context.Context, userID string) (*models.ActivityStats, error)
	GetFamilyStats(ctx context.Context, userID string) (*models.FamilyStats, error)
}

// KidService defines the interface for child profile management
type KidService interface {
	ListKids(ctx context.Context, userID string) ([]models.Kid, error)
	CreateKid(ctx context.Context, userID string, req *models.CreateKidRequest) (*models.Kid, error)
	UpdateKid(ctx context.Context, userID, kidID string, req *models.UpdateKidRequest) (*models.Kid, error)
	DeleteKid(ctx context.Context, userID, kidID string) error
}

// PreferenceService defines the interface for recommendation preferences
type PreferenceService interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.Preferences, error)
}

// InsightService defines the interface for parenting insights and bookmarks
type InsightService interface {
	ListInsights(ctx context.Context, userID string, q models.InsightQuery) ([]models.Insight, error)
	GetRelevantInsights(ctx context.Context, userID string) ([]models.Insight, error)
	// GetRandomInsight returns nil without error when no insight is relevant
	GetRandomInsight(ctx context.Context, userID string) (*models.Insight, error)
	ListBookmarks(ctx context.Context, userID string) ([]models.Insight, error)
	BookmarkStatus(ctx context.Context, userID string, insightIDs []string) (map[string]bool, error)
	AddBookmark(ctx context.Context, userID, insightID string) (*models.InsightBookmark, error)
	RemoveBookmark(ctx context.Context, userID, insightID string) error
}

// HomeService defines the interface for the home screen aggregate
type HomeService interface {
	GetHome(ctx context.Context, userID string) (*models.HomeData, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
	UpdateProfile(ctx context.Context, accessToken string, req *models.UpdateProfileRequest) (*models.User, error)
}

// StreakMaintenance resets streaks that lapsed without a completion
type StreakMaintenance interface {
	// ReconcileAll returns the number of streak rows that were reset
	ReconcileAll(ctx context.Context) (int, error)
}
