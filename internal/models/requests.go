package models

import "time"

// ActivityFilters narrows a catalog listing. All filters are optional.
type ActivityFilters struct {
	AgeMin          *int             `form:"age_min" binding:"omitempty,min=0"`
	AgeMax          *int             `form:"age_max" binding:"omitempty,min=0"`
	Category        ActivityCategory `form:"category" binding:"omitempty,activity_category"`
	DifficultyLevel *int             `form:"difficulty_level" binding:"omitempty,min=1,max=3"`
	DurationMax     *int             `form:"duration_max" binding:"omitempty,min=1"`
}

// CompleteActivityRequest represents the request to log a completion
type CompleteActivityRequest struct {
	KidID          *string    `json:"kid_id" binding:"omitempty,uuid"`
	CompletedAt    *time.Time `json:"completed_at"`
	Rating         *int       `json:"rating" binding:"omitempty,min=1,max=5"`
	ParentRating   *int       `json:"parent_rating" binding:"omitempty,min=1,max=5"`
	ChildRating    *int       `json:"child_rating" binding:"omitempty,min=1,max=5"`
	Notes          *string    `json:"notes" binding:"omitempty,max=1000"`
	DurationActual *int       `json:"duration_actual" binding:"omitempty,min=1"`
}

// CreateKidRequest represents the request to add a child profile
type CreateKidRequest struct {
	Name string `json:"name" binding:"required,max=50"`
	Age  *int   `json:"age" binding:"required,min=0,max=18"`
}

// UpdateKidRequest represents a partial child profile update
type UpdateKidRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=50"`
	Age  *int    `json:"age" binding:"omitempty,min=0,max=18"`
}

// UpdatePreferencesRequest represents a partial preferences update.
// Difficulty and duration may be cleared with an explicit null.
type UpdatePreferencesRequest struct {
	PreferredCategories  *[]ActivityCategory `json:"preferred_categories" binding:"omitempty,dive,activity_category"`
	PreferredDifficulty  Nullable[int]       `json:"preferred_difficulty"`
	PreferredDurationMax Nullable[int]       `json:"preferred_duration_max"`
	NotificationTime     *string             `json:"notification_time" binding:"omitempty,datetime=15:04"`
	NotificationsEnabled *bool               `json:"notifications_enabled"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the signup request
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"omitempty,max=60"`
}

// RefreshRequest exchanges a refresh token for a new session
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest changes the display name attribute
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=1,max=60"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}
