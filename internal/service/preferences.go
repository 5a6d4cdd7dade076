package service

import (
	"context"
	"fmt"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository"
)

type preferenceService struct {
	prefsRepo repository.PreferencesRepository
}

// NewPreferenceService creates a new preferences service
func NewPreferenceService(prefsRepo repository.PreferencesRepository) PreferenceService {
	return &preferenceService{prefsRepo: prefsRepo}
}

func (s *preferenceService) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	return s.prefsRepo.GetOrCreate(ctx, userID)
}

func (s *preferenceService) UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.Preferences, error) {
	prefs, err := s.prefsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PreferredCategories != nil {
		categories := make([]models.ActivityCategory, 0, len(*req.PreferredCategories))
		seen := make(map[models.ActivityCategory]struct{})
		for _, c := range *req.PreferredCategories {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			categories = append(categories, c)
		}
		prefs.PreferredCategories = categories
	}

	if req.PreferredDifficulty.Set {
		if v := req.PreferredDifficulty; v.Valid && (v.Value < models.MinDifficulty || v.Value > models.MaxDifficulty) {
			return nil, fmt.Errorf("%w: preferred_difficulty must be between %d and %d",
				ErrInvalidInput, models.MinDifficulty, models.MaxDifficulty)
		}
		prefs.PreferredDifficulty = req.PreferredDifficulty.ToPtr()
	}

	if req.PreferredDurationMax.Set {
		if v := req.PreferredDurationMax; v.Valid && v.Value <= 0 {
			return nil, fmt.Errorf("%w: preferred_duration_max must be positive", ErrInvalidInput)
		}
		prefs.PreferredDurationMax = req.PreferredDurationMax.ToPtr()
	}

	if req.NotificationTime != nil {
		prefs.NotificationTime = *req.NotificationTime
	}
	if req.NotificationsEnabled != nil {
		prefs.NotificationsEnabled = *req.NotificationsEnabled
	}

	prefs.UserID = userID
	return s.prefsRepo.Update(ctx, prefs)
}
