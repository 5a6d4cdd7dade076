package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository/mocks"
)

func storedPreferences() *models.Preferences {
	return &models.Preferences{
		UserID:               testUserID,
		PreferredCategories:  []models.ActivityCategory{models.CategoryCreative},
		PreferredDifficulty:  intPtr(2),
		PreferredDurationMax: intPtr(30),
		NotificationTime:     "09:00",
		NotificationsEnabled: true,
	}
}

func TestUpdatePreferences_ClearsWithNull(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPreferencesRepository(ctrl)
	svc := NewPreferenceService(repo)

	repo.EXPECT().GetOrCreate(gomock.Any(), testUserID).Return(storedPreferences(), nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Preferences) (*models.Preferences, error) { return p, nil })

	got, err := svc.UpdatePreferences(context.Background(), testUserID, &models.UpdatePreferencesRequest{
		PreferredDifficulty: models.Nullable[int]{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, got.PreferredDifficulty)
	require.NotNil(t, got.PreferredDurationMax, "absent fields are left alone")
	assert.Equal(t, 30, *got.PreferredDurationMax)
	assert.Equal(t, []models.ActivityCategory{models.CategoryCreative}, got.PreferredCategories)
}

func TestUpdatePreferences_SetsFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPreferencesRepository(ctrl)
	svc := NewPreferenceService(repo)

	repo.EXPECT().GetOrCreate(gomock.Any(), testUserID).Return(storedPreferences(), nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Preferences) (*models.Preferences, error) { return p, nil })

	categories := []models.ActivityCategory{models.CategoryPhysical, models.CategorySocial, models.CategoryPhysical}
	enabled := false
	got, err := svc.UpdatePreferences(context.Background(), testUserID, &models.UpdatePreferencesRequest{
		PreferredCategories:  &categories,
		PreferredDurationMax: models.NullableOf(45),
		NotificationTime:     strPtr("18:30"),
		NotificationsEnabled: &enabled,
	})
	require.NoError(t, err)
	assert.Equal(t, []models.ActivityCategory{models.CategoryPhysical, models.CategorySocial}, got.PreferredCategories)
	assert.Equal(t, 45, *got.PreferredDurationMax)
	assert.Equal(t, 2, *got.PreferredDifficulty)
	assert.Equal(t, "18:30", got.NotificationTime)
	assert.False(t, got.NotificationsEnabled)
}

func TestUpdatePreferences_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		req     models.UpdatePreferencesRequest
		wantErr error
	}{
		{
			name:    "unknown category",
			req:     models.UpdatePreferencesRequest{PreferredCategories: &[]models.ActivityCategory{"cooking"}},
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "difficulty out of range",
			req:     models.UpdatePreferencesRequest{PreferredDifficulty: models.NullableOf(4)},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero duration",
			req:     models.UpdatePreferencesRequest{PreferredDurationMax: models.NullableOf(0)},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockPreferencesRepository(ctrl)
			svc := NewPreferenceService(repo)

			repo.EXPECT().GetOrCreate(gomock.Any(), testUserID).Return(storedPreferences(), nil)

			_, err := svc.UpdatePreferences(context.Background(), testUserID, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
