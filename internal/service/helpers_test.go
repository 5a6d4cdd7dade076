package service

import (
	"time"

	"github.com/smallsteps/backend/internal/models"
)

const (
	testUserID     = "3f2a8c1e-5b7d-4e0a-9c6f-1d2e3f4a5b6c"
	testActivityID = "6f9619ff-8b86-4011-b42d-00c04fc964ff"
	testKidID      = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	testInsightID  = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
)

// testNow is 15:30 UTC on a Monday
var testNow = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

func fixedCalendar() Calendar {
	return Calendar{Location: time.UTC, Now: func() time.Time { return testNow }}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func datePtr(s string) *models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func catalogActivity(id string, ageMin, ageMax int) models.Activity {
	return models.Activity{
		ID:              id,
		Title:           "Activity " + id,
		AgeMin:          ageMin,
		AgeMax:          ageMax,
		Category:        models.CategoryCreative,
		DifficultyLevel: 1,
		DurationMinutes: 15,
	}
}

func completionOf(activity models.Activity, at time.Time) models.Completion {
	a := activity
	return models.Completion{
		ID:          "c-" + activity.ID + "-" + at.Format(time.RFC3339),
		UserID:      testUserID,
		ActivityID:  activity.ID,
		CompletedAt: at,
		Activity:    &a,
	}
}
