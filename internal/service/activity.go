package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/progress"
	"github.com/smallsteps/backend/internal/repository"
)

const (
	defaultRecommendationLimit = 5
	defaultHistoryLimit        = 20
	maxListLimit               = 100
	maxStreakAttempts          = 5
)

var errStreakContention = errors.New("streak row kept changing")

// Limits bounds list endpoints when the caller does not pass a limit
type Limits struct {
	Recommendations int
	History         int
}

type activityService struct {
	activityRepo   repository.ActivityRepository
	completionRepo repository.CompletionRepository
	streakRepo     repository.StreakRepository
	kidRepo        repository.KidRepository
	prefsRepo      repository.PreferencesRepository
	cal            Calendar
	limits         Limits
}

// NewActivityService creates a new activity service
func NewActivityService(
	activityRepo repository.ActivityRepository,
	completionRepo repository.CompletionRepository,
	streakRepo repository.StreakRepository,
	kidRepo repository.KidRepository,
	prefsRepo repository.PreferencesRepository,
	cal Calendar,
	limits Limits,
) ActivityService {
	if limits.Recommendations <= 0 {
		limits.Recommendations = defaultRecommendationLimit
	}
	if limits.History <= 0 {
		limits.History = defaultHistoryLimit
	}
	return &activityService{
		activityRepo:   activityRepo,
		completionRepo: completionRepo,
		streakRepo:     streakRepo,
		kidRepo:        kidRepo,
		prefsRepo:      prefsRepo,
		cal:            cal,
		limits:         limits,
	}
}

func (s *activityService) ListActivities(ctx context.Context, filters *models.ActivityFilters) ([]models.Activity, error) {
	if filters != nil && filters.Category != "" && !filters.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, filters.Category)
	}
	return s.activityRepo.List(ctx, filters)
}

func (s *activityService) GetActivity(ctx context.Context, activityID string) (*models.Activity, error) {
	if err := ValidateID(activityID); err != nil {
		return nil, err
	}
	return s.activityRepo.GetByID(ctx, activityID)
}

func (s *activityService) GetTodaysActivity(ctx context.Context, userID string) (*models.DailyActivity, error) {
	today := s.cal.Today()
	from, to := s.cal.DayBounds(today)

	var (
		kids      []models.Kid
		doneToday []models.Completion
		streak    *models.StreakState
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kids, err = s.kidRepo.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		doneToday, err = s.completionRepo.ListByUserBetween(gctx, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = s.streakRepo.GetByUserID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load today's activity inputs: %w", err)
	}

	span, ok := progress.HouseholdAgeSpan(kids)
	if !ok {
		return nil, nil
	}

	pool, err := s.activityRepo.List(ctx, householdFilters(span))
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate activities: %w", err)
	}

	currentStreak := 0
	if streak != nil {
		currentStreak = streak.CurrentStreak
	}

	return progress.SelectTodaysActivity(kids, progress.ActivityIDsOn(doneToday, today, s.cal.Location), pool, currentStreak), nil
}

func (s *activityService) GetRecommendations(ctx context.Context, userID string, limit int) ([]models.ActivityRecommendation, error) {
	if limit <= 0 {
		limit = s.limits.Recommendations
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var (
		kids    []models.Kid
		prefs   *models.Preferences
		history []models.Completion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kids, err = s.kidRepo.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		prefs, err = s.prefsRepo.GetOrCreate(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.completionRepo.ListByUser(gctx, userID, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load recommendation inputs: %w", err)
	}

	span, ok := progress.HouseholdAgeSpan(kids)
	if !ok {
		return []models.ActivityRecommendation{}, nil
	}

	pool, err := s.activityRepo.List(ctx, householdFilters(span))
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate activities: %w", err)
	}

	return progress.RankRecommendations(kids, prefs, history, pool, limit), nil
}

func (s *activityService) GetHistory(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = s.limits.History
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.completionRepo.ListByUser(ctx, userID, limit)
}

func (s *activityService) CompleteActivity(ctx context.Context, userID, activityID string, req *models.CompleteActivityRequest) (*models.Completion, error) {
	if err := ValidateID(activityID); err != nil {
		return nil, err
	}
	for _, r := range []*int{req.Rating, req.ParentRating, req.ChildRating} {
		if r != nil && (*r < models.MinRating || *r > models.MaxRating) {
			return nil, ErrInvalidRating
		}
	}

	if _, err := s.activityRepo.GetByID(ctx, activityID); err != nil {
		return nil, err
	}

	if req.KidID != nil {
		ctx = logger.ContextWithFields(ctx, logger.String("kid_id", *req.KidID))
		if _, err := s.kidRepo.GetByID(ctx, userID, *req.KidID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("kid %s: %w", *req.KidID, ErrForbidden)
			}
			return nil, err
		}
	}

	completedAt := s.cal.Today()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	created, err := s.completionRepo.Create(ctx, &models.Completion{
		UserID:         userID,
		ActivityID:     activityID,
		KidID:          req.KidID,
		CompletedAt:    completedAt.UTC(),
		Rating:         req.Rating,
		ParentRating:   req.ParentRating,
		ChildRating:    req.ChildRating,
		Notes:          req.Notes,
		DurationActual: req.DurationActual,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	if err := s.recordStreak(ctx, userID, activityID, completedAt); err != nil {
		// Streak failures do not fail the completion.
		logger.Ctx(ctx).Error("failed to advance streak",
			logger.String("activity_id", activityID),
			logger.Err(err),
		)
	}

	return created, nil
}

// recordStreak claims the completion's activity day and folds the
// completion into the streak row. The row is written with compare-and-swap
// and re-read when another completion or the nightly reset got there first.
func (s *activityService) recordStreak(ctx context.Context, userID, activityID string, completedAt time.Time) error {
	distinct, err := s.completionRepo.ClaimActivityDay(ctx, userID, activityID, models.NewDate(completedAt, s.cal.Location))
	if err != nil {
		return err
	}

	for attempt := 1; attempt <= maxStreakAttempts; attempt++ {
		state, err := s.streakRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		next := progress.AdvanceStreak(state, userID, completedAt, s.cal.Location, distinct)
		var written bool
		if state == nil {
			written, err = s.streakRepo.Create(ctx, &next)
		} else {
			written, err = s.streakRepo.Swap(ctx, state, &next)
		}
		if err != nil {
			return err
		}
		if written {
			return nil
		}
		logger.Ctx(ctx).Debug("streak row changed concurrently, retrying", logger.Int("attempt", attempt))
	}

	return errStreakContention
}

// householdFilters asks the store for activities whose age range lies
// inside the household span
func householdFilters(span progress.AgeSpan) *models.ActivityFilters {
	lo, hi := span.Min, span.Max
	return &models.ActivityFilters{AgeMin: &lo, AgeMax: &hi}
}
