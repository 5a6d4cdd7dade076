package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/progress"
	"github.com/smallsteps/backend/internal/repository"
)

const defaultRecentLimit = 10

type progressService struct {
	completionRepo repository.CompletionRepository
	streakRepo     repository.StreakRepository
	cal            Calendar
}

// NewProgressService creates a new progress service
func NewProgressService(completionRepo repository.CompletionRepository, streakRepo repository.StreakRepository, cal Calendar) ProgressService {
	return &progressService{
		completionRepo: completionRepo,
		streakRepo:     streakRepo,
		cal:            cal,
	}
}

func (s *progressService) GetStreakStats(ctx context.Context, userID string) (*models.StreakStats, error) {
	state, err := s.streakRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	stats := progress.ComputeStreakStats(state, s.cal.Today(), s.cal.Location)
	return &stats, nil
}

func (s *progressService) GetWeeklyCompletion(ctx context.Context, userID string) (*models.WeeklyProgress, error) {
	today := s.cal.Today()
	_, end := s.cal.DayBounds(today)
	start := end.AddDate(0, 0, -progress.WeekLength)

	completions, err := s.completionRepo.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly completions: %w", err)
	}

	weekly := progress.ComputeWeeklyCompletion(completions, today, s.cal.Location)
	return &weekly, nil
}

func (s *progressService) HasCompletedToday(ctx context.Context, userID string) (bool, error) {
	today := s.cal.Today()
	from, to := s.cal.DayBounds(today)

	completions, err := s.completionRepo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to get today's completions: %w", err)
	}
	return progress.HasCompletedToday(completions, today, s.cal.Location), nil
}

func (s *progressService) GetRecentActivities(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	completions, err := s.completionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activities: %w", err)
	}
	return progress.DedupeByActivityTitle(completions), nil
}

func (s *progressService) GetOverview(ctx context.Context, userID string) (*models.ProgressOverview, error) {
	var (
		streak *models.StreakStats
		weekly *models.WeeklyProgress
		recent []models.Completion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		streak, err = s.GetStreakStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = s.GetWeeklyCompletion(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.GetRecentActivities(gctx, userID, defaultRecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ProgressOverview{
		Streak:           *streak,
		Weekly:           *weekly,
		RecentActivities: recent,
	}, nil
}
