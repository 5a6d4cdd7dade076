package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/smallsteps/backend/internal/models"
)

type homeService struct {
	activities ActivityService
	progress   ProgressService
	insights   InsightService
	kids       KidService
}

// NewHomeService creates the home screen aggregator
func NewHomeService(activities ActivityService, progress ProgressService, insights InsightService, kids KidService) HomeService {
	return &homeService{
		activities: activities,
		progress:   progress,
		insights:   insights,
		kids:       kids,
	}
}

func (s *homeService) GetHome(ctx context.Context, userID string) (*models.HomeData, error) {
	var (
		home   models.HomeData
		streak *models.StreakStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		home.DailyActivity, err = s.activities.GetTodaysActivity(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = s.progress.GetStreakStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		home.Insight, err = s.insights.GetRandomInsight(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		home.Kids, err = s.kids.ListKids(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	home.Streak = *streak
	if home.Kids == nil {
		home.Kids = []models.Kid{}
	}
	return &home, nil
}
