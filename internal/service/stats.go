package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/progress"
	"github.com/smallsteps/backend/internal/repository"
)

// maxKidFetches caps concurrent per-kid completion queries
const maxKidFetches = 4

type statsService struct {
	completionRepo repository.CompletionRepository
	kidRepo        repository.KidRepository
}

// NewStatsService creates a new statistics service
func NewStatsService(completionRepo repository.CompletionRepository, kidRepo repository.KidRepository) StatsService {
	return &statsService{
		completionRepo: completionRepo,
		kidRepo:        kidRepo,
	}
}

// GetChildStats aggregates child ratings for every kid. The result follows
// the order of the kids list.
func (s *statsService) GetChildStats(ctx context.Context, userID string) ([]models.ChildActivityStats, error) {
	kids, err := s.kidRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}

	results := make([]models.ChildActivityStats, len(kids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxKidFetches)
	for i, kid := range kids {
		i, kid := i, kid
		g.Go(func() error {
			kctx := logger.ContextWithFields(gctx, logger.String("kid_id", kid.ID))
			completions, err := s.completionRepo.ListByKid(kctx, userID, kid.ID)
			if err != nil {
				return fmt.Errorf("failed to list completions for kid %s: %w", kid.ID, err)
			}
			results[i] = models.ChildActivityStats{
				KidID:         kid.ID,
				KidName:       kid.Name,
				KidAge:        kid.Age,
				ActivityStats: progress.Aggregate(completions, progress.ChildRating),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *statsService) GetParentStats(ctx context.Context, userID string) (*models.ActivityStats, error) {
	completions, err := s.completionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	stats := progress.Aggregate(completions, progress.ParentRating)
	return &stats, nil
}

func (s *statsService) GetFamilyStats(ctx context.Context, userID string) (*models.FamilyStats, error) {
	var (
		children []models.ChildActivityStats
		parent   *models.ActivityStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		children, err = s.GetChildStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		parent, err = s.GetParentStats(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.FamilyStats{Children: children, Parent: *parent}, nil
}
