package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository"
)

type insightService struct {
	insightRepo  repository.InsightRepository
	bookmarkRepo repository.BookmarkRepository
	kidRepo      repository.KidRepository
	intn         func(n int) int
}

// InsightOption configures an insight service
type InsightOption func(*insightService)

// WithRandomSource replaces the uniform index picker used by GetRandomInsight.
// intn must return a value in [0, n).
func WithRandomSource(intn func(n int) int) InsightOption {
	return func(s *insightService) {
		s.intn = intn
	}
}

// NewInsightService creates a new insight service
func NewInsightService(
	insightRepo repository.InsightRepository,
	bookmarkRepo repository.BookmarkRepository,
	kidRepo repository.KidRepository,
	opts ...InsightOption,
) InsightService {
	s := &insightService{
		insightRepo:  insightRepo,
		bookmarkRepo: bookmarkRepo,
		kidRepo:      kidRepo,
		intn:         rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *insightService) ListInsights(ctx context.Context, userID string, q models.InsightQuery) ([]models.Insight, error) {
	filter := repository.InsightFilter{
		Category: q.Category,
		Search:   q.Search,
	}

	switch {
	case q.Relevant:
		ranges, err := s.relevantRanges(ctx, userID)
		if err != nil {
			return nil, err
		}
		filter.AgeRanges = ranges
	case q.AgeRange == models.AgeRangeAll:
		filter.AgeRanges = []models.AgeRange{models.AgeRangeAll}
	case q.AgeRange != "":
		filter.AgeRanges = []models.AgeRange{q.AgeRange, models.AgeRangeAll}
	}

	insights, err := s.insightRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if insights == nil {
		insights = []models.Insight{}
	}
	return insights, nil
}

func (s *insightService) GetRelevantInsights(ctx context.Context, userID string) ([]models.Insight, error) {
	return s.ListInsights(ctx, userID, models.InsightQuery{Relevant: true})
}

func (s *insightService) GetRandomInsight(ctx context.Context, userID string) (*models.Insight, error) {
	insights, err := s.GetRelevantInsights(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(insights) == 0 {
		return nil, nil
	}
	picked := insights[s.intn(len(insights))]
	return &picked, nil
}

// ListBookmarks returns the bookmarked insights, most recently saved first
func (s *insightService) ListBookmarks(ctx context.Context, userID string) ([]models.Insight, error) {
	bookmarks, err := s.bookmarkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	insights := make([]models.Insight, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Insight != nil {
			insights = append(insights, *b.Insight)
		}
	}
	return insights, nil
}

// BookmarkStatus reports, for every requested id, whether the user saved it
func (s *insightService) BookmarkStatus(ctx context.Context, userID string, insightIDs []string) (map[string]bool, error) {
	status := make(map[string]bool, len(insightIDs))
	for _, id := range insightIDs {
		if err := ValidateID(id); err != nil {
			return nil, err
		}
		status[id] = false
	}
	if len(insightIDs) == 0 {
		return status, nil
	}

	saved, err := s.bookmarkRepo.BookmarkedIDs(ctx, userID, insightIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range saved {
		status[id] = true
	}
	return status, nil
}

func (s *insightService) AddBookmark(ctx context.Context, userID, insightID string) (*models.InsightBookmark, error) {
	if err := ValidateID(insightID); err != nil {
		return nil, err
	}
	if _, err := s.insightRepo.GetByID(ctx, insightID); err != nil {
		return nil, err
	}
	return s.bookmarkRepo.Create(ctx, userID, insightID)
}

func (s *insightService) RemoveBookmark(ctx context.Context, userID, insightID string) error {
	if err := ValidateID(insightID); err != nil {
		return err
	}
	return s.bookmarkRepo.Delete(ctx, userID, insightID)
}

func (s *insightService) relevantRanges(ctx context.Context, userID string) ([]models.AgeRange, error) {
	kids, err := s.kidRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}
	return AgeRangesForKids(kids), nil
}

// AgeRangesForKids maps kid ages onto insight age bands, in band order,
// always ending with AgeRangeAll. Ages outside every band contribute nothing.
func AgeRangesForKids(kids []models.Kid) []models.AgeRange {
	present := make(map[models.AgeRange]bool, 3)
	for _, k := range kids {
		switch {
		case k.Age >= 4 && k.Age <= 6:
			present[models.AgeRange4To6] = true
		case k.Age >= 7 && k.Age <= 8:
			present[models.AgeRange7To8] = true
		case k.Age >= 9 && k.Age <= 10:
			present[models.AgeRange9To10] = true
		}
	}

	ranges := make([]models.AgeRange, 0, len(present)+1)
	for _, r := range []models.AgeRange{models.AgeRange4To6, models.AgeRange7To8, models.AgeRange9To10} {
		if present[r] {
			ranges = append(ranges, r)
		}
	}
	return append(ranges, models.AgeRangeAll)
}
