package service

import (
	"context"
	"fmt"

	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/progress"
	"github.com/smallsteps/backend/internal/repository"
)

type streakMaintenance struct {
	streakRepo repository.StreakRepository
	cal        Calendar
}

// NewStreakMaintenance creates the lapsed-streak reconciler run by the worker
func NewStreakMaintenance(streakRepo repository.StreakRepository, cal Calendar) StreakMaintenance {
	return &streakMaintenance{streakRepo: streakRepo, cal: cal}
}

// ReconcileAll zeroes current_streak for every user whose last activity was
// before yesterday. Rows are only reset while they still match the listing. A failed row is logged and skipped; the error of the
// first failure is returned once every row was attempted.
func (m *streakMaintenance) ReconcileAll(ctx context.Context) (int, error) {
	states, err := m.streakRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active streaks: %w", err)
	}

	today := m.cal.Today()
	reset := 0
	var firstErr error
	for _, state := range states {
		state := state
		if err := ctx.Err(); err != nil {
			return reset, err
		}

		next, changed := progress.ReconcileStreak(state, today, m.cal.Location)
		if !changed {
			continue
		}

		swapped, err := m.streakRepo.Swap(ctx, &state, &next)
		if err != nil {
			logger.Ctx(ctx).Error("failed to reset streak",
				logger.String("user_id", state.UserID),
				logger.Err(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to reset streak for user %s: %w", state.UserID, err)
			}
			continue
		}
		if !swapped {
			// A completion landed after the listing; its streak stands.
			logger.Ctx(ctx).Debug("streak changed since listing, skipped",
				logger.String("user_id", state.UserID),
			)
			continue
		}
		reset++
	}

	return reset, firstErr
}
