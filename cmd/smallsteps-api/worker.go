package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smallsteps/backend/internal/config"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/repository"
	"github.com/smallsteps/backend/internal/service"
	"github.com/smallsteps/backend/internal/worker"
	"github.com/smallsteps/backend/pkg/supabase"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run scheduled maintenance jobs",
	Long:  `Run the nightly streak reconciliation on the configured cron schedule.`,
	RunE:  runWorker,
}

var runOnce bool

func init() {
	workerCmd.Flags().BoolVar(&runOnce, "once", false, "Run the streak reconciliation once and exit")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger(cfg.Log)

	loc, err := cfg.Progress.Location()
	if err != nil {
		return err
	}

	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	maintenance := service.NewStreakMaintenance(
		repository.NewStreakRepository(supabaseClient),
		service.NewCalendar(loc),
	)
	scheduler := worker.New(maintenance, cfg.Worker.StreakSchedule, loc, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runOnce {
		return scheduler.ReconcileStreaks(ctx)
	}

	log.Info("starting worker",
		logger.String("env", cfg.Server.Env),
		logger.String("timezone", loc.String()),
	)
	return scheduler.Run(ctx)
}
