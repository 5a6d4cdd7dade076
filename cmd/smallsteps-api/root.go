package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/smallsteps/backend/internal/config"
	"github.com/smallsteps/backend/internal/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "smallsteps-api",
	Short: "Small Steps API server",
	Long:  `A REST API server for the Small Steps parenting activity app.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Real environment variables win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}

// newLogger builds the process logger from configuration and installs it as
// the default
func newLogger(cfg config.LogConfig) logger.Logger {
	log := logger.New(logger.Config{
		Level:     logger.ParseLevel(cfg.Level),
		Format:    cfg.Format,
		Backend:   cfg.Backend,
		AddSource: cfg.AddSource,
	})
	logger.SetDefault(log)
	return log
}
