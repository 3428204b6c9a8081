package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cppla/wellcheck/config"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

var rootCmd = &cobra.Command{
	Use:   "wellcheck",
	Short: "wellcheck - wellness check-in service",
	// serve is the default
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, drainCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, the logger and the database, then builds the core.
func bootstrap() (config.AppConfig, *gorm.DB, *services.Core, error) {
	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, nil, nil, err
	}
	db := config.InitDatabase()
	return cfg, db, buildCore(cfg, db), nil
}

func buildCore(cfg config.AppConfig, db *gorm.DB) *services.Core {
	opts := []services.Option{
		services.WithLogger(utils.Logger),
		services.WithLocation(cfg.Location()),
		services.WithInsightCacheTTL(cfg.InsightCacheTTL),
		services.WithLocalScorer(services.NewLocalScorer(cfg.ScoringDemoLatency)),
	}
	if cfg.ScoringBaseURL != "" {
		opts = append(opts, services.WithRemoteScorer(services.NewHTTPScorer(cfg.ScoringBaseURL, cfg.ScoringTimeout)))
	} else {
		utils.Sugar.Info("SCORING_BASE_URL not set, scoring every check-in with the local heuristic")
	}
	return services.New(db, opts...)
}
