package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cppla/wellcheck/routes"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the connectivity watcher",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, core, err := bootstrap()
	if err != nil {
		return err
	}

	if core.Scorers.Remote != nil {
		watcher := services.NewWatcher(core.Queue, core.Scorers.Remote, utils.Logger)
		if err := watcher.Start(cfg.QueueWatchSpec); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	r := routes.SetupRouter(core)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(context.Background(), ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Errorf("server stopped with error: %v", err)
		return err
	}
	_ = utils.Logger.Sync()
	return nil
}
