package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/wellcheck/services"
)

var (
	drainUser string
	drainAll  bool
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Retry queued check-ins for one profile or for everyone",
	RunE:  runDrain,
}

func init() {
	drainCmd.Flags().StringVarP(&drainUser, "user", "u", "", "Profile ID whose queue to drain")
	drainCmd.Flags().BoolVar(&drainAll, "all", false, "Drain every profile's queue")
}

func runDrain(cmd *cobra.Command, args []string) error {
	if (drainUser == "") == !drainAll {
		return errors.New("pass exactly one of --user or --all")
	}
	_, _, core, err := bootstrap()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if drainAll {
		results, err := core.Queue.DrainAll(cmd.Context())
		if err != nil {
			return err
		}
		return enc.Encode(results)
	}
	res, err := core.Queue.Drain(cmd.Context(), services.UserContext{UserID: drainUser})
	if err != nil {
		return err
	}
	return enc.Encode(res)
}
