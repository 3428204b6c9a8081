package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/wellcheck/services"
)

var exportUser string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a profile's check-in history as CSV to stdout",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "Profile ID to export")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportUser == "" {
		return errors.New("--user is required")
	}
	_, _, core, err := bootstrap()
	if err != nil {
		return err
	}
	return core.CheckIns.Export(cmd.Context(), services.UserContext{UserID: exportUser}, os.Stdout)
}
