package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/setup"
)

var deleteYes bool

// DeleteCmd represents the delete command
var DeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the installed data package",
	Long:  `Remove the installed data package from the configured data directory.`,
	RunE:  runDelete,
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := hq.Load()
	if err != nil {
		return err
	}

	if !deleteYes {
		ok, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			Show("Delete the data package at " + cfg.GetDataDir() + "?")
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Keeping the data package")
			return nil
		}
	}
	return setup.Delete(cfg.GetDataDir(), logger.Logger)
}
