package commands

import (
	"github.com/spf13/cobra"

	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/setup"
)

var (
	setupDOI   string
	setupForce bool
)

// SetupCmd represents the setup command
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Download and install the annotation data package",
	Long: `Download and install the annotation data package from Zenodo.

The package is fetched as a tar.gz archive, unpacked into the configured
data directory, and its manifest is version-checked before the
installation is accepted.

Examples:
  metahq setup                  # Install the current release
  metahq setup --doi 17663087   # Install a specific release
  metahq setup --force          # Replace an existing installation`,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().StringVar(&setupDOI, "doi", hq.DefaultRecordDOI, "Zenodo record DOI to install")
	SetupCmd.Flags().BoolVar(&setupForce, "force", false, "Replace an existing data package")
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := hq.Load()
	if err != nil {
		return err
	}

	manifest, err := setup.NewInstaller(logger.Logger).
		Install(cmd.Context(), setupDOI, cfg.GetDataDir(), setupForce)
	if err != nil {
		return err
	}

	logger.Infow("Setup complete",
		"version", manifest.Version,
		"dir", cfg.GetDataDir(),
	)
	return nil
}
