package commands

import (
	"github.com/spf13/cobra"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/setup"
)

// ValidateCmd represents the validate command
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify the installed data package checksums",
	Long: `Verify the installed data package against its manifest.

Every file listed in the manifest is re-hashed and compared to its
recorded checksum. Missing or modified files fail the validation.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := hq.Load()
	if err != nil {
		return err
	}

	manifest, err := setup.ReadManifest(cfg.GetDataDir())
	if err != nil {
		return err
	}

	changed, err := manifest.Validate(cfg.GetDataDir())
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		for _, path := range changed {
			logger.Errorw("Checksum mismatch", "file", path)
		}
		return errors.WithHint(
			errors.Newf("%d files failed validation", len(changed)),
			"run 'metahq setup --force' to reinstall the data package")
	}

	logger.Infow("Data package is valid",
		"version", manifest.Version,
		"files", len(manifest.Files),
	)
	return nil
}
