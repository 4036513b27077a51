package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metahq/metahq/cmd/metahq/commands"
	"github.com/metahq/metahq/logger"
)

var rootCmd = &cobra.Command{
	Use:   "metahq",
	Short: "MetaHQ - Curated annotations for public omics samples and series",
	Long: `MetaHQ - Curated annotations for public omics samples and series.

MetaHQ distributes curator-reviewed tissue, disease, celltype, sex and age
annotations for public expression data and resolves them against the
backing ontologies (UBERON, MONDO, CL).

Available commands:
  retrieve  - Resolve annotations for a set of ontology terms
  search    - Search ontology terms by name and synonyms
  setup     - Download and install the annotation data package
  validate  - Verify the installed data package checksums
  delete    - Remove the installed data package
  supported - List supported attributes, filters and formats
  config    - Manage MetaHQ configuration

Examples:
  metahq setup                                   # Install the data package
  metahq search "heart muscle" --ontology UBERON # Find term IDs
  metahq retrieve tissue --terms UBERON:0000948 --mode propagate
  metahq retrieve disease --terms all --mode label --level series`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.RetrieveCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.SetupCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.DeleteCmd)
	rootCmd.AddCommand(commands.SupportedCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
