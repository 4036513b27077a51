package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage MetaHQ configuration",
	Long: `Display and manage MetaHQ configuration.

Configuration sources (in order of precedence):
1. Environment variables (METAHQ_* prefix)
2. User config (~/.metahq/config.toml)
3. Default values

Examples:
  metahq config show                     # Show current configuration
  metahq config show --format json       # Show configuration as JSON
  metahq config set data.dir /srv/metahq # Persist a setting`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Long:  "Set a configuration value using dot notation (data.dir, database.path, log.json) and write it to the user config file.",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "text", "Output format: text, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := hq.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	case "text":
		fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
	default:
		return errors.Newf("expected format in [text json yaml], got %q", configFormat)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := hq.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch key {
	case "data.dir":
		cfg.Data.Dir = value
	case "data.record_doi":
		if _, err := hq.Record(value); err != nil {
			return err
		}
		cfg.Data.RecordDOI = value
	case "database.path":
		cfg.Database.Path = value
	case "log.json":
		cfg.Log.JSON = value == "true"
	case "log.dir":
		cfg.Log.Dir = value
	default:
		return errors.Newf("unknown configuration key %q", key)
	}

	if err := hq.Save(cfg); err != nil {
		return errors.Wrap(err, "failed to save config")
	}
	logger.Infow("Configuration updated", "key", key, "value", value)
	return nil
}
