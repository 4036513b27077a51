package hq

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// HomeDir returns the MetaHQ home directory (~/.metahq), which holds the
// config file and logs.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metahq"
	}
	return filepath.Join(home, ".metahq")
}

// DefaultDataDir returns the default install location for the curated data
// package (~/.metahq/data).
func DefaultDataDir() string {
	return filepath.Join(HomeDir(), "data")
}

// ConfigFile returns the path to the MetaHQ config file.
func ConfigFile() string {
	return filepath.Join(HomeDir(), "config.toml")
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", DefaultDataDir())
	v.SetDefault("data.record_doi", DefaultRecordDOI)
	v.SetDefault("data.version", "")

	v.SetDefault("database.path", filepath.Join(DefaultDataDir(), "metahq.db"))

	v.SetDefault("log.json", false)
	v.SetDefault("log.dir", filepath.Join(HomeDir(), "logs"))
}

// BindEnvVars explicitly binds configuration keys to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("data.dir", "METAHQ_DATA_DIR")
	v.BindEnv("database.path", "METAHQ_DATABASE_PATH")
	v.BindEnv("log.json", "METAHQ_LOG_JSON")
}

// GetDataDir returns the data directory, falling back to the default
func (c *Config) GetDataDir() string {
	if c.Data.Dir == "" {
		return DefaultDataDir()
	}
	return c.Data.Dir
}

// GetDatabasePath returns the configured annotation database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return filepath.Join(c.GetDataDir(), "metahq.db")
	}
	return c.Database.Path
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Data: {Dir: %s, DOI: %s, Version: %s}, Database: %s}",
		c.Data.Dir, c.Data.RecordDOI, c.Data.Version, c.Database.Path)
}
