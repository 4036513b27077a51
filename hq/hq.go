// Package hq manages the MetaHQ user configuration.
//
// Configuration lives in ~/.metahq/config.toml and records where the curated
// data package is installed, which Zenodo record it came from, and how the
// CLI should log. Values can be overridden with METAHQ_* environment
// variables.
package hq

// Config represents the MetaHQ CLI configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// DataConfig records the installed curated data package
type DataConfig struct {
	Dir       string `mapstructure:"dir"`        // where the data package is extracted
	RecordDOI string `mapstructure:"record_doi"` // Zenodo record the package was fetched from
	Version   string `mapstructure:"version"`    // data package version (from manifest.toml)
}

// DatabaseConfig configures the curated SQLite annotation store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures CLI logging output
type LogConfig struct {
	JSON bool   `mapstructure:"json"` // structured JSON logs instead of console output
	Dir  string `mapstructure:"dir"`  // where log files are written
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
