package hq

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/metahq/metahq/errors"
)

// persistedConfig mirrors Config with toml tags for serialization.
// mapstructure tags drive reads through viper; writes go through
// BurntSushi/toml so the file stays human-editable.
type persistedConfig struct {
	Data struct {
		Dir       string `toml:"dir"`
		RecordDOI string `toml:"record_doi"`
		Version   string `toml:"version"`
	} `toml:"data"`
	Database struct {
		Path string `toml:"path"`
	} `toml:"database"`
	Log struct {
		JSON bool   `toml:"json"`
		Dir  string `toml:"dir"`
	} `toml:"log"`
}

// Save writes the configuration to ~/.metahq/config.toml, creating the
// MetaHQ home directory if needed.
func Save(cfg *Config) error {
	if err := os.MkdirAll(HomeDir(), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "create metahq home directory")
	}

	var out persistedConfig
	out.Data.Dir = cfg.GetDataDir()
	out.Data.RecordDOI = cfg.Data.RecordDOI
	out.Data.Version = cfg.Data.Version
	out.Database.Path = cfg.GetDatabasePath()
	out.Log.JSON = cfg.Log.JSON
	out.Log.Dir = cfg.Log.Dir
	if out.Log.Dir == "" {
		out.Log.Dir = filepath.Join(HomeDir(), "logs")
	}

	f, err := os.OpenFile(ConfigFile(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return errors.Wrap(err, "open config file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(out); err != nil {
		return errors.Wrap(err, "encode config")
	}

	// Saved config should be visible to subsequent Load() calls
	Reset()
	return nil
}
