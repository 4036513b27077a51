package commands

import (
	"database/sql"

	"github.com/metahq/metahq/db"
	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/setup"
)

// openDatabase opens the annotation database of the installed data package.
// The manifest is read first so a stale or missing installation fails with
// a setup hint instead of an opaque sqlite error.
func openDatabase() (*sql.DB, error) {
	cfg, err := hq.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	if _, err := setup.ReadManifest(cfg.GetDataDir()); err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.GetDatabasePath(), logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", cfg.GetDatabasePath())
	}
	return conn, nil
}
