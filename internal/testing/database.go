// Package testing provides database fixtures for MetaHQ tests.
package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/metahq/metahq/db"
)

// CreateTestDB creates an in-memory SQLite database with the full MetaHQ
// schema applied. Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.Migrate(conn, nil); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

// SeedTerm inserts an ontology term with its parent edges.
func SeedTerm(t *testing.T, conn *sql.DB, id, name, ontology, termType string, parents ...string) {
	t.Helper()

	if _, err := conn.Exec(
		"INSERT INTO terms (term_id, name, ontology, type) VALUES (?, ?, ?, ?)",
		id, name, ontology, termType,
	); err != nil {
		t.Fatalf("Failed to seed term %s: %v", id, err)
	}
	for _, parent := range parents {
		if _, err := conn.Exec(
			"INSERT INTO term_parents (term_id, parent_id) VALUES (?, ?)",
			id, parent,
		); err != nil {
			t.Fatalf("Failed to seed parent edge %s -> %s: %v", id, parent, err)
		}
	}
}

// SeedSeries inserts a series record.
func SeedSeries(t *testing.T, conn *sql.DB, id, platform, title string) {
	t.Helper()

	if _, err := conn.Exec(
		"INSERT INTO series (series_id, platform, title, description) VALUES (?, ?, ?, '')",
		id, platform, title,
	); err != nil {
		t.Fatalf("Failed to seed series %s: %v", id, err)
	}
}

// SeedSample inserts a sample belonging to a series.
func SeedSample(t *testing.T, conn *sql.DB, id, seriesID, platform, title string) {
	t.Helper()

	if _, err := conn.Exec(
		"INSERT INTO samples (sample_id, series_id, platform, title, description) VALUES (?, ?, ?, ?, '')",
		id, seriesID, platform, title,
	); err != nil {
		t.Fatalf("Failed to seed sample %s: %v", id, err)
	}
}

// SeedAnnotation inserts an annotation edge with its sources and returns
// the annotation ID.
func SeedAnnotation(t *testing.T, conn *sql.DB, entityID, level, termID, attribute, species, technology, ecode string, control bool, sources ...string) int64 {
	t.Helper()

	res, err := conn.Exec(
		`INSERT INTO annotations (entity_id, level, term_id, attribute, species, technology, ecode, is_control)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entityID, level, termID, attribute, species, technology, ecode, control,
	)
	if err != nil {
		t.Fatalf("Failed to seed annotation for %s: %v", entityID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get annotation id: %v", err)
	}
	for _, source := range sources {
		if _, err := conn.Exec(
			"INSERT INTO annotation_sources (annotation_id, source_id) VALUES (?, ?)",
			id, source,
		); err != nil {
			t.Fatalf("Failed to seed source %s: %v", source, err)
		}
	}
	return id
}
