// Package store provides read-only access to the curated annotation edges
// and entity metadata in the MetaHQ data package.
//
// All rows for an attribute are loaded into memory up front; nothing in the
// query path touches the database mid-computation.
package store

// Level distinguishes sample-level from series-level entities.
type Level string

// Entity levels
const (
	LevelSample Level = "sample"
	LevelSeries Level = "series"
)

// Edge is a single direct, curator-asserted annotation from an entity to an
// ontology term. Immutable once loaded.
type Edge struct {
	EntityID   string   // sample or series accession, per Level
	Level      Level    // which kind of entity EntityID names
	SeriesID   string   // owning series for sample edges; equals EntityID for series edges
	TermID     string   // annotated ontology term (or sex/age code)
	Species    string   // e.g. "homo sapiens"
	Technology string   // e.g. "rnaseq"
	Ecode      string   // evidence code: expert | semi | crowd
	Control    bool     // entity curated as a healthy control (disease only)
	Sources    []string // curation source identifiers backing the edge
}

// Metadata holds the descriptive fields of one entity.
type Metadata struct {
	SeriesID    string // samples only
	Platform    string
	Title       string
	Description string
	SampleCount int // series only
}
