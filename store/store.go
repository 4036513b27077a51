package store

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
)

// Store holds every annotation edge for one attribute, along with the
// sample/series membership and metadata needed for level mapping and
// metadata joins. Immutable after Load.
type Store struct {
	attribute hq.Attribute
	edges     []Edge

	sampleMeta map[string]Metadata
	seriesMeta map[string]Metadata
	seriesOf   map[string]string
}

// NewFromEdges builds a store directly from in-memory rows. Sample records
// must reference a series present in seriesMeta; SampleCount on the series
// records is derived, not taken from the input.
func NewFromEdges(attribute hq.Attribute, edges []Edge, sampleMeta, seriesMeta map[string]Metadata) (*Store, error) {
	s := &Store{
		attribute:  attribute,
		sampleMeta: make(map[string]Metadata, len(sampleMeta)),
		seriesMeta: make(map[string]Metadata, len(seriesMeta)),
		seriesOf:   make(map[string]string, len(sampleMeta)),
	}
	for id, meta := range seriesMeta {
		meta.SampleCount = 0
		s.seriesMeta[id] = meta
	}
	for id, meta := range sampleMeta {
		series, ok := s.seriesMeta[meta.SeriesID]
		if !ok {
			return nil, errors.Newf("sample %q references unknown series %q", id, meta.SeriesID)
		}
		s.sampleMeta[id] = meta
		s.seriesOf[id] = meta.SeriesID
		series.SampleCount++
		s.seriesMeta[meta.SeriesID] = series
	}
	for _, edge := range edges {
		switch edge.Level {
		case LevelSample:
			series, ok := s.seriesOf[edge.EntityID]
			if !ok {
				return nil, errors.Newf("edge references unknown sample %q", edge.EntityID)
			}
			edge.SeriesID = series
		case LevelSeries:
			if _, ok := s.seriesMeta[edge.EntityID]; !ok {
				return nil, errors.Newf("edge references unknown series %q", edge.EntityID)
			}
			edge.SeriesID = edge.EntityID
		default:
			return nil, errors.Newf("edge for %q has unsupported level %q", edge.EntityID, edge.Level)
		}
		s.edges = append(s.edges, edge)
	}
	return s, nil
}

// Load reads all edges for an attribute from the annotation database into
// memory. Resolution never touches the database after this returns.
func Load(conn *sql.DB, attribute hq.Attribute, logger *zap.SugaredLogger) (*Store, error) {
	s := &Store{
		attribute:  attribute,
		sampleMeta: make(map[string]Metadata),
		seriesMeta: make(map[string]Metadata),
		seriesOf:   make(map[string]string),
	}

	if err := s.loadEntities(conn); err != nil {
		return nil, err
	}
	if err := s.loadEdges(conn); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Infow("Annotation store loaded",
			"attribute", attribute,
			"edges", len(s.edges),
			"samples", len(s.sampleMeta),
			"series", len(s.seriesMeta),
		)
	}
	return s, nil
}

func (s *Store) loadEntities(conn *sql.DB) error {
	rows, err := conn.Query("SELECT series_id, platform, title, description FROM series")
	if err != nil {
		return errors.Wrap(err, "query series")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var meta Metadata
		if err := rows.Scan(&id, &meta.Platform, &meta.Title, &meta.Description); err != nil {
			return errors.Wrap(err, "scan series")
		}
		s.seriesMeta[id] = meta
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate series")
	}

	sampleRows, err := conn.Query("SELECT sample_id, series_id, platform, title, description FROM samples")
	if err != nil {
		return errors.Wrap(err, "query samples")
	}
	defer sampleRows.Close()

	for sampleRows.Next() {
		var id string
		var meta Metadata
		if err := sampleRows.Scan(&id, &meta.SeriesID, &meta.Platform, &meta.Title, &meta.Description); err != nil {
			return errors.Wrap(err, "scan sample")
		}
		if _, ok := s.seriesMeta[meta.SeriesID]; !ok {
			return errors.Newf("sample %q references unknown series %q", id, meta.SeriesID)
		}
		s.sampleMeta[id] = meta
		s.seriesOf[id] = meta.SeriesID

		series := s.seriesMeta[meta.SeriesID]
		series.SampleCount++
		s.seriesMeta[meta.SeriesID] = series
	}
	return errors.Wrap(sampleRows.Err(), "iterate samples")
}

func (s *Store) loadEdges(conn *sql.DB) error {
	rows, err := conn.Query(`
		SELECT a.annotation_id, a.entity_id, a.level, a.term_id,
		       a.species, a.technology, a.ecode, a.is_control
		FROM annotations a
		WHERE a.attribute = ?
		ORDER BY a.annotation_id`, string(s.attribute))
	if err != nil {
		return errors.Wrap(err, "query annotations")
	}
	defer rows.Close()

	byAnnotation := make(map[int64]int)
	for rows.Next() {
		var id int64
		var edge Edge
		var control int
		if err := rows.Scan(&id, &edge.EntityID, &edge.Level, &edge.TermID,
			&edge.Species, &edge.Technology, &edge.Ecode, &control); err != nil {
			return errors.Wrap(err, "scan annotation")
		}
		edge.Control = control != 0

		switch edge.Level {
		case LevelSample:
			series, ok := s.seriesOf[edge.EntityID]
			if !ok {
				return errors.Newf("annotation %d references unknown sample %q", id, edge.EntityID)
			}
			edge.SeriesID = series
		case LevelSeries:
			if _, ok := s.seriesMeta[edge.EntityID]; !ok {
				return errors.Newf("annotation %d references unknown series %q", id, edge.EntityID)
			}
			edge.SeriesID = edge.EntityID
		default:
			return errors.Newf("annotation %d has unsupported level %q", id, edge.Level)
		}

		byAnnotation[id] = len(s.edges)
		s.edges = append(s.edges, edge)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate annotations")
	}

	sourceRows, err := conn.Query(`
		SELECT s.annotation_id, s.source_id
		FROM annotation_sources s
		JOIN annotations a ON a.annotation_id = s.annotation_id
		WHERE a.attribute = ?
		ORDER BY s.annotation_id, s.source_id`, string(s.attribute))
	if err != nil {
		return errors.Wrap(err, "query annotation sources")
	}
	defer sourceRows.Close()

	for sourceRows.Next() {
		var id int64
		var source string
		if err := sourceRows.Scan(&id, &source); err != nil {
			return errors.Wrap(err, "scan annotation source")
		}
		idx, ok := byAnnotation[id]
		if !ok {
			return errors.Newf("source row references unknown annotation %d", id)
		}
		s.edges[idx].Sources = append(s.edges[idx].Sources, source)
	}
	return errors.Wrap(sourceRows.Err(), "iterate annotation sources")
}

// Attribute returns the attribute this store was loaded for.
func (s *Store) Attribute() hq.Attribute {
	return s.attribute
}

// Edges returns every edge for the attribute, in load order. Callers must
// not mutate the returned slice.
func (s *Store) Edges() []Edge {
	return s.edges
}

// SeriesOf maps a sample to its owning series.
func (s *Store) SeriesOf(sampleID string) (string, bool) {
	series, ok := s.seriesOf[sampleID]
	return series, ok
}

// Meta returns the metadata record for an entity at a level.
func (s *Store) Meta(entityID string, level Level) (Metadata, bool) {
	switch level {
	case LevelSample:
		meta, ok := s.sampleMeta[entityID]
		return meta, ok
	case LevelSeries:
		meta, ok := s.seriesMeta[entityID]
		return meta, ok
	}
	return Metadata{}, false
}
