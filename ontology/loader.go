package ontology

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/metahq/metahq/errors"
)

// Load reads all terms and parent edges from the annotation database and
// builds the graph. Called once at process start; the result is shared
// read-only for the life of the process.
func Load(conn *sql.DB, logger *zap.SugaredLogger) (*Graph, error) {
	rows, err := conn.Query("SELECT term_id, name, ontology, type FROM terms ORDER BY term_id")
	if err != nil {
		return nil, errors.Wrap(err, "query terms")
	}
	defer rows.Close()

	byID := make(map[string]*Term)
	var order []string
	for rows.Next() {
		var term Term
		if err := rows.Scan(&term.ID, &term.Name, &term.Ontology, &term.Type); err != nil {
			return nil, errors.Wrap(err, "scan term")
		}
		byID[term.ID] = &term
		order = append(order, term.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate terms")
	}

	parentRows, err := conn.Query("SELECT term_id, parent_id FROM term_parents ORDER BY term_id, parent_id")
	if err != nil {
		return nil, errors.Wrap(err, "query term parents")
	}
	defer parentRows.Close()

	edges := 0
	for parentRows.Next() {
		var termID, parentID string
		if err := parentRows.Scan(&termID, &parentID); err != nil {
			return nil, errors.Wrap(err, "scan term parent")
		}
		term, ok := byID[termID]
		if !ok {
			return nil, errors.Newf("parent edge references unknown term %q", termID)
		}
		term.Parents = append(term.Parents, parentID)
		edges++
	}
	if err := parentRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate term parents")
	}

	terms := make([]Term, 0, len(order))
	for _, id := range order {
		terms = append(terms, *byID[id])
	}

	graph, err := NewGraph(terms)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Infow("Ontology graph loaded",
			"terms", graph.Len(),
			"parent_edges", edges,
		)
	}
	return graph, nil
}

// LoadSynonyms reads all term synonyms, keyed by term ID. Used by the
// free-text search index, not by resolution.
func LoadSynonyms(conn *sql.DB) (map[string][]Synonym, error) {
	rows, err := conn.Query("SELECT term_id, synonym, scope FROM term_synonyms ORDER BY term_id, synonym")
	if err != nil {
		return nil, errors.Wrap(err, "query term synonyms")
	}
	defer rows.Close()

	synonyms := make(map[string][]Synonym)
	for rows.Next() {
		var syn Synonym
		if err := rows.Scan(&syn.TermID, &syn.Text, &syn.Scope); err != nil {
			return nil, errors.Wrap(err, "scan synonym")
		}
		synonyms[syn.TermID] = append(synonyms[syn.TermID], syn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate synonyms")
	}
	return synonyms, nil
}
