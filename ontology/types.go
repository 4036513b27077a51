// Package ontology holds the in-memory term hierarchy used for annotation
// propagation and labeling.
//
// Terms from UBERON, MONDO, and CL form a multi-parent directed acyclic
// graph over is-a/part-of edges. The graph is loaded once per process from
// the curated data package and never mutated afterwards, so closures are
// cached per term and shared across concurrent queries.
package ontology

// Term is a single controlled-vocabulary term.
type Term struct {
	ID       string   // namespaced, e.g. "UBERON:0000948"
	Name     string   // display name, e.g. "heart"
	Ontology string   // UBERON | MONDO | CL
	Type     string   // tissue | disease | celltype
	Parents  []string // parent term IDs; zero or more (multi-parent DAG)
}

// Synonym is an alternate name for a term, scoped per OBO 1.4.
// Synonyms feed free-text search only; resolution works on term IDs.
type Synonym struct {
	TermID string
	Text   string
	Scope  string // EXACT | NARROW | BROAD | RELATED
}
