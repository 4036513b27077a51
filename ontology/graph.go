package ontology

import (
	"sort"
	"sync"

	"github.com/metahq/metahq/errors"
)

// Graph is the in-memory ontology DAG. Immutable after construction;
// safe for concurrent readers.
type Graph struct {
	terms    map[string]Term
	parents  map[string][]string
	children map[string][]string

	mu        sync.RWMutex
	ancCache  map[string][]string
	descCache map[string][]string
}

// NewGraph builds a graph from a term set. It rejects parent references to
// terms outside the set and any cycle, since closures are only well-defined
// on a DAG.
func NewGraph(terms []Term) (*Graph, error) {
	g := &Graph{
		terms:     make(map[string]Term, len(terms)),
		parents:   make(map[string][]string, len(terms)),
		children:  make(map[string][]string),
		ancCache:  make(map[string][]string),
		descCache: make(map[string][]string),
	}

	for _, term := range terms {
		if _, dup := g.terms[term.ID]; dup {
			return nil, errors.Newf("duplicate term %q", term.ID)
		}
		g.terms[term.ID] = term
	}

	for _, term := range terms {
		for _, parent := range term.Parents {
			if _, ok := g.terms[parent]; !ok {
				return nil, errors.Newf("term %q references unknown parent %q", term.ID, parent)
			}
			g.parents[term.ID] = append(g.parents[term.ID], parent)
			g.children[parent] = append(g.children[parent], term.ID)
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkAcyclic runs Kahn's algorithm over the parent edges.
func (g *Graph) checkAcyclic() error {
	indegree := make(map[string]int, len(g.terms))
	for id := range g.terms {
		indegree[id] = len(g.parents[id])
	}

	queue := make([]string, 0, len(g.terms))
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, child := range g.children[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if visited != len(g.terms) {
		return errors.New("ontology contains a cycle")
	}
	return nil
}

// Exists reports whether a term ID is present in the graph.
func (g *Graph) Exists(termID string) bool {
	_, ok := g.terms[termID]
	return ok
}

// Term returns the term record for an ID.
func (g *Graph) Term(termID string) (Term, bool) {
	term, ok := g.terms[termID]
	return term, ok
}

// Len returns the number of terms in the graph.
func (g *Graph) Len() int {
	return len(g.terms)
}

// Ancestors returns every term reachable by following parent edges
// transitively, excluding the term itself. Empty for a root term.
// Returns ErrUnknownTerm for a term absent from the graph.
func (g *Graph) Ancestors(termID string) ([]string, error) {
	return g.closure(termID, g.parents, g.ancCache)
}

// Descendants returns every term reachable by following child edges
// transitively, excluding the term itself. Empty for a leaf term.
// Returns ErrUnknownTerm for a term absent from the graph.
func (g *Graph) Descendants(termID string) ([]string, error) {
	return g.closure(termID, g.children, g.descCache)
}

// closure runs a breadth-first traversal over adj from termID. A visited
// set de-duplicates terms reachable through multiple paths; results are
// sorted so identical queries yield identical slices.
func (g *Graph) closure(termID string, adj map[string][]string, cache map[string][]string) ([]string, error) {
	if !g.Exists(termID) {
		return nil, errors.NewUnknownTermError(termID)
	}

	g.mu.RLock()
	cached, ok := cache[termID]
	g.mu.RUnlock()
	if ok {
		return cached, nil
	}

	visited := map[string]bool{termID: true}
	queue := append([]string(nil), adj[termID]...)
	var reached []string

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		reached = append(reached, id)
		queue = append(queue, adj[id]...)
	}

	sort.Strings(reached)

	g.mu.Lock()
	cache[termID] = reached
	g.mu.Unlock()
	return reached, nil
}

// Terms returns every term record, sorted by ID.
func (g *Graph) Terms() []Term {
	ids := make([]string, 0, len(g.terms))
	for id := range g.terms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	terms := make([]Term, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, g.terms[id])
	}
	return terms
}

// TermIDs returns all term IDs for an ontology namespace in canonical
// (lexicographic) order. This is the expansion order for terms=all queries.
func (g *Graph) TermIDs(ontology string) []string {
	var ids []string
	for id, term := range g.terms {
		if term.Ontology == ontology {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Roots returns term IDs with no parents, in canonical order.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.terms {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns term IDs with no children, in canonical order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.terms {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}
