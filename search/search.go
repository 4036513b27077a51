// Package search ranks ontology terms against free-text queries.
//
// Terms are indexed over their primary name and synonyms and scored with
// BM25+. Field weighting is simulated by token repetition: names count ten
// times, synonyms by the specificity of their scope. Scoring happens over
// the filtered corpus, so restricting by ontology or type also reshapes the
// document frequencies.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/ontology"
)

// BM25+ parameters. Plain Okapi BM25 lets document length bias the ranking
// of heavily-synonymed terms; the delta term floors the contribution of
// every matched token.
const (
	bm25K1    = 1.2
	bm25B     = 0.8
	bm25Delta = 0.5
)

// nameWeight is the token repetition factor for a term's primary name.
const nameWeight = 10

// scopeWeights are the repetition factors per OBO synonym scope. Unknown
// or missing scopes count as RELATED, per the OBO 1.4 spec.
var scopeWeights = map[string]int{
	"EXACT":   8,
	"NARROW":  7,
	"BROAD":   3,
	"RELATED": 1,
}

// DefaultLimit is the number of hits returned when none is requested.
const DefaultLimit = 20

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// Hit is one ranked search result. Synonyms are ordered by scope
// specificity, then alphabetically.
type Hit struct {
	TermID   string
	Ontology string
	Name     string
	Type     string
	Synonyms []ontology.Synonym
	Score    float64
}

// Options restrict and size a search.
type Options struct {
	Ontology string // restrict to one namespace, e.g. "UBERON"
	Type     string // restrict to one term type, e.g. "disease"
	Limit    int    // max hits; DefaultLimit when zero
}

type document struct {
	term     ontology.Term
	synonyms []ontology.Synonym
	tokens   []string
	freq     map[string]int
}

// Index holds the tokenized term corpus. Immutable after construction;
// safe for concurrent searches.
type Index struct {
	docs []document
}

// NewIndex builds a search index over a graph's terms and their synonyms.
func NewIndex(graph *ontology.Graph, synonyms map[string][]ontology.Synonym) *Index {
	terms := graph.Terms()
	ix := &Index{docs: make([]document, 0, len(terms))}

	for _, term := range terms {
		doc := document{term: term, synonyms: sortSynonyms(synonyms[term.ID])}

		for i := 0; i < nameWeight; i++ {
			doc.tokens = append(doc.tokens, tokenize(term.Name)...)
		}
		for _, syn := range doc.synonyms {
			weight, ok := scopeWeights[syn.Scope]
			if !ok {
				weight = scopeWeights["RELATED"]
			}
			tokens := tokenize(syn.Text)
			for i := 0; i < weight; i++ {
				doc.tokens = append(doc.tokens, tokens...)
			}
		}

		doc.freq = make(map[string]int, len(doc.tokens))
		for _, tok := range doc.tokens {
			doc.freq[tok]++
		}
		ix.docs = append(ix.docs, doc)
	}
	return ix
}

// Search returns the top hits for a query, best first. Returns ErrNoResults
// when the restriction matches no terms or no document scores above zero.
func (ix *Index) Search(query string, opts Options) ([]Hit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	corpus := ix.restrict(opts)
	if len(corpus) == 0 {
		return nil, errors.Wrapf(errors.ErrNoResults,
			"no terms matched ontology=%q type=%q", opts.Ontology, opts.Type)
	}

	// Document frequencies and average length over the restricted corpus.
	df := make(map[string]int)
	totalLen := 0
	for _, doc := range corpus {
		totalLen += len(doc.tokens)
		for tok := range doc.freq {
			df[tok]++
		}
	}
	avgLen := float64(totalLen) / float64(len(corpus))

	queryTokens := tokenize(query)

	var hits []Hit
	for _, doc := range corpus {
		score := 0.0
		for _, tok := range queryTokens {
			n := df[tok]
			if n == 0 {
				continue
			}
			idf := math.Log(float64(len(corpus)+1) / float64(n))
			tf := float64(doc.freq[tok])
			norm := bm25K1*(1-bm25B+bm25B*float64(len(doc.tokens))/avgLen) + tf
			score += idf * (bm25Delta + tf*(bm25K1+1)/norm)
		}
		if score > 0 {
			hits = append(hits, Hit{
				TermID:   doc.term.ID,
				Ontology: doc.term.Ontology,
				Name:     doc.term.Name,
				Type:     doc.term.Type,
				Synonyms: doc.synonyms,
				Score:    score,
			})
		}
	}
	if len(hits) == 0 {
		return nil, errors.Wrapf(errors.ErrNoResults, "query %q", query)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].TermID < hits[j].TermID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (ix *Index) restrict(opts Options) []document {
	if opts.Ontology == "" && opts.Type == "" {
		return ix.docs
	}
	var docs []document
	for _, doc := range ix.docs {
		if opts.Ontology != "" && !strings.EqualFold(doc.term.Ontology, opts.Ontology) {
			continue
		}
		if opts.Type != "" && !strings.EqualFold(doc.term.Type, opts.Type) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// scopeOrder ranks synonym scopes for display, most specific first.
var scopeOrder = map[string]int{
	"EXACT":   0,
	"BROAD":   1,
	"NARROW":  2,
	"RELATED": 3,
}

func sortSynonyms(synonyms []ontology.Synonym) []ontology.Synonym {
	sorted := append([]ontology.Synonym(nil), synonyms...)
	sort.Slice(sorted, func(i, j int) bool {
		ri, ok := scopeOrder[sorted[i].Scope]
		if !ok {
			ri = 9
		}
		rj, ok := scopeOrder[sorted[j].Scope]
		if !ok {
			rj = 9
		}
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Text < sorted[j].Text
	})
	return sorted
}
