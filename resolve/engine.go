package resolve

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/store"
)

// TermsAll requests every term of the attribute, in canonical order.
const TermsAll = "all"

// Engine resolves annotation queries against one attribute's edge set.
// Safe for concurrent use.
type Engine struct {
	store  *store.Store
	graph  *ontology.Graph // nil for the flat attributes
	logger *zap.SugaredLogger
}

// New builds an engine. graph may be nil for sex and age, which have no
// hierarchy; it must be set for the ontology-backed attributes.
func New(st *store.Store, graph *ontology.Graph, logger *zap.SugaredLogger) *Engine {
	return &Engine{store: st, graph: graph, logger: logger}
}

// Request describes one resolution query.
type Request struct {
	// Terms to resolve, in output column order. Empty, or the single
	// marker "all", expands to every term of the attribute.
	Terms  []string
	Mode   Mode
	Level  store.Level
	Filter store.Filter
}

// Resolve evaluates a request into an entity-by-term table. An empty table
// is a valid result; unknown terms and unsupported mode combinations fail.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Table, error) {
	attribute := e.store.Attribute()

	if req.Mode != ModeDirect && !attribute.Hierarchical() {
		return nil, errors.NewUnsupportedModeError(string(req.Mode), string(attribute))
	}

	terms, err := e.expandTerms(req.Terms)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if e.logger != nil {
		e.logger.Debugw("Resolving query",
			"run_id", runID,
			"attribute", attribute,
			"mode", req.Mode,
			"level", req.Level,
			"terms", len(terms),
		)
	}

	byEntity := e.collectEvidence(req.Filter.Apply(e.store.Edges()), req.Level)

	columns := make([]map[string]Cell, len(terms))
	group, ctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			column, err := e.resolveTerm(term, req.Mode, byEntity)
			if err != nil {
				return err
			}
			columns[i] = column
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	table := newTable(attribute, req.Level, req.Mode, terms)
	for i, term := range terms {
		for entity, cell := range columns[i] {
			table.setCell(entity, term, cell)
		}
	}
	table.finalize()

	if table.Empty() && e.logger != nil {
		e.logger.Warnw("Query matched no entities",
			"run_id", runID,
			"attribute", attribute,
			"mode", req.Mode,
			"level", req.Level,
		)
	}
	return table, nil
}

// expandTerms validates the requested terms and resolves the all-marker.
// Explicit terms keep their order; the all-marker expands lexicographically.
func (e *Engine) expandTerms(requested []string) ([]string, error) {
	attribute := e.store.Attribute()

	all := len(requested) == 0 ||
		(len(requested) == 1 && strings.EqualFold(requested[0], TermsAll))
	if all {
		if ontologyName, ok := attribute.Ontology(); ok {
			if e.graph == nil {
				return nil, errors.AssertionFailedf("no ontology graph for attribute %q", attribute)
			}
			return e.graph.TermIDs(ontologyName), nil
		}
		return flatTerms(attribute), nil
	}

	seen := make(map[string]bool, len(requested))
	terms := make([]string, 0, len(requested))
	for _, term := range requested {
		term = strings.TrimSpace(term)
		if attribute == hq.AttrSex {
			term = hq.MapSexTerm(term)
		}
		if err := e.checkTerm(term); err != nil {
			return nil, err
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms, nil
}

func (e *Engine) checkTerm(term string) error {
	if e.store.Attribute().Hierarchical() {
		if e.graph == nil || !e.graph.Exists(term) {
			return errors.NewUnknownTermError(term)
		}
		return nil
	}
	for _, known := range flatTerms(e.store.Attribute()) {
		if term == known {
			return nil
		}
	}
	return errors.NewUnknownTermError(term)
}

func flatTerms(attribute hq.Attribute) []string {
	switch attribute {
	case hq.AttrSex:
		return hq.SexTerms()
	case hq.AttrAge:
		return hq.AgeGroups()
	}
	return nil
}

// evidence is everything resolution needs to know about one entity: its
// direct positive annotations, whether it is a curated healthy control,
// and which series it belongs to.
type evidence struct {
	positives      map[string][]string
	control        bool
	controlSources []string
	series         string
}

// collectEvidence folds the filtered edges into per-entity evidence at the
// requested level. At series level, sample edges are attributed to the
// owning series, so a series is positive when any of its samples is.
func (e *Engine) collectEvidence(edges []store.Edge, level store.Level) map[string]*evidence {
	byEntity := make(map[string]*evidence)
	for _, edge := range edges {
		var entityID string
		switch level {
		case store.LevelSample:
			if edge.Level != store.LevelSample {
				continue
			}
			entityID = edge.EntityID
		case store.LevelSeries:
			entityID = edge.SeriesID
		}

		ev, ok := byEntity[entityID]
		if !ok {
			ev = &evidence{positives: make(map[string][]string), series: edge.SeriesID}
			byEntity[entityID] = ev
		}

		if edge.Control {
			ev.control = true
			ev.controlSources = mergeSources(ev.controlSources, edge.Sources)
			continue
		}
		ev.positives[edge.TermID] = mergeSources(ev.positives[edge.TermID], edge.Sources)
	}
	return byEntity
}

// resolveTerm computes the cell column for one term.
func (e *Engine) resolveTerm(term string, mode Mode, byEntity map[string]*evidence) (map[string]Cell, error) {
	positiveSet := map[string]bool{term: true}
	var ancestorSet map[string]bool

	if mode != ModeDirect {
		descendants, err := e.graph.Descendants(term)
		if err != nil {
			return nil, err
		}
		for _, id := range descendants {
			positiveSet[id] = true
		}
	}
	if mode == ModeLabel {
		ancestors, err := e.graph.Ancestors(term)
		if err != nil {
			return nil, err
		}
		ancestorSet = make(map[string]bool, len(ancestors))
		for _, id := range ancestors {
			ancestorSet[id] = true
		}
	}

	column := make(map[string]Cell)
	positiveSeries := make(map[string]bool)

	for entityID, ev := range byEntity {
		var sources [][]string
		ancestorOnly := false
		for annotated, annotatedSources := range ev.positives {
			if positiveSet[annotated] {
				sources = append(sources, annotatedSources)
			} else if ancestorSet[annotated] {
				ancestorOnly = true
			}
		}

		switch {
		case len(sources) > 0:
			column[entityID] = Cell{Label: LabelPositive, Sources: mergeSources(sources...)}
			positiveSeries[ev.series] = true
		case mode != ModeLabel:
			// Direct and propagate emit positives only.
		case ancestorOnly || ev.control:
			// A healthy-control curation asserts nothing about individual
			// terms, so controls are never labeled negative.
			column[entityID] = Cell{Label: LabelUnknown}
		default:
			column[entityID] = Cell{Label: LabelNegative}
		}
	}

	if mode == ModeLabel {
		// Healthy controls ride along with the positives of their own
		// series. A positive cell is never downgraded.
		for entityID, ev := range byEntity {
			if !ev.control || !positiveSeries[ev.series] {
				continue
			}
			if cell := column[entityID]; cell.Label != LabelPositive {
				column[entityID] = Cell{Label: LabelControl, Sources: ev.controlSources}
			}
		}
	}
	return column, nil
}
