package resolve

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/store"
)

const (
	termStructure  = "UBERON:0000061"
	termHeart      = "UBERON:0000948"
	termMuscle     = "UBERON:0002385"
	termMyocardium = "UBERON:0002349"
	termCardiomyo  = "MONDO:0004994"
	termDiabetes   = "MONDO:0005015"
)

func testGraph(t *testing.T) *ontology.Graph {
	t.Helper()
	g, err := ontology.NewGraph([]ontology.Term{
		{ID: termStructure, Name: "anatomical structure", Ontology: "UBERON", Type: "tissue"},
		{ID: termHeart, Name: "heart", Ontology: "UBERON", Type: "tissue",
			Parents: []string{termStructure}},
		{ID: termMuscle, Name: "muscle tissue", Ontology: "UBERON", Type: "tissue",
			Parents: []string{termStructure}},
		{ID: termMyocardium, Name: "myocardium", Ontology: "UBERON", Type: "tissue",
			Parents: []string{termHeart, termMuscle}},
		{ID: termCardiomyo, Name: "cardiomyopathy", Ontology: "MONDO", Type: "disease"},
		{ID: termDiabetes, Name: "diabetes mellitus", Ontology: "MONDO", Type: "disease"},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func testEntities() (map[string]store.Metadata, map[string]store.Metadata) {
	samples := map[string]store.Metadata{
		"S1": {SeriesID: "P1", Platform: "GPL570", Title: "heart rep1"},
		"S2": {SeriesID: "P1", Platform: "GPL570", Title: "heart rep2"},
		"S3": {SeriesID: "P1", Platform: "GPL570", Title: "control rep1"},
		"S4": {SeriesID: "P1", Platform: "GPL570", Title: "disease rep1"},
		"S5": {SeriesID: "P2", Platform: "GPL96", Title: "muscle rep1"},
	}
	series := map[string]store.Metadata{
		"P1": {Platform: "GPL570", Title: "cardiac study"},
		"P2": {Platform: "GPL96", Title: "muscle study"},
	}
	return samples, series
}

func newEngine(t *testing.T, attribute hq.Attribute, graph *ontology.Graph, edges []store.Edge) *Engine {
	t.Helper()
	samples, series := testEntities()
	st, err := store.NewFromEdges(attribute, edges, samples, series)
	if err != nil {
		t.Fatalf("NewFromEdges: %v", err)
	}
	return New(st, graph, nil)
}

func sampleEdge(entity, term string, sources ...string) store.Edge {
	return store.Edge{
		EntityID:   entity,
		Level:      store.LevelSample,
		TermID:     term,
		Species:    "homo sapiens",
		Technology: "rnaseq",
		Ecode:      "expert",
		Sources:    sources,
	}
}

func TestPropagateIncludesDescendantAnnotations(t *testing.T) {
	// S1 is annotated to myocardium only; a propagate query for heart
	// must pick it up with the myocardium edge's sources.
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S1", termMyocardium, "curator_a"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart},
		Mode:  ModePropagate,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	cell, ok := table.Cell("S1", termHeart)
	if !ok || cell.Label != LabelPositive {
		t.Fatalf("cell(S1, heart) = %+v, %v", cell, ok)
	}
	if !reflect.DeepEqual(cell.Sources, []string{"curator_a"}) {
		t.Errorf("sources = %v, want attribution from the myocardium edge", cell.Sources)
	}
}

func TestDirectModeDoesNotPropagate(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S1", termMyocardium, "curator_a"),
		sampleEdge("S2", termHeart, "curator_b"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart},
		Mode:  ModeDirect,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if _, ok := table.Cell("S1", termHeart); ok {
		t.Error("direct mode must not include the descendant-annotated S1")
	}
	if cell, ok := table.Cell("S2", termHeart); !ok || cell.Label != LabelPositive {
		t.Errorf("cell(S2, heart) = %+v, %v", cell, ok)
	}
	// Only positive rows appear.
	if !reflect.DeepEqual(table.Entities, []string{"S2"}) {
		t.Errorf("entities = %v, want [S2]", table.Entities)
	}
}

func TestLabelAncestorAnnotationIsUnknown(t *testing.T) {
	// S2 is annotated to heart, an ancestor of the queried myocardium.
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S2", termHeart, "curator_b"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termMyocardium},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	cell, ok := table.Cell("S2", termMyocardium)
	if !ok || cell.Label != LabelUnknown {
		t.Errorf("cell(S2, myocardium) = %+v, want unknown", cell)
	}
}

func TestLabelUnrelatedAnnotationIsNegative(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S2", termHeart, "curator_b"),
		sampleEdge("S5", termMuscle, "curator_c"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cell, _ := table.Cell("S5", termHeart); cell.Label != LabelNegative {
		t.Errorf("cell(S5, heart) = %+v, want negative", cell)
	}
	if cell, _ := table.Cell("S2", termHeart); cell.Label != LabelPositive {
		t.Errorf("cell(S2, heart) = %+v, want positive", cell)
	}
}

func TestLabelControlOverride(t *testing.T) {
	// S3 is a healthy control in P1; S4 in P1 is positive for
	// cardiomyopathy, so S3 resolves as control for that term. S5 sits in
	// P2 with no positive series-mate and stays unknown, never negative.
	e := newEngine(t, hq.AttrDisease, testGraph(t), []store.Edge{
		sampleEdge("S4", termCardiomyo, "curator_a"),
		{EntityID: "S3", Level: store.LevelSample, TermID: termCardiomyo,
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Control: true, Sources: []string{"curator_d"}},
		{EntityID: "S5", Level: store.LevelSample, TermID: termCardiomyo,
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Control: true, Sources: []string{"curator_d"}},
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termCardiomyo},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cell, _ := table.Cell("S3", termCardiomyo); cell.Label != LabelControl {
		t.Errorf("cell(S3) = %+v, want control", cell)
	}
	if cell, _ := table.Cell("S4", termCardiomyo); cell.Label != LabelPositive {
		t.Errorf("cell(S4) = %+v, want positive", cell)
	}
	if cell, _ := table.Cell("S5", termCardiomyo); cell.Label != LabelUnknown {
		t.Errorf("cell(S5) = %+v, want unknown without a positive series-mate", cell)
	}
}

func TestLabelControlPerTerm(t *testing.T) {
	// The control override is per term: S3 is control for cardiomyopathy,
	// which its series-mate S4 is positive for, and simultaneously unknown
	// for diabetes, which nothing in P1 is positive for.
	e := newEngine(t, hq.AttrDisease, testGraph(t), []store.Edge{
		sampleEdge("S4", termCardiomyo, "curator_a"),
		{EntityID: "S3", Level: store.LevelSample, TermID: termCardiomyo,
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Control: true, Sources: []string{"curator_d"}},
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termCardiomyo, termDiabetes},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cell, _ := table.Cell("S3", termCardiomyo); cell.Label != LabelControl {
		t.Errorf("cell(S3, cardiomyopathy) = %+v, want control", cell)
	}
	if cell, _ := table.Cell("S3", termDiabetes); cell.Label != LabelUnknown {
		t.Errorf("cell(S3, diabetes) = %+v, want unknown", cell)
	}
	if cell, _ := table.Cell("S4", termDiabetes); cell.Label != LabelNegative {
		t.Errorf("cell(S4, diabetes) = %+v, want negative", cell)
	}
}

func TestLabelPositiveWinsOverControl(t *testing.T) {
	// S4 carries both a control curation and a direct positive edge.
	e := newEngine(t, hq.AttrDisease, testGraph(t), []store.Edge{
		sampleEdge("S4", termCardiomyo, "curator_a"),
		{EntityID: "S4", Level: store.LevelSample, TermID: termCardiomyo,
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Control: true, Sources: []string{"curator_d"}},
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termCardiomyo},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cell, _ := table.Cell("S4", termCardiomyo); cell.Label != LabelPositive {
		t.Errorf("cell(S4) = %+v, positive must win over control", cell)
	}
}

func TestAllTermsDirectOnEmptySetIsValidEmptyTable(t *testing.T) {
	e := newEngine(t, hq.AttrAge, nil, nil)

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{"all"},
		Mode:  ModeDirect,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("empty result must not be an error, got %v", err)
	}
	if !table.Empty() {
		t.Errorf("expected empty table, got entities %v", table.Entities)
	}
	if !reflect.DeepEqual(table.Terms, hq.AgeGroups()) {
		t.Errorf("columns = %v, want every age group", table.Terms)
	}
}

func TestUnknownTermNamesOffendingID(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), nil)

	_, err := e.Resolve(context.Background(), Request{
		Terms: []string{"UBERON:9999999"},
		Mode:  ModeDirect,
		Level: store.LevelSample,
	})
	if !errors.IsUnknownTerm(err) {
		t.Fatalf("expected ErrUnknownTerm, got %v", err)
	}
	if !strings.Contains(err.Error(), "UBERON:9999999") {
		t.Errorf("error should name the term, got %q", err.Error())
	}
}

func TestLabelModeRejectedForFlatAttributes(t *testing.T) {
	e := newEngine(t, hq.AttrSex, nil, nil)

	for _, mode := range []Mode{ModeLabel, ModePropagate} {
		_, err := e.Resolve(context.Background(), Request{
			Terms: []string{"M"},
			Mode:  mode,
			Level: store.LevelSample,
		})
		if !errors.IsUnsupportedMode(err) {
			t.Errorf("mode %s on sex: got %v, want ErrUnsupportedMode", mode, err)
		}
	}
}

func TestSexTermsAreMapped(t *testing.T) {
	e := newEngine(t, hq.AttrSex, nil, []store.Edge{
		sampleEdge("S1", "F", "curator_a"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{"female"},
		Mode:  ModeDirect,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cell, ok := table.Cell("S1", "F"); !ok || cell.Label != LabelPositive {
		t.Errorf("cell(S1, F) = %+v, %v", cell, ok)
	}
}

func TestSeriesAggregationAnyPositive(t *testing.T) {
	// One myocardium sample in P1 makes the whole series positive for
	// heart under propagate; P2 has no relevant annotation.
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S1", termMyocardium, "curator_a"),
		sampleEdge("S2", termStructure, "curator_b"),
		sampleEdge("S5", termMuscle, "curator_c"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart},
		Mode:  ModeLabel,
		Level: store.LevelSeries,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cell, _ := table.Cell("P1", termHeart); cell.Label != LabelPositive {
		t.Errorf("cell(P1, heart) = %+v, want positive via S1", cell)
	}
	if cell, _ := table.Cell("P2", termHeart); cell.Label != LabelNegative {
		t.Errorf("cell(P2, heart) = %+v, want negative", cell)
	}
}

func TestSeriesAncestorOnlyIsUnknown(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S1", termHeart, "curator_a"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termMyocardium},
		Mode:  ModeLabel,
		Level: store.LevelSeries,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cell, _ := table.Cell("P1", termMyocardium); cell.Label != LabelUnknown {
		t.Errorf("cell(P1, myocardium) = %+v, want unknown", cell)
	}
}

func TestSourcesAreUnionedSortedDeduplicated(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S1", termMyocardium, "zeta", "alpha"),
		sampleEdge("S1", termHeart, "alpha", "beta"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart},
		Mode:  ModePropagate,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	cell, _ := table.Cell("S1", termHeart)
	want := []string{"alpha", "beta", "zeta"}
	if !reflect.DeepEqual(cell.Sources, want) {
		t.Errorf("sources = %v, want %v", cell.Sources, want)
	}
	if cell.SourceString() != "alpha|beta|zeta" {
		t.Errorf("SourceString = %q", cell.SourceString())
	}
}

func TestMonotonicityAddingDirectEdge(t *testing.T) {
	base := []store.Edge{sampleEdge("S2", termHeart, "curator_b")}
	withEdge := append(append([]store.Edge(nil), base...),
		sampleEdge("S5", termHeart, "curator_c"))

	resolveLabel := func(edges []store.Edge) *Table {
		e := newEngine(t, hq.AttrTissue, testGraph(t), edges)
		table, err := e.Resolve(context.Background(), Request{
			Terms: []string{termHeart},
			Mode:  ModeLabel,
			Level: store.LevelSample,
		})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		return table
	}

	before := resolveLabel(base)
	after := resolveLabel(withEdge)

	if cell, ok := before.Cell("S5", termHeart); ok && cell.Label == LabelPositive {
		t.Fatalf("S5 positive before the edge exists: %+v", cell)
	}
	if cell, _ := after.Cell("S5", termHeart); cell.Label != LabelPositive {
		t.Errorf("adding a direct edge must move S5 to positive, got %+v", cell)
	}
	if cell, _ := after.Cell("S2", termHeart); cell.Label != LabelPositive {
		t.Errorf("S2 must stay positive, got %+v", cell)
	}
}

func TestIdempotentOrdering(t *testing.T) {
	edges := []store.Edge{
		sampleEdge("S5", termMuscle, "curator_c"),
		sampleEdge("S1", termMyocardium, "curator_a"),
		sampleEdge("S2", termHeart, "curator_b"),
	}
	req := Request{
		Terms: []string{TermsAll},
		Mode:  ModeLabel,
		Level: store.LevelSample,
	}

	e := newEngine(t, hq.AttrTissue, testGraph(t), edges)
	first, err := e.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := e.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !reflect.DeepEqual(first.Entities, second.Entities) {
		t.Errorf("row order differs: %v vs %v", first.Entities, second.Entities)
	}
	if !reflect.DeepEqual(first.Terms, second.Terms) {
		t.Errorf("column order differs: %v vs %v", first.Terms, second.Terms)
	}
	// Rows are sorted, columns follow canonical graph order.
	if !reflect.DeepEqual(first.Entities, []string{"S1", "S2", "S5"}) {
		t.Errorf("entities = %v", first.Entities)
	}
	wantTerms := []string{termStructure, termHeart, termMyocardium, termMuscle}
	if !reflect.DeepEqual(first.Terms, wantTerms) {
		t.Errorf("terms = %v, want %v", first.Terms, wantTerms)
	}
}

func TestDuplicateQueryTermsCollapse(t *testing.T) {
	e := newEngine(t, hq.AttrTissue, testGraph(t), []store.Edge{
		sampleEdge("S2", termHeart, "curator_b"),
	})

	table, err := e.Resolve(context.Background(), Request{
		Terms: []string{termHeart, termHeart, termMuscle},
		Mode:  ModeDirect,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(table.Terms, []string{termHeart, termMuscle}) {
		t.Errorf("terms = %v", table.Terms)
	}
}

func TestFilterRestrictsEdgeSet(t *testing.T) {
	edges := []store.Edge{
		sampleEdge("S1", termHeart, "curator_a"),
		{EntityID: "S2", Level: store.LevelSample, TermID: termHeart,
			Species: "mus musculus", Technology: "rnaseq", Ecode: "crowd",
			Sources: []string{"crowd_batch"}},
	}
	e := newEngine(t, hq.AttrTissue, testGraph(t), edges)

	filter, err := store.ParseFilter("species=homo sapiens,ecode=expert|semi")
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}

	table, err := e.Resolve(context.Background(), Request{
		Terms:  []string{termHeart},
		Mode:   ModeDirect,
		Level:  store.LevelSample,
		Filter: filter,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(table.Entities, []string{"S1"}) {
		t.Errorf("entities = %v, want filtered to [S1]", table.Entities)
	}
}
