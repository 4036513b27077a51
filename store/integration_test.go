package store_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/metahq/metahq/hq"
	testdb "github.com/metahq/metahq/internal/testing"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/resolve"
	"github.com/metahq/metahq/store"
)

// End-to-end over a real SQLite database: migrate, seed, load the graph and
// store, resolve, and check the resulting cells.
func TestResolveAgainstSQLite(t *testing.T) {
	conn := testdb.CreateTestDB(t)

	testdb.SeedTerm(t, conn, "UBERON:0000948", "heart", "UBERON", "tissue")
	testdb.SeedTerm(t, conn, "UBERON:0002349", "myocardium", "UBERON", "tissue", "UBERON:0000948")

	testdb.SeedSeries(t, conn, "GSE10", "GPL570", "cardiac study")
	testdb.SeedSample(t, conn, "GSM1", "GSE10", "GPL570", "heart rep1")
	testdb.SeedSample(t, conn, "GSM2", "GSE10", "GPL570", "heart rep2")

	testdb.SeedAnnotation(t, conn, "GSM1", "sample", "UBERON:0002349",
		"tissue", "homo sapiens", "rnaseq", "expert", false, "curator_a")
	testdb.SeedAnnotation(t, conn, "GSM2", "sample", "UBERON:0000948",
		"tissue", "homo sapiens", "microarray", "semi", false, "curator_b")

	graph, err := ontology.Load(conn, nil)
	if err != nil {
		t.Fatalf("ontology.Load: %v", err)
	}
	st, err := store.Load(conn, hq.AttrTissue, nil)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}

	table, err := resolve.New(st, graph, nil).Resolve(context.Background(), resolve.Request{
		Terms: []string{"UBERON:0000948"},
		Mode:  resolve.ModePropagate,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !reflect.DeepEqual(table.Entities, []string{"GSM1", "GSM2"}) {
		t.Fatalf("entities = %v", table.Entities)
	}
	for _, entity := range table.Entities {
		cell, ok := table.Cell(entity, "UBERON:0000948")
		if !ok || cell.Label != resolve.LabelPositive {
			t.Errorf("cell(%s) = %+v, %v", entity, cell, ok)
		}
	}

	// Filter down to rnaseq and the series-level rollup still resolves.
	filter, err := store.ParseFilter("technology=rnaseq")
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	table, err = resolve.New(st, graph, nil).Resolve(context.Background(), resolve.Request{
		Terms:  []string{"UBERON:0000948"},
		Mode:   resolve.ModePropagate,
		Level:  store.LevelSeries,
		Filter: filter,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	cell, ok := table.Cell("GSE10", "UBERON:0000948")
	if !ok || cell.Label != resolve.LabelPositive {
		t.Errorf("series cell = %+v, %v", cell, ok)
	}
	if !reflect.DeepEqual(cell.Sources, []string{"curator_a"}) {
		t.Errorf("series sources = %v", cell.Sources)
	}
}
