package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/resolve"
	"github.com/metahq/metahq/store"
)

func resolvedTable(t *testing.T, mode resolve.Mode) *resolve.Table {
	t.Helper()

	graph, err := ontology.NewGraph([]ontology.Term{
		{ID: "UBERON:0000948", Name: "heart", Ontology: "UBERON", Type: "tissue"},
		{ID: "UBERON:0002349", Name: "myocardium", Ontology: "UBERON", Type: "tissue",
			Parents: []string{"UBERON:0000948"}},
		{ID: "UBERON:0002107", Name: "liver", Ontology: "UBERON", Type: "tissue"},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	samples := map[string]store.Metadata{
		"S1": {SeriesID: "P1", Platform: "GPL570", Title: "heart rep1"},
		"S2": {SeriesID: "P1", Platform: "GPL570", Title: "liver rep1"},
	}
	series := map[string]store.Metadata{"P1": {Platform: "GPL570"}}

	st, err := store.NewFromEdges(hq.AttrTissue, []store.Edge{
		{EntityID: "S1", Level: store.LevelSample, TermID: "UBERON:0002349",
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Sources: []string{"curator_a"}},
		{EntityID: "S2", Level: store.LevelSample, TermID: "UBERON:0002107",
			Species: "homo sapiens", Technology: "rnaseq", Ecode: "expert",
			Sources: []string{"curator_b"}},
	}, samples, series)
	if err != nil {
		t.Fatalf("NewFromEdges: %v", err)
	}

	table, err := resolve.New(st, graph, nil).Resolve(context.Background(), resolve.Request{
		Terms: []string{"UBERON:0000948"},
		Mode:  mode,
		Level: store.LevelSample,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return table
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("TSV"); err != nil || f != FormatTSV {
		t.Errorf("ParseFormat(TSV) = %v, %v", f, err)
	}
	if _, err := ParseFormat("parquet"); !errors.Is(err, errors.ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(parquet) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestWriteTSV(t *testing.T) {
	table := resolvedTable(t, resolve.ModeLabel)

	var buf bytes.Buffer
	if err := Write(&buf, table, FormatTSV); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "entity_id\tUBERON:0000948\tsources" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "S1\t1\tcurator_a" {
		t.Errorf("S1 row = %q", lines[1])
	}
	if lines[2] != "S2\t-1\t" {
		t.Errorf("S2 row = %q", lines[2])
	}
}

func TestWriteCSVDirectOmitsAbsentCells(t *testing.T) {
	table := resolvedTable(t, resolve.ModePropagate)

	var buf bytes.Buffer
	if err := Write(&buf, table, FormatCSV); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Propagate emits only the positive row.
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got:\n%s", buf.String())
	}
	if lines[1] != "S1,1,curator_a" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	table := resolvedTable(t, resolve.ModeLabel)

	var buf bytes.Buffer
	if err := Write(&buf, table, FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var rows []struct {
		EntityID string         `json:"entity_id"`
		Cells    map[string]int `json:"cells"`
		Sources  []string       `json:"sources"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(rows) != 2 || rows[0].EntityID != "S1" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Cells["UBERON:0000948"] != 1 {
		t.Errorf("S1 cell = %d, want 1", rows[0].Cells["UBERON:0000948"])
	}
	if rows[1].Cells["UBERON:0000948"] != -1 {
		t.Errorf("S2 cell = %d, want -1", rows[1].Cells["UBERON:0000948"])
	}
}

func TestWriteWithMetadataColumns(t *testing.T) {
	table := resolvedTable(t, resolve.ModeLabel)
	st, _ := store.NewFromEdges(hq.AttrTissue, nil,
		map[string]store.Metadata{
			"S1": {SeriesID: "P1", Platform: "GPL570", Title: "heart rep1"},
			"S2": {SeriesID: "P1", Platform: "GPL570", Title: "liver rep1"},
		},
		map[string]store.Metadata{"P1": {Platform: "GPL570"}})
	if err := resolve.JoinMetadata(table, st, []string{"series", "title"}); err != nil {
		t.Fatalf("JoinMetadata: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, table, FormatTSV); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "entity_id\tUBERON:0000948\tsources\tseries\ttitle" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "S1\t1\tcurator_a\tP1\theart rep1" {
		t.Errorf("S1 row = %q", lines[1])
	}
}
