// Package export renders resolved tables to delimited text and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/resolve"
)

// Format is an output serialization format.
type Format string

// Supported formats
const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range hq.Formats() {
		if strings.EqualFold(s, f) {
			return Format(f), nil
		}
	}
	return "", errors.Wrapf(errors.ErrUnsupportedFormat,
		"expected format in %v, got %q", hq.Formats(), s)
}

// Write renders a table to w. Delimited formats emit a header row of
// entity_id, the term columns, sources, and any joined metadata fields.
// Absent cells (direct and propagate modes) render as empty strings.
func Write(w io.Writer, table *resolve.Table, format Format) error {
	switch format {
	case FormatTSV:
		return writeDelimited(w, table, '\t')
	case FormatCSV:
		return writeDelimited(w, table, ',')
	case FormatJSON:
		return writeJSON(w, table)
	}
	return errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
}

// WriteFile renders a table to a file, creating or truncating it.
func WriteFile(path string, table *resolve.Table, format Format) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hq.DefaultFilePermissions)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Write(f, table, format); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func writeDelimited(w io.Writer, table *resolve.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := append([]string{"entity_id"}, table.Terms...)
	header = append(header, "sources")
	header = append(header, table.MetaFields...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, entity := range table.Entities {
		row := make([]string, 0, len(header))
		row = append(row, entity)

		var sources [][]string
		for _, term := range table.Terms {
			cell, ok := table.Cell(entity, term)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.Itoa(cell.Label.Code()))
			sources = append(sources, cell.Sources)
		}
		row = append(row, strings.Join(unionSources(sources), "|"))

		for _, field := range table.MetaFields {
			row = append(row, table.MetaValue(entity, field))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row for %s", entity)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush output")
}

type jsonRow struct {
	EntityID string            `json:"entity_id"`
	Cells    map[string]int    `json:"cells"`
	Sources  []string          `json:"sources,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w io.Writer, table *resolve.Table) error {
	rows := make([]jsonRow, 0, len(table.Entities))
	for _, entity := range table.Entities {
		row := jsonRow{EntityID: entity, Cells: make(map[string]int)}

		var sources [][]string
		for _, term := range table.Terms {
			cell, ok := table.Cell(entity, term)
			if !ok {
				continue
			}
			row.Cells[term] = cell.Label.Code()
			sources = append(sources, cell.Sources)
		}
		row.Sources = unionSources(sources)

		if len(table.MetaFields) > 0 {
			row.Metadata = make(map[string]string, len(table.MetaFields))
			for _, field := range table.MetaFields {
				row.Metadata[field] = table.MetaValue(entity, field)
			}
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(rows), "encode json")
}

// unionSources merges per-cell source lists into one sorted, de-duplicated
// row-level attribution.
func unionSources(lists [][]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	sort.Strings(merged)
	return merged
}
