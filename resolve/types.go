// Package resolve turns direct annotation edges into entity-by-term result
// tables under the three resolution modes.
package resolve

import (
	"sort"
	"strings"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/store"
)

// Mode selects how direct edges are expanded over the ontology.
type Mode string

// Resolution modes
const (
	// ModeDirect emits only curator-asserted positives, untouched.
	ModeDirect Mode = "direct"
	// ModePropagate emits positives for a term and all its descendants.
	ModePropagate Mode = "propagate"
	// ModeLabel assigns every annotated entity a label per term.
	ModeLabel Mode = "label"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range hq.Modes() {
		if strings.EqualFold(s, m) {
			return Mode(m), nil
		}
	}
	return "", errors.Newf("expected mode in %v, got %q", hq.Modes(), s)
}

// Label is the resolution outcome of one entity-term cell. It is an opaque
// enum internally; the -1/0/1/2 wire encoding exists only at serialization,
// via Code.
type Label int

// Label values. Positive always wins over control; control overrides
// negative and unknown.
const (
	LabelNegative Label = iota // no evidence linking the entity to the term
	LabelUnknown               // annotated only to an ancestor, so membership is undecidable
	LabelPositive              // annotated to the term or one of its descendants
	LabelControl               // healthy control in a series that has positives for the term
)

// Code returns the wire encoding written to output tables.
func (l Label) Code() int {
	switch l {
	case LabelUnknown:
		return 0
	case LabelPositive:
		return 1
	case LabelControl:
		return 2
	}
	return -1
}

func (l Label) String() string {
	switch l {
	case LabelUnknown:
		return "unknown"
	case LabelPositive:
		return "positive"
	case LabelControl:
		return "control"
	}
	return "negative"
}

// Cell is one entity-term result. Sources is sorted and de-duplicated.
type Cell struct {
	Label   Label
	Sources []string
}

// SourceString renders the backing sources as a stable pipe-joined list.
func (c Cell) SourceString() string {
	return strings.Join(c.Sources, "|")
}

// Table is an entity-by-term result matrix. Entities are sorted; Terms keep
// query order. In direct and propagate modes only positive cells are set;
// in label mode every cell of every row is set.
type Table struct {
	Attribute hq.Attribute
	Level     store.Level
	Mode      Mode
	Terms     []string
	Entities  []string

	cells map[string]map[string]Cell

	// Joined metadata columns, in join order.
	MetaFields []string
	meta       map[string]map[string]string
}

func newTable(attribute hq.Attribute, level store.Level, mode Mode, terms []string) *Table {
	return &Table{
		Attribute: attribute,
		Level:     level,
		Mode:      mode,
		Terms:     terms,
		cells:     make(map[string]map[string]Cell),
	}
}

func (t *Table) setCell(entity, term string, cell Cell) {
	row, ok := t.cells[entity]
	if !ok {
		row = make(map[string]Cell, len(t.Terms))
		t.cells[entity] = row
	}
	row[term] = cell
}

// Cell returns the cell for an entity and term, and whether it is set.
func (t *Table) Cell(entity, term string) (Cell, bool) {
	cell, ok := t.cells[entity][term]
	return cell, ok
}

// Empty reports whether the table has no rows. An empty table is a valid
// result, not an error.
func (t *Table) Empty() bool {
	return len(t.Entities) == 0
}

// Positives returns the entities with a positive cell for term, in row order.
func (t *Table) Positives(term string) []string {
	var out []string
	for _, entity := range t.Entities {
		if cell, ok := t.Cell(entity, term); ok && cell.Label == LabelPositive {
			out = append(out, entity)
		}
	}
	return out
}

// MetaValue returns a joined metadata value for an entity, empty if unset.
func (t *Table) MetaValue(entity, field string) string {
	return t.meta[entity][field]
}

func (t *Table) setMeta(entity, field, value string) {
	if t.meta == nil {
		t.meta = make(map[string]map[string]string)
	}
	row, ok := t.meta[entity]
	if !ok {
		row = make(map[string]string)
		t.meta[entity] = row
	}
	row[field] = value
}

// finalize sorts the entity rows so identical queries yield identical tables.
func (t *Table) finalize() {
	t.Entities = t.Entities[:0]
	for entity := range t.cells {
		t.Entities = append(t.Entities, entity)
	}
	sort.Strings(t.Entities)
}

// mergeSources unions source lists into sorted, de-duplicated form.
func mergeSources(lists ...[]string) []string {
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
	sort.Strings(merged)
	return merged
}
