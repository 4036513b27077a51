package hq

import (
	"sort"
	"strings"

	"github.com/metahq/metahq/errors"
)

// Attribute identifies an annotation domain (what kind of thing is curated).
type Attribute string

// Supported attributes
const (
	AttrTissue   Attribute = "tissue"
	AttrDisease  Attribute = "disease"
	AttrCelltype Attribute = "celltype"
	AttrSex      Attribute = "sex"
	AttrAge      Attribute = "age"
)

// Ontology namespaces backing the hierarchical attributes
const (
	OntologyUberon = "UBERON"
	OntologyMondo  = "MONDO"
	OntologyCL     = "CL"
)

// EcodeAny is the explicit no-restriction marker for evidence code filters.
// It behaves identically to an absent filter.
const EcodeAny = "any"

// DefaultRecordDOI is the Zenodo record the current data package release
// is published under.
const DefaultRecordDOI = "17666183"

// SupportedDataVersions is the semver constraint for data packages this
// CLI can read. The -0 prerelease floor on the upper bound keeps alpha
// releases inside the range.
const SupportedDataVersions = ">= 1.0.0-alpha, < 2.0.0-0"

// DataRecord describes one published data package release.
type DataRecord struct {
	Version  string
	Filename string
}

var dataRecords = map[string]DataRecord{
	"17663087": {Version: "1.0.0-alpha", Filename: "metahq.tar.gz"},
	"17666183": {Version: "1.0.1-alpha", Filename: "metahq_data.tar.gz"},
}

// Record returns release information for a Zenodo record DOI.
func Record(doi string) (DataRecord, error) {
	rec, ok := dataRecords[doi]
	if !ok {
		return DataRecord{}, errors.Newf("expected DOI in %v, got %q", RecordDOIs(), doi)
	}
	return rec, nil
}

// RecordDOIs returns the known data package DOIs in sorted order.
func RecordDOIs() []string {
	dois := make([]string, 0, len(dataRecords))
	for doi := range dataRecords {
		dois = append(dois, doi)
	}
	sort.Strings(dois)
	return dois
}

// ZenodoRecordsURL is the base URL data packages are downloaded from.
const ZenodoRecordsURL = "https://zenodo.org/records"

// Attributes returns every supported annotation attribute.
func Attributes() []Attribute {
	return []Attribute{AttrTissue, AttrDisease, AttrCelltype, AttrSex, AttrAge}
}

// ParseAttribute validates an attribute name.
func ParseAttribute(s string) (Attribute, error) {
	for _, attr := range Attributes() {
		if strings.EqualFold(s, string(attr)) {
			return attr, nil
		}
	}
	return "", errors.Newf("expected attribute in %v, got %q", Attributes(), s)
}

// Ontology returns the ontology namespace backing a hierarchical attribute,
// or false for the flat attributes (sex, age).
func (a Attribute) Ontology() (string, bool) {
	switch a {
	case AttrTissue:
		return OntologyUberon, true
	case AttrDisease:
		return OntologyMondo, true
	case AttrCelltype:
		return OntologyCL, true
	}
	return "", false
}

// Hierarchical reports whether the attribute is backed by an ontology DAG.
// Only hierarchical attributes support the propagate and label modes.
func (a Attribute) Hierarchical() bool {
	_, ok := a.Ontology()
	return ok
}

// Ecodes returns the supported evidence codes, most rigorous first.
// EcodeAny is a filter marker, not a curation value, so it is excluded.
func Ecodes() []string {
	return []string{"expert", "semi", "crowd"}
}

// ValidEcode reports whether s is a supported evidence code or the
// any-marker.
func ValidEcode(s string) bool {
	if strings.EqualFold(s, EcodeAny) {
		return true
	}
	for _, e := range Ecodes() {
		if strings.EqualFold(s, e) {
			return true
		}
	}
	return false
}

// Levels returns the supported entity levels.
func Levels() []string {
	return []string{"sample", "series"}
}

// Modes returns the supported resolution modes.
func Modes() []string {
	return []string{"direct", "propagate", "label"}
}

// Formats returns the supported output formats.
func Formats() []string {
	return []string{"tsv", "csv", "json"}
}

// Species returns the supported species values.
func Species() []string {
	return []string{
		"homo sapiens",
		"mus musculus",
		"rattus norvegicus",
		"danio rerio",
		"caenorhabditis elegans",
		"drosophila melanogaster",
	}
}

// Technologies returns the supported assay technologies.
func Technologies() []string {
	return []string{"microarray", "rnaseq"}
}

// SexTerms returns the term IDs used for sex annotations.
func SexTerms() []string {
	return []string{"M", "F"}
}

// AgeGroups returns the age bins used for age annotations.
func AgeGroups() []string {
	return []string{
		"0-10", "10-20", "20-30", "30-40", "40-50",
		"50-60", "60-70", "70-80", "80-90", "90-100",
	}
}

// MetadataFields returns the metadata fields available at a level.
// Samples carry a back-reference to their owning series; series expose a
// sample count instead.
func MetadataFields(level string) []string {
	switch level {
	case "sample":
		return []string{"series", "platform", "title", "description"}
	case "series":
		return []string{"platform", "title", "description", "sample_count"}
	}
	return nil
}

// MapSexTerm maps the spelled-out sex names to their curated term IDs.
// Unrecognized values pass through untouched so the engine can reject them.
func MapSexTerm(term string) string {
	switch strings.ToLower(term) {
	case "male":
		return "M"
	case "female":
		return "F"
	}
	return term
}
