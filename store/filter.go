package store

import (
	"strings"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
)

// Filter restricts the edge set a query resolves over. Empty fields (or the
// explicit "any" marker) mean no restriction on that dimension. Values are
// matched exactly, case-insensitively; a value outside the curated data
// simply matches nothing.
type Filter struct {
	Species    string
	Technology string
	Ecodes     []string
}

// ParseFilter parses a comma-separated key=value filter string such as
// "species=homo sapiens,ecode=expert". Recognized keys are species,
// technology and ecode; ecode accepts multiple values joined with "|".
// A fragment that is not a recognized key=value pair is a syntax error.
func ParseFilter(spec string) (Filter, error) {
	var f Filter
	if strings.TrimSpace(spec) == "" {
		return f, nil
	}

	seen := make(map[string]bool)
	for _, fragment := range strings.Split(spec, ",") {
		key, value, ok := strings.Cut(fragment, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return Filter{}, errors.NewFilterSyntaxError(fragment)
		}
		key = strings.ToLower(key)
		if seen[key] {
			return Filter{}, errors.Wrapf(errors.ErrFilterSyntax, "duplicate key %q", key)
		}
		seen[key] = true

		if strings.EqualFold(value, hq.EcodeAny) {
			// Explicit no-restriction marker, same as omitting the key.
			switch key {
			case "species", "technology", "ecode":
				continue
			}
		}

		switch key {
		case "species":
			f.Species = value
		case "technology":
			f.Technology = value
		case "ecode":
			for _, code := range strings.Split(value, "|") {
				code = strings.TrimSpace(code)
				if code == "" {
					return Filter{}, errors.NewFilterSyntaxError(fragment)
				}
				f.Ecodes = append(f.Ecodes, code)
			}
		default:
			return Filter{}, errors.Wrapf(errors.ErrFilterSyntax, "unknown key %q", key)
		}
	}
	return f, nil
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return f.Species == "" && f.Technology == "" && len(f.Ecodes) == 0
}

// Matches reports whether an edge passes the filter.
func (f Filter) Matches(e Edge) bool {
	if f.Species != "" && !strings.EqualFold(e.Species, f.Species) {
		return false
	}
	if f.Technology != "" && !strings.EqualFold(e.Technology, f.Technology) {
		return false
	}
	if len(f.Ecodes) > 0 {
		matched := false
		for _, code := range f.Ecodes {
			if strings.EqualFold(e.Ecode, code) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Apply returns the edges passing the filter, preserving order. The input
// slice is returned unchanged when the filter restricts nothing.
func (f Filter) Apply(edges []Edge) []Edge {
	if f.IsZero() {
		return edges
	}
	var kept []Edge
	for _, e := range edges {
		if f.Matches(e) {
			kept = append(kept, e)
		}
	}
	return kept
}
