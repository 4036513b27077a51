// Package errors provides error handling for MetaHQ.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnknownTerm) {
//	    // handle bad query term
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the annotation retrieval pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnknownTerm indicates a query term is absent from the ontology graph.
	// Never down-level this to a warning: a silently dropped term would be
	// indistinguishable from "no entity has it", which corrupts label semantics.
	ErrUnknownTerm = New("unknown ontology term")

	// ErrUnsupportedMode indicates a mode/attribute combination that cannot be
	// resolved (e.g. label or propagate on sex or age, which have no hierarchy)
	ErrUnsupportedMode = New("unsupported resolution mode")

	// ErrFilterSyntax indicates a filter string that could not be parsed as
	// comma-separated key=value pairs
	ErrFilterSyntax = New("malformed filter")

	// ErrUnsupportedMetadataField indicates a metadata field that does not
	// exist at the requested level
	ErrUnsupportedMetadataField = New("unsupported metadata field")

	// ErrUnsupportedFormat indicates an output format the exporter cannot emit
	ErrUnsupportedFormat = New("unsupported output format")

	// ErrNoResults indicates a search or lookup matched nothing
	ErrNoResults = New("no results found")
)

// NewUnknownTermError creates an unknown-term error naming the offending term ID.
func NewUnknownTermError(termID string) error {
	return Wrapf(ErrUnknownTerm, "term %q", termID)
}

// NewUnsupportedModeError creates an unsupported-mode error naming the mode
// and the attribute it was requested for.
func NewUnsupportedModeError(mode, attribute string) error {
	return Wrapf(ErrUnsupportedMode, "mode %q for attribute %q", mode, attribute)
}

// NewFilterSyntaxError creates a filter-syntax error naming the bad fragment.
func NewFilterSyntaxError(fragment string) error {
	return Wrapf(ErrFilterSyntax, "expected key=value, got %q", fragment)
}

// NewUnsupportedMetadataFieldError creates a metadata-field error naming the
// field and the level it was requested at.
func NewUnsupportedMetadataFieldError(field, level string) error {
	return Wrapf(ErrUnsupportedMetadataField, "field %q at level %q", field, level)
}

// IsUnknownTerm checks if an error is or wraps ErrUnknownTerm
func IsUnknownTerm(err error) bool {
	return err != nil && Is(err, ErrUnknownTerm)
}

// IsUnsupportedMode checks if an error is or wraps ErrUnsupportedMode
func IsUnsupportedMode(err error) bool {
	return err != nil && Is(err, ErrUnsupportedMode)
}

// IsFilterSyntax checks if an error is or wraps ErrFilterSyntax
func IsFilterSyntax(err error) bool {
	return err != nil && Is(err, ErrFilterSyntax)
}

// IsNoResults checks if an error is or wraps ErrNoResults
func IsNoResults(err error) bool {
	return err != nil && Is(err, ErrNoResults)
}
