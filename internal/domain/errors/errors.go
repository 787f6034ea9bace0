package errors

import (
	"fmt"
	"strings"
)

// FormatError reports input that cannot be turned into a table
// (field count mismatch, bad CSV syntax, undecodable text, bad header)
type FormatError struct {
	Path   string // source path (empty for in-memory streams)
	Line   int    // 1-based line of the offending record (0 if unknown)
	Want   int    // expected field count (0 if not a count mismatch)
	Got    int    // actual field count
	Reason string // human-readable explanation
	Err    error  // underlying parser error, if any
}

func (e *FormatError) Error() string {
	var parts []string

	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("format error in %s", e.Path))
	} else {
		parts = append(parts, "format error")
	}

	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", e.Line))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Want > 0 {
		parts = append(parts, fmt.Sprintf("expected %d fields, got %d", e.Want, e.Got))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to read or write the table file
type IOError struct {
	Op   string // "open", "read", "write", "rename", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NoMatchWarning reports a patch whose predicate matched zero rows.
// It is returned as an error only when the no-match policy is strict.
type NoMatchWarning struct {
	Patch string // patch label
}

func (e *NoMatchWarning) Error() string {
	return fmt.Sprintf("patch %s matched no rows", e.Patch)
}

// PatchError reports a patch that cannot be applied to a table
type PatchError struct {
	Patch  string // patch label
	Column string // offending column (empty if patch-level)
	Reason string
	Err    error
}

func (e *PatchError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("invalid patch %s", e.Patch))

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

func NewFieldCountMismatch(path string, line, want, got int) *FormatError {
	return &FormatError{
		Path:   path,
		Line:   line,
		Want:   want,
		Got:    got,
		Reason: "field count does not match header",
	}
}

func NewInvalidEncoding(path, encoding string) *FormatError {
	return &FormatError{
		Path:   path,
		Reason: fmt.Sprintf("input is not valid %s", encoding),
	}
}

func NewUnknownColumn(patch, column string) *PatchError {
	return &PatchError{
		Patch:  patch,
		Column: column,
		Reason: "column not in header",
	}
}
