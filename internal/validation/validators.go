package validation

import (
	"fmt"
	"strings"

	"github.com/leengari/csvpatch/internal/domain/errors"
)

// ValidateColumns checks that every referenced column exists in the header.
// Writing a column outside the header would break the table's invariant that
// each row carries exactly the header's fields.
func ValidateColumns(patch string, header []string, columns []string) error {
	known := make(map[string]bool, len(header))
	for _, col := range header {
		known[col] = true
	}

	for _, col := range columns {
		if !known[col] {
			return errors.NewUnknownColumn(patch, col)
		}
	}
	return nil
}

// ValidateUpdates checks that a patch rewrites at least one column
func ValidateUpdates(patch string, updates map[string]string) error {
	if len(updates) == 0 {
		return &errors.PatchError{Patch: patch, Reason: "no fields to set"}
	}
	for col := range updates {
		if strings.TrimSpace(col) == "" {
			return &errors.PatchError{Patch: patch, Reason: "empty column name in updates"}
		}
	}
	return nil
}

// ParseAssignment splits "column=value" at the first '='.
// The value may be empty or contain further '=' characters.
func ParseAssignment(s string) (string, string, error) {
	col, val, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid assignment %q, expected column=value", s)
	}
	if col == "" {
		return "", "", fmt.Errorf("invalid assignment %q, column name cannot be empty", s)
	}
	return col, val, nil
}
