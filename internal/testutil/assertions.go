package testutil

import (
	"testing"

	"github.com/leengari/csvpatch/internal/domain/data"
)

// AssertRowCount checks if the result has the expected number of rows
func AssertRowCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, actual)
	}
}

// AssertField checks a single field of a row
func AssertField(t *testing.T, row data.Row, column, expected, context string) {
	t.Helper()
	actual, exists := row[column]
	if !exists {
		t.Errorf("%s: expected column '%s' to exist", context, column)
		return
	}
	if actual != expected {
		t.Errorf("%s: expected %s=%q, got %q", context, column, expected, actual)
	}
}

// AssertRowsEqual checks two row slices field by field
func AssertRowsEqual(t *testing.T, actual, expected []data.Row, context string) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Errorf("%s: expected %d rows, got %d", context, len(expected), len(actual))
		return
	}
	for i := range expected {
		if !actual[i].Equal(expected[i]) {
			t.Errorf("%s: row %d: expected %v, got %v", context, i, expected[i], actual[i])
		}
	}
}
