package schema

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/leengari/csvpatch/internal/domain/data"
	"github.com/leengari/csvpatch/internal/domain/transaction"
)

// Table represents a delimited file held in memory: its header, its rows in
// file order, and the encoding it was read with
type Table struct {
	mu       sync.RWMutex
	Name     string
	Path     string // filesystem path the table was loaded from
	Header   []string
	Rows     []data.Row
	Encoding Encoding
	Dirty    bool // tracks if table has unsaved changes
}

// NewTable creates an empty table with the given header.
// Column names must be unique and non-empty.
func NewTable(name string, header []string) (*Table, error) {
	seen := make(map[string]bool, len(header))
	for i, col := range header {
		if col == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		seen[col] = true
	}

	h := make([]string, len(header))
	copy(h, header)

	return &Table{
		Name:     name,
		Header:   h,
		Rows:     []data.Row{},
		Encoding: EncodingUTF8,
	}, nil
}

// MarkDirty marks the table as having unsaved changes
func (t *Table) MarkDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.MarkDirtyUnsafe()
}

// MarkDirtyUnsafe sets dirty flag without acquiring lock
// IMPORTANT: Only call this when you already hold the table lock!
func (t *Table) MarkDirtyUnsafe() {
	t.Dirty = true
}

// Lock acquires an exclusive lock on the table for write operations
func (t *Table) Lock() {
	t.mu.Lock()
}

// Unlock releases the exclusive lock
func (t *Table) Unlock() {
	t.mu.Unlock()
}

// RLock acquires a read lock on the table for read operations
func (t *Table) RLock() {
	t.mu.RLock()
}

// RUnlock releases the read lock
func (t *Table) RUnlock() {
	t.mu.RUnlock()
}

// HasColumn reports whether name is part of the header
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the header position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Header {
		if col == name {
			return i
		}
	}
	return -1
}

// Append adds a record in header order
func (t *Table) Append(record []string) error {
	t.Lock()
	defer t.Unlock()

	if len(record) != len(t.Header) {
		return fmt.Errorf("record has %d fields, header has %d", len(record), len(t.Header))
	}

	t.Rows = append(t.Rows, data.NewRow(t.Header, record))
	return nil
}

// Select returns copies of rows that match the given predicate
func (t *Table) Select(predicate func(data.Row) bool, tx *transaction.Transaction) []data.Row {
	t.RLock()
	defer t.RUnlock()

	if tx != nil {
		slog.Debug("Select operation", "table", t.Name, "tx_id", tx.ID)
	}

	var result []data.Row
	for _, row := range t.Rows {
		if predicate(row) {
			result = append(result, row.Copy())
		}
	}
	return result
}

// Validate checks that every row carries exactly the header's columns
func (t *Table) Validate() error {
	t.RLock()
	defer t.RUnlock()

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d fields, header has %d", i, len(row), len(t.Header))
		}
		for _, col := range t.Header {
			if _, ok := row[col]; !ok {
				return fmt.Errorf("row %d is missing column %q", i, col)
			}
		}
	}
	return nil
}
