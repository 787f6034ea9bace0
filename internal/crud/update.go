package crud

import (
	"fmt"
	"log/slog"

	"github.com/leengari/csvpatch/internal/domain/schema"
	"github.com/leengari/csvpatch/internal/domain/transaction"
	"github.com/leengari/csvpatch/internal/patch"
)

// Apply compiles p against the table header and runs Update with it
func Apply(table *schema.Table, p patch.Patch, tx *transaction.Transaction) (int, error) {
	compiled, err := patch.Compile(p, table.Header)
	if err != nil {
		return 0, err
	}
	return Update(table, compiled, tx)
}

// Update overwrites the patch's fields on every row its predicate matches.
// Returns the number of matching rows, including rows that already held the
// target values. Fields that actually change are recorded on tx when given.
// If the predicate fails on any row nothing is modified.
func Update(table *schema.Table, p *patch.Compiled, tx *transaction.Transaction) (int, error) {
	// Acquire write lock for the entire operation
	table.Lock()
	defer table.Unlock()

	label := p.Label()
	columns := p.Columns()

	var matches []int
	for i, row := range table.Rows {
		ok, err := p.Match(row)
		if err != nil {
			return 0, fmt.Errorf("patch %s on row %d: %w", label, i, err)
		}
		if ok {
			matches = append(matches, i)
		}
	}

	changed := 0
	for _, i := range matches {
		row := table.Rows[i]
		for _, col := range columns {
			newVal := p.Set[col]
			oldVal := row[col]
			if oldVal == newVal {
				continue
			}
			row[col] = newVal
			changed++
			if tx != nil {
				tx.Record(transaction.Change{
					Patch:    label,
					RowIndex: i,
					Column:   col,
					Old:      oldVal,
					New:      newVal,
				})
			}
		}
	}

	if changed > 0 {
		table.MarkDirtyUnsafe()
	}

	slog.Debug("patch applied",
		slog.String("table", table.Name),
		slog.String("patch", label),
		slog.Int("matched", len(matches)),
		slog.Int("fields_changed", changed),
	)

	return len(matches), nil
}
