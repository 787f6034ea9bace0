package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Change represents a single field rewritten by a patch
type Change struct {
	Patch    string // patch label
	RowIndex int    // 0-based data row position
	Column   string
	Old      string
	New      string
}

// Transaction collects the changes made during one patch run
type Transaction struct {
	ID        string    // Unique run identifier
	Active    bool      // Whether the run is still accepting changes
	StartTime time.Time // When the run began
	Changes   []Change  // Modifications made, in application order
}

// NewTransaction creates a new transaction with a unique ID
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.New().String(),
		Active:    true,
		StartTime: time.Now(),
		Changes:   make([]Change, 0),
	}
}

// Record appends a change; ignored once the transaction is closed
func (tx *Transaction) Record(c Change) {
	if !tx.Active {
		return
	}
	tx.Changes = append(tx.Changes, c)
}

// ChangedRows returns the distinct row positions touched, in first-touch order
func (tx *Transaction) ChangedRows() []int {
	seen := make(map[int]bool)
	var rows []int
	for _, c := range tx.Changes {
		if !seen[c.RowIndex] {
			seen[c.RowIndex] = true
			rows = append(rows, c.RowIndex)
		}
	}
	return rows
}

// Close marks the transaction as inactive
func (tx *Transaction) Close() {
	tx.Active = false
}
