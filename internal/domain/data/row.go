package data

// Row represents a single table row
// Key = column name, Value = raw cell text
type Row map[string]string

// NewRow creates a Row from a header and a record of the same length
func NewRow(header []string, record []string) Row {
	row := make(Row, len(header))
	for i, col := range header {
		row[col] = record[i]
	}
	return row
}

// Copy creates a copy of the row to prevent mutation
func (r Row) Copy() Row {
	copy := make(Row, len(r))
	for k, v := range r {
		copy[k] = v
	}
	return copy
}

// Record returns the row values in header order
func (r Row) Record(header []string) []string {
	record := make([]string, len(header))
	for i, col := range header {
		record[i] = r[col]
	}
	return record
}

// Equal reports whether both rows hold the same fields and values
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
