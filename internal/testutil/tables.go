package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leengari/csvpatch/internal/domain/data"
	"github.com/leengari/csvpatch/internal/domain/schema"
)

// IssuesCSV is a tracker export in the layout the patch scripts were written
// for: UTF-8 with BOM, every field quoted, CRLF line endings
const IssuesCSV = "\xEF\xBB\xBF" +
	`"id","title","dev_state","review_initial_state","git_state","notes"` + "\r\n" +
	`"PMB-010","auth handler","已完成","已验收","已提交",""` + "\r\n" +
	`"PMB-030","favorite model","未开始","","",""` + "\r\n" +
	`"PMB-040","favorite endpoints","未开始","","","needs ""folder"" API"` + "\r\n" +
	`"PMB-050","watch later","进行中","","","split, later"` + "\r\n"

// CreateStatusTable creates the two-row id/status table used by most tests
func CreateStatusTable(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.NewTable("status.csv", []string{"id", "status"})
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	table.Rows = []data.Row{
		{"id": "A", "status": "open"},
		{"id": "B", "status": "open"},
	}
	return table
}

// CreateTaskTable creates a three-column table with a duplicated key
func CreateTaskTable(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.NewTable("tasks.csv", []string{"id", "status", "owner"})
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	table.Rows = []data.Row{
		{"id": "1", "status": "open", "owner": "ann"},
		{"id": "2", "status": "open", "owner": ""},
		{"id": "3", "status": "closed", "owner": "bob"},
		{"id": "2", "status": "blocked", "owner": "cy"},
	}
	return table
}

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path as a string
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(b)
}

// SnapshotRows copies every row so later mutation can be detected
func SnapshotRows(table *schema.Table) []data.Row {
	rows := make([]data.Row, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = r.Copy()
	}
	return rows
}
