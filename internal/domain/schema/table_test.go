package schema

import (
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvpatch/internal/domain/data"
)

func TestNewTableRejectsBadHeaders(t *testing.T) {
	_, err := NewTable("t", []string{"id", "id"})
	assert.ErrorContains(t, err, "duplicate column")

	_, err = NewTable("t", []string{"id", ""})
	assert.ErrorContains(t, err, "empty name")
}

func TestNewTableCopiesHeader(t *testing.T) {
	header := []string{"id", "status"}
	table, err := NewTable("t", header)
	assert.NilError(t, err)

	header[0] = "changed"
	assert.Equal(t, table.Header[0], "id")
	assert.Equal(t, table.ColumnIndex("status"), 1)
	assert.Assert(t, !table.HasColumn("owner"))
}

func TestAppendAndValidate(t *testing.T) {
	table, err := NewTable("t", []string{"id", "status"})
	assert.NilError(t, err)

	assert.NilError(t, table.Append([]string{"A", "open"}))
	assert.ErrorContains(t, table.Append([]string{"B"}), "record has 1 fields")
	assert.NilError(t, table.Validate())

	table.Rows = append(table.Rows, data.Row{"id": "C", "state": "open"})
	assert.ErrorContains(t, table.Validate(), `row 1 is missing column "status"`)
}

func TestAppendWhileValidating(t *testing.T) {
	table, err := NewTable("t", []string{"id", "status"})
	assert.NilError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = table.Append([]string{"A", "open"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = table.Validate()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(table.Rows), 200)
	assert.NilError(t, table.Validate())
}

func TestSelectReturnsCopies(t *testing.T) {
	table, err := NewTable("t", []string{"id", "status"})
	assert.NilError(t, err)
	assert.NilError(t, table.Append([]string{"A", "open"}))
	assert.NilError(t, table.Append([]string{"B", "done"}))

	rows := table.Select(func(r data.Row) bool { return r["status"] == "open" }, nil)
	assert.Equal(t, len(rows), 1)

	rows[0]["status"] = "mutated"
	assert.Equal(t, table.Rows[0]["status"], "open")
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		raw  []byte
		want Encoding
	}{
		{raw: []byte("id\n"), want: EncodingUTF8},
		{raw: []byte("\xEF\xBB\xBFid\n"), want: EncodingUTF8BOM},
		{raw: []byte{0xFF, 0xFE, 'i', 0}, want: EncodingUTF16LE},
		{raw: []byte{0xFE, 0xFF, 0, 'i'}, want: EncodingUTF16BE},
		{raw: nil, want: EncodingUTF8},
	}

	for _, tt := range tests {
		got := DetectEncoding(tt.raw)
		assert.Equal(t, got, tt.want)
		assert.Equal(t, got.HasBOM(), len(tt.raw) > 0 && tt.raw[0] != 'i')
	}
}

func TestEncodingDecode(t *testing.T) {
	out, err := EncodingUTF8BOM.Decode([]byte("\xEF\xBB\xBFid"))
	assert.NilError(t, err)
	assert.Equal(t, string(out), "id")

	out, err = EncodingUTF16LE.Decode([]byte{0xFF, 0xFE, 'i', 0, 'd', 0})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "id")

	_, err = EncodingUTF16LE.Decode([]byte{0xFF, 0xFE, 'i', 0, 0x00, 0xD8})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Encoding("latin-1").Decode([]byte("id"))
	assert.ErrorContains(t, err, "unsupported encoding")
}
