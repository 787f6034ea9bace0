package writer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leengari/csvpatch/internal/domain/errors"
	"github.com/leengari/csvpatch/internal/domain/schema"
)

// BOMPolicy decides which encoding a saved table is written in
type BOMPolicy string

const (
	// BOMPreserve writes the encoding the table was loaded with
	BOMPreserve BOMPolicy = "preserve"
	// BOMAlways writes UTF-8 with a leading marker
	BOMAlways BOMPolicy = "always"
	// BOMNever writes plain UTF-8
	BOMNever BOMPolicy = "never"
)

// LineEnding terminates every written record
type LineEnding string

const (
	CRLF LineEnding = "crlf"
	LF   LineEnding = "lf"
)

// ParseBOMPolicy validates a policy name; empty means BOMPreserve
func ParseBOMPolicy(s string) (BOMPolicy, error) {
	switch BOMPolicy(s) {
	case "", BOMPreserve:
		return BOMPreserve, nil
	case BOMAlways, BOMNever:
		return BOMPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown BOM policy %q: use 'preserve', 'always' or 'never'", s)
	}
}

// ParseLineEnding validates a line ending name; empty means CRLF
func ParseLineEnding(s string) (LineEnding, error) {
	switch LineEnding(s) {
	case "", CRLF:
		return CRLF, nil
	case LF:
		return LF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q: use 'crlf' or 'lf'", s)
	}
}

func (l LineEnding) terminator() string {
	if l == LF {
		return "\n"
	}
	return "\r\n"
}

// Options controls how a table is serialized
type Options struct {
	BOM        BOMPolicy
	LineEnding LineEnding
}

// OutputEncoding resolves the on-disk encoding for t under the BOM policy
func (o Options) OutputEncoding(t *schema.Table) schema.Encoding {
	switch o.BOM {
	case BOMAlways:
		return schema.EncodingUTF8BOM
	case BOMNever:
		return schema.EncodingUTF8
	default:
		if t.Encoding == "" {
			return schema.EncodingUTF8
		}
		return t.Encoding
	}
}

// FormatRecord renders one record with every field quoted
func FormatRecord(record []string, ending LineEnding) string {
	var sb strings.Builder
	for i, field := range record {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteString(ending.terminator())
	return sb.String()
}

// Encode writes the header and all rows of t to w
func Encode(w io.Writer, t *schema.Table, opts Options) error {
	t.RLock()
	defer t.RUnlock()

	enc, err := opts.OutputEncoding(t).NewWriter(w)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(enc)
	if _, err := bw.WriteString(FormatRecord(t.Header, opts.LineEnding)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := bw.WriteString(FormatRecord(row.Record(t.Header), opts.LineEnding)); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// SaveTable persists the table to dest using temp + atomic rename
func SaveTable(t *schema.Table, dest string, opts Options) error {
	if t == nil || dest == "" {
		return fmt.Errorf("cannot save table: nil or missing path")
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(dest); err == nil {
		mode = info.Mode().Perm()
	}

	// A unique name next to dest keeps the rename on one filesystem
	pattern := filepath.Base(dest) + ".*.tmp"
	f, err := os.CreateTemp(filepath.Dir(dest), pattern)
	if err != nil {
		return &errors.IOError{Op: "create", Path: filepath.Join(filepath.Dir(dest), pattern), Err: err}
	}
	tmpPath := f.Name()

	if err := f.Chmod(mode); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &errors.IOError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := Encode(f, t, opts); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &errors.IOError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &errors.IOError{Op: "sync", Path: tmpPath, Err: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return &errors.IOError{Op: "close", Path: tmpPath, Err: err}
	}

	// Atomic replace
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return &errors.IOError{Op: "rename", Path: dest, Err: err}
	}

	t.Lock()
	t.Dirty = false
	t.Unlock()

	slog.Info("table saved",
		slog.String("table", t.Name),
		slog.String("path", dest),
		slog.String("encoding", string(opts.OutputEncoding(t))),
		slog.Int("row_count", len(t.Rows)),
	)

	return nil
}
