package loader

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/leengari/csvpatch/internal/domain/errors"
	"github.com/leengari/csvpatch/internal/domain/schema"
)

// RaggedPolicy decides what happens to data rows whose field count differs
// from the header
type RaggedPolicy string

const (
	// RaggedReject fails the load with a FormatError
	RaggedReject RaggedPolicy = "reject"
	// RaggedPad fills short rows with empty strings; long rows are still rejected
	RaggedPad RaggedPolicy = "pad"
)

// ParseRaggedPolicy validates a policy name; empty means RaggedReject
func ParseRaggedPolicy(s string) (RaggedPolicy, error) {
	switch RaggedPolicy(s) {
	case "", RaggedReject:
		return RaggedReject, nil
	case RaggedPad:
		return RaggedPad, nil
	default:
		return "", fmt.Errorf("unknown ragged row policy %q: use 'reject' or 'pad'", s)
	}
}

// Options controls how a table is parsed
type Options struct {
	Ragged RaggedPolicy
}

// LoadFile reads and parses the table stored at path
func LoadFile(path string, opts Options) (*schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	table, err := load(f, path, opts)
	if err != nil {
		return nil, err
	}
	table.Name = filepath.Base(path)
	table.Path = path

	slog.Info("table loaded",
		slog.String("table", table.Name),
		slog.String("path", path),
		slog.String("encoding", string(table.Encoding)),
		slog.Bool("bom", table.Encoding.HasBOM()),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)),
	)

	return table, nil
}

// Load parses a table from an in-memory stream
func Load(r io.Reader, opts Options) (*schema.Table, error) {
	return load(r, "", opts)
}

func load(r io.Reader, path string, opts Options) (*schema.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &errors.IOError{Op: "read", Path: path, Err: err}
	}

	enc := schema.DetectEncoding(raw)
	if enc.IsUTF8() && !utf8.Valid(raw) {
		return nil, errors.NewInvalidEncoding(path, string(enc))
	}

	text, err := enc.Decode(raw)
	if stderrors.Is(err, schema.ErrMalformedInput) {
		return nil, errors.NewInvalidEncoding(path, string(enc))
	}
	if err != nil {
		return nil, &errors.FormatError{Path: path, Reason: "cannot decode input", Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(text))
	// Field counts are checked below so the ragged policy can apply
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &errors.FormatError{Path: path, Line: 1, Reason: "missing header line"}
	}
	if err != nil {
		return nil, parseError(path, err)
	}

	// encoding/csv folds CRLF inside quoted fields to LF; those fields are
	// re-read from the text so the line breaks survive a save
	var fields *fieldSource
	if bytes.Contains(text, []byte("\r\n")) {
		fields = newFieldSource(text)
	}
	fields.restore(reader, header)

	table, err := schema.NewTable("", header)
	if err != nil {
		return nil, &errors.FormatError{Path: path, Line: 1, Reason: "invalid header", Err: err}
	}
	table.Encoding = enc

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(path, err)
		}

		fields.restore(reader, record)

		if len(record) != len(header) {
			line, _ := reader.FieldPos(0)
			if len(record) > len(header) || opts.Ragged != RaggedPad {
				return nil, errors.NewFieldCountMismatch(path, line, len(header), len(record))
			}
			slog.Debug("padding short row",
				slog.String("path", path),
				slog.Int("line", line),
				slog.Int("fields", len(record)),
			)
			record = append(record, make([]string, len(header)-len(record))...)
		}

		if err := table.Append(record); err != nil {
			return nil, fmt.Errorf("append row: %w", err)
		}
	}

	return table, nil
}

// fieldSource maps reader field positions back to offsets in the decoded text
type fieldSource struct {
	text       []byte
	lineStarts []int
}

func newFieldSource(text []byte) *fieldSource {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &fieldSource{text: text, lineStarts: starts}
}

// restore replaces multi-line fields of the record just read with their
// exact text
func (s *fieldSource) restore(reader *csv.Reader, record []string) {
	if s == nil {
		return
	}
	for i, field := range record {
		if !strings.Contains(field, "\n") {
			continue
		}
		line, col := reader.FieldPos(i)
		if exact, ok := s.quoted(line, col); ok {
			record[i] = exact
		}
	}
}

// quoted unescapes the quoted field opening at line:col (1-based, bytes)
// without touching its line breaks
func (s *fieldSource) quoted(line, col int) (string, bool) {
	if line < 1 || line > len(s.lineStarts) {
		return "", false
	}
	p := s.lineStarts[line-1] + col - 1
	if p < 0 || p >= len(s.text) || s.text[p] != '"' {
		return "", false
	}

	var sb strings.Builder
	for p++; p < len(s.text); p++ {
		c := s.text[p]
		if c == '"' {
			if p+1 < len(s.text) && s.text[p+1] == '"' {
				sb.WriteByte('"')
				p++
				continue
			}
			return sb.String(), true
		}
		sb.WriteByte(c)
	}
	return "", false
}

func parseError(path string, err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return &errors.FormatError{Path: path, Line: pe.Line, Reason: "malformed CSV", Err: pe.Err}
	}
	return &errors.FormatError{Path: path, Reason: "malformed CSV", Err: err}
}
