package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies how a table file was encoded on disk
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-bom"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding inspects the leading byte-order marker.
// Input without a recognised marker is treated as plain UTF-8.
func DetectEncoding(raw []byte) Encoding {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(raw, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(raw, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// HasBOM reports whether files in this encoding start with a marker
func (e Encoding) HasBOM() bool {
	return e != EncodingUTF8
}

// IsUTF8 reports whether the on-disk bytes are UTF-8
func (e Encoding) IsUTF8() bool {
	return e == EncodingUTF8 || e == EncodingUTF8BOM
}

func (e Encoding) codec() (encoding.Encoding, error) {
	switch e {
	case EncodingUTF8, "":
		return unicode.UTF8, nil
	case EncodingUTF8BOM:
		return unicode.UTF8BOM, nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", string(e))
	}
}

// ErrMalformedInput is returned by Decode when the bytes do not survive a
// decode/encode cycle
var ErrMalformedInput = errors.New("malformed input")

// Decode converts raw file bytes to UTF-8 with any marker stripped
func (e Encoding) Decode(raw []byte) ([]byte, error) {
	switch e {
	case EncodingUTF8, "":
		return raw, nil
	case EncodingUTF8BOM:
		return bytes.TrimPrefix(raw, bomUTF8), nil
	}

	codec, err := e.codec()
	if err != nil {
		return nil, err
	}
	out, err := codec.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e, err)
	}

	// The decoder substitutes U+FFFD for unpaired surrogates and odd bytes
	back, err := codec.NewEncoder().Bytes(out)
	if err != nil || !bytes.Equal(back, raw) {
		return nil, fmt.Errorf("decode %s: %w", e, ErrMalformedInput)
	}
	return out, nil
}

// NewWriter wraps w so UTF-8 text written to it lands on disk in this
// encoding, marker first. Close must be called to flush the transformer.
func (e Encoding) NewWriter(w io.Writer) (io.WriteCloser, error) {
	if e == EncodingUTF8 || e == "" {
		return nopCloser{w}, nil
	}

	codec, err := e.codec()
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, codec.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
