// Package patch defines row patches and the YAML files that carry them.
package patch

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/leengari/csvpatch/internal/domain/errors"
	"github.com/leengari/csvpatch/internal/predicate"
	"github.com/leengari/csvpatch/internal/validation"
)

// Patch selects rows and overwrites some of their fields.
// Rows are selected by key equality (Key == Value), by the Where
// expression, or by both when both are given.
type Patch struct {
	Name  string            `yaml:"name,omitempty"`
	Key   string            `yaml:"key,omitempty"`
	Value string            `yaml:"value,omitempty"`
	Where string            `yaml:"where,omitempty"`
	Set   map[string]string `yaml:"set"`
}

// File is the on-disk layout of a patch file
type File struct {
	Patches []Patch `yaml:"patches"`
}

// Label identifies the patch in logs and reports
func (p Patch) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Key != "":
		return fmt.Sprintf("%s=%s", p.Key, p.Value)
	case p.Where != "":
		return p.Where
	default:
		return "<unnamed>"
	}
}

// Columns returns the updated column names in sorted order
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p.Set))
	for col := range p.Set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Compiled is a patch bound to a specific header
type Compiled struct {
	Patch
	Match predicate.Func
}

// Compile validates the patch against header and builds its predicate
func Compile(p Patch, header []string) (*Compiled, error) {
	label := p.Label()

	if p.Key == "" && p.Where == "" {
		return nil, &errors.PatchError{Patch: label, Reason: "patch needs a key or a where expression"}
	}

	if err := validation.ValidateUpdates(label, p.Set); err != nil {
		return nil, err
	}

	referenced := p.Columns()
	if p.Key != "" {
		referenced = append(referenced, p.Key)
	}
	if err := validation.ValidateColumns(label, header, referenced); err != nil {
		return nil, err
	}

	var preds []predicate.Func
	if p.Key != "" {
		preds = append(preds, predicate.KeyEquals(p.Key, p.Value))
	}
	if p.Where != "" {
		where, err := predicate.Compile(p.Where, header)
		if err != nil {
			return nil, &errors.PatchError{Patch: label, Reason: "invalid where expression", Err: err}
		}
		preds = append(preds, where)
	}

	return &Compiled{Patch: p, Match: predicate.And(preds...)}, nil
}

// Parse decodes a patch file. Unknown fields are rejected so a typo such as
// "sett:" cannot silently turn into a no-op patch.
func Parse(r io.Reader) ([]Patch, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("patch file is empty")
		}
		return nil, fmt.Errorf("parse patch file: %w", err)
	}
	if len(f.Patches) == 0 {
		return nil, fmt.Errorf("patch file defines no patches")
	}
	return f.Patches, nil
}

// LoadFile reads a patch file from disk
func LoadFile(path string) ([]Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	patches, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patches, nil
}
