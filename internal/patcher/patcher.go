// Package patcher runs the load → apply → save pipeline over one table file.
package patcher

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/leengari/csvpatch/internal/crud"
	"github.com/leengari/csvpatch/internal/domain/errors"
	"github.com/leengari/csvpatch/internal/domain/schema"
	"github.com/leengari/csvpatch/internal/domain/transaction"
	"github.com/leengari/csvpatch/internal/patch"
	"github.com/leengari/csvpatch/internal/storage/loader"
	"github.com/leengari/csvpatch/internal/storage/writer"
)

// NoMatchPolicy decides whether a patch matching zero rows blocks the save
type NoMatchPolicy string

const (
	// NoMatchWarn reports the patch and still saves the table
	NoMatchWarn NoMatchPolicy = "warn"
	// NoMatchFail aborts the run before anything is written
	NoMatchFail NoMatchPolicy = "fail"
)

// ParseNoMatchPolicy validates a policy name; empty means NoMatchWarn
func ParseNoMatchPolicy(s string) (NoMatchPolicy, error) {
	switch NoMatchPolicy(s) {
	case "", NoMatchWarn:
		return NoMatchWarn, nil
	case NoMatchFail:
		return NoMatchFail, nil
	default:
		return "", fmt.Errorf("unknown no-match policy %q: use 'warn' or 'fail'", s)
	}
}

// Options configures every run of a Patcher
type Options struct {
	Load    loader.Options
	Save    writer.Options
	NoMatch NoMatchPolicy
}

// Job describes one run: which file, which patches, where to write
type Job struct {
	Source      string
	Destination string // defaults to Source
	Patches     []patch.Patch
	DryRun      bool
}

// Patcher applies patch sets to table files
type Patcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Patcher; a nil logger falls back to slog.Default()
func New(opts Options, logger *slog.Logger) *Patcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Patcher{opts: opts, logger: logger}
}

// Run loads job.Source, applies every patch in order and saves the result.
// FormatError, IOError and PatchError abort the run with nothing written.
// Zero-match patches are collected on the report; under NoMatchFail they
// abort the run too. The returned report is non-nil whenever the table was
// loaded, even if the run failed afterwards.
func (p *Patcher) Run(job Job) (*Report, error) {
	tx := transaction.NewTransaction()
	defer tx.Close()

	logger := p.logger.With(slog.String("run_id", tx.ID))

	dest := job.Destination
	if dest == "" {
		dest = job.Source
	}

	table, err := loader.LoadFile(job.Source, p.opts.Load)
	if err != nil {
		logger.Error("load failed", slog.String("path", job.Source), slog.Any("error", err))
		return nil, fmt.Errorf("load %s: %w", job.Source, err)
	}

	report := &Report{
		RunID:       tx.ID,
		Source:      job.Source,
		Destination: dest,
		DryRun:      job.DryRun,
		table:       table,
		tx:          tx,
	}

	for _, pt := range job.Patches {
		matched, err := crud.Apply(table, pt, tx)
		if err != nil {
			logger.Error("patch failed", slog.String("patch", pt.Label()), slog.Any("error", err))
			return report, err
		}

		report.Results = append(report.Results, Result{Patch: pt.Label(), Matched: matched})

		if matched == 0 {
			w := &errors.NoMatchWarning{Patch: pt.Label()}
			report.Warnings = append(report.Warnings, w)
			logger.Warn("patch matched no rows", slog.String("patch", pt.Label()))
			continue
		}

		logger.Info("patch applied",
			slog.String("patch", pt.Label()),
			slog.Int("matched", matched),
		)
	}

	if len(report.Warnings) > 0 && p.opts.NoMatch == NoMatchFail {
		errs := make([]error, len(report.Warnings))
		for i, w := range report.Warnings {
			errs[i] = w
		}
		logger.Error("aborting save: patches matched no rows", slog.Int("count", len(errs)))
		return report, fmt.Errorf("%d patch(es) matched no rows: %w", len(errs), stderrors.Join(errs...))
	}

	if job.DryRun {
		logger.Info("dry run: table not written",
			slog.String("path", dest),
			slog.Int("changes", len(tx.Changes)),
		)
		return report, nil
	}

	if err := writer.SaveTable(table, dest, p.opts.Save); err != nil {
		logger.Error("save failed", slog.String("path", dest), slog.Any("error", err))
		return report, fmt.Errorf("save %s: %w", dest, err)
	}
	report.Written = true

	return report, nil
}

// Result is the outcome of one patch
type Result struct {
	Patch   string
	Matched int
}

// RowDiff holds one changed row rendered before and after the run
type RowDiff struct {
	Index  int
	Before []string
	After  []string
}

// Report summarises a run
type Report struct {
	RunID       string
	Source      string
	Destination string
	DryRun      bool
	Written     bool
	Results     []Result
	Warnings    []*errors.NoMatchWarning

	table *schema.Table
	tx    *transaction.Transaction
}

// Changes returns every field rewritten during the run
func (r *Report) Changes() []transaction.Change {
	return r.tx.Changes
}

// Diffs reconstructs each changed row's previous values by reverting the
// recorded changes, newest first
func (r *Report) Diffs() []RowDiff {
	header := r.table.Header
	var diffs []RowDiff

	for _, idx := range r.tx.ChangedRows() {
		after := r.table.Rows[idx].Record(header)
		before := r.table.Rows[idx].Copy()
		for i := len(r.tx.Changes) - 1; i >= 0; i-- {
			c := r.tx.Changes[i]
			if c.RowIndex == idx {
				before[c.Column] = c.Old
			}
		}
		diffs = append(diffs, RowDiff{Index: idx, Before: before.Record(header), After: after})
	}
	return diffs
}
