package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leengari/csvpatch/internal/config"
	"github.com/leengari/csvpatch/internal/patch"
	"github.com/leengari/csvpatch/internal/patcher"
	"github.com/leengari/csvpatch/internal/storage/loader"
	"github.com/leengari/csvpatch/internal/storage/writer"
)

// runFlags are shared by every command that rewrites a file
type runFlags struct {
	out        string
	dryRun     bool
	diff       bool
	color      string
	noMatch    string
	ragged     string
	bom        string
	lineEnding string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write to this path instead of replacing the input file")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Apply patches in memory and print the diff without writing")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "Print a diff of every changed row")
	cmd.Flags().StringVar(&f.color, "color", "auto", "Colorize diffs (auto, always, never)")
	cmd.Flags().StringVar(&f.noMatch, "no-match", "", "Policy for patches matching no rows (warn, fail)")
	cmd.Flags().StringVar(&f.ragged, "ragged", "", "Policy for rows with a wrong field count (reject, pad)")
	cmd.Flags().StringVar(&f.bom, "bom", "", "Byte-order marker on write (preserve, always, never)")
	cmd.Flags().StringVar(&f.lineEnding, "line-ending", "", "Record terminator on write (crlf, lf)")
}

// options resolves flag > config for the pipeline policies
func (f *runFlags) options(cfg config.Config) (patcher.Options, error) {
	pick := func(flag, fromConfig string) string {
		if flag != "" {
			return flag
		}
		return fromConfig
	}

	noMatch, err := patcher.ParseNoMatchPolicy(pick(f.noMatch, cfg.NoMatch))
	if err != nil {
		return patcher.Options{}, err
	}
	ragged, err := loader.ParseRaggedPolicy(pick(f.ragged, cfg.Ragged))
	if err != nil {
		return patcher.Options{}, err
	}
	bom, err := writer.ParseBOMPolicy(pick(f.bom, cfg.BOM))
	if err != nil {
		return patcher.Options{}, err
	}
	ending, err := writer.ParseLineEnding(pick(f.lineEnding, cfg.LineEnding))
	if err != nil {
		return patcher.Options{}, err
	}

	return patcher.Options{
		Load:    loader.Options{Ragged: ragged},
		Save:    writer.Options{BOM: bom, LineEnding: ending},
		NoMatch: noMatch,
	}, nil
}

// run executes the patches against file and prints the outcome
func (f *runFlags) run(cmd *cobra.Command, a *app, file string, patches []patch.Patch) error {
	opts, err := f.options(a.cfg)
	if err != nil {
		return err
	}

	colorize, err := resolveColor(f.color, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	p := patcher.New(opts, a.logger)
	report, runErr := p.Run(patcher.Job{
		Source:      file,
		Destination: f.out,
		Patches:     patches,
		DryRun:      f.dryRun,
	})
	if report == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if f.diff || f.dryRun {
		if err := printDiffs(out, report, opts.Save.LineEnding, colorize); err != nil {
			return err
		}
	}
	if err := printSummary(out, report); err != nil {
		return err
	}
	return runErr
}

func resolveColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		return stdoutIsTerminal(w), nil
	default:
		return false, fmt.Errorf("unknown color mode %q: use 'auto', 'always' or 'never'", mode)
	}
}
