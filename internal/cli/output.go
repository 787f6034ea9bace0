package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/leengari/csvpatch/internal/patcher"
	"github.com/leengari/csvpatch/internal/storage/writer"
)

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printSummary prints one line per patch and a closing status line
func printSummary(w io.Writer, report *patcher.Report) error {
	for _, r := range report.Results {
		if r.Matched == 0 {
			if _, err := fmt.Fprintf(w, "WARNING: %s: no rows matched\n", r.Patch); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %d row(s) matched\n", r.Patch, r.Matched); err != nil {
			return err
		}
	}

	changes := len(report.Changes())
	var err error
	switch {
	case report.Written:
		_, err = fmt.Fprintf(w, "CSV updated: %s (%d field(s) changed)\n", report.Destination, changes)
	case report.DryRun:
		_, err = fmt.Fprintf(w, "dry run: %s not written (%d field(s) would change)\n", report.Destination, changes)
	default:
		_, err = fmt.Fprintf(w, "CSV not written: %s\n", report.Destination)
	}
	return err
}

// printDiffs prints each changed row as a character diff of its quoted
// record. Data row N is line N+2 of the file (line 1 is the header).
func printDiffs(w io.Writer, report *patcher.Report, ending writer.LineEnding, colorize bool) error {
	del := color.New(color.FgRed, color.Bold)
	ins := color.New(color.FgGreen, color.Bold)
	head := color.New(color.FgCyan)
	for _, c := range []*color.Color{del, ins, head} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	dmp := diffpatch.New()
	for _, d := range report.Diffs() {
		before := strings.TrimRight(writer.FormatRecord(d.Before, ending), "\r\n")
		after := strings.TrimRight(writer.FormatRecord(d.After, ending), "\r\n")

		diffs := dmp.DiffMain(before, after, false)
		diffs = dmp.DiffCleanupSemantic(diffs)

		var sb strings.Builder
		sb.WriteString(head.Sprintf("@@ line %d @@", d.Index+2))
		sb.WriteByte('\n')
		for _, diff := range diffs {
			switch diff.Type {
			case diffpatch.DiffDelete:
				sb.WriteString(del.Sprint("[-" + diff.Text + "-]"))
			case diffpatch.DiffInsert:
				sb.WriteString(ins.Sprint("{+" + diff.Text + "+}"))
			case diffpatch.DiffEqual:
				sb.WriteString(diff.Text)
			}
		}
		sb.WriteByte('\n')

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
