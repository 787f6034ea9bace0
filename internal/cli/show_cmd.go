package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leengari/csvpatch/internal/domain/data"
	"github.com/leengari/csvpatch/internal/predicate"
	"github.com/leengari/csvpatch/internal/storage/loader"
	"github.com/leengari/csvpatch/internal/validation"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		key     string
		where   string
		columns []string
		ragged  string
	)

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print rows of a CSV file, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ragged == "" {
				ragged = a.cfg.Ragged
			}
			policy, err := loader.ParseRaggedPolicy(ragged)
			if err != nil {
				return err
			}

			table, err := loader.LoadFile(args[0], loader.Options{Ragged: policy})
			if err != nil {
				return err
			}

			var preds []predicate.Func
			if key != "" {
				col, val, err := validation.ParseAssignment(key)
				if err != nil {
					return fmt.Errorf("--key: %w", err)
				}
				if err := validation.ValidateColumns("--key", table.Header, []string{col}); err != nil {
					return err
				}
				preds = append(preds, predicate.KeyEquals(col, val))
			}
			if where != "" {
				pred, err := predicate.Compile(where, table.Header)
				if err != nil {
					return err
				}
				preds = append(preds, pred)
			}

			cols := table.Header
			if len(columns) > 0 {
				if err := validation.ValidateColumns("--columns", table.Header, columns); err != nil {
					return err
				}
				cols = columns
			}

			match := predicate.And(preds...)
			var evalErr error
			rows := table.Select(func(r data.Row) bool {
				ok, err := match(r)
				if err != nil && evalErr == nil {
					evalErr = err
				}
				return ok
			}, nil)
			if evalErr != nil {
				return evalErr
			}

			return PrintRows(cmd.OutOrStdout(), cols, rows)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Only rows where column equals value (column=value)")
	cmd.Flags().StringVar(&where, "where", "", "Only rows where the expression is true")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to print (default all)")
	cmd.Flags().StringVar(&ragged, "ragged", "", "Policy for rows with a wrong field count (reject, pad)")

	return cmd
}

// PrintRows renders rows as an aligned text table
func PrintRows(w io.Writer, columns []string, rows []data.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(columns, "\t"))

	// Separator
	seps := make([]string, len(columns))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(seps, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row.Record(columns), "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "(%d row(s))\n", len(rows))
	return err
}
