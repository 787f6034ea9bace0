package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leengari/csvpatch/internal/patch"
	"github.com/leengari/csvpatch/internal/validation"
)

func newSetCmd(a *app) *cobra.Command {
	var (
		flags       runFlags
		name        string
		key         string
		where       string
		assignments []string
	)

	cmd := &cobra.Command{
		Use:   "set FILE",
		Short: "Overwrite fields on rows matched by key or expression",
		Example: `  csvpatch set issues.csv --key id=PMB-030 --set dev_state=done --set notes="build OK"
  csvpatch set issues.csv --where 'git_state == ""' --set git_state=pending`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPatch(name, key, where, assignments)
			if err != nil {
				return err
			}
			return flags.run(cmd, a, args[0], []patch.Patch{p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Label for the patch in logs and output")
	cmd.Flags().StringVar(&key, "key", "", "Match rows where column equals value (column=value)")
	cmd.Flags().StringVar(&where, "where", "", "Match rows where the expression is true")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Field to overwrite (column=value, repeatable)")
	_ = cmd.MarkFlagRequired("set")
	flags.register(cmd)

	return cmd
}

// buildPatch turns command-line assignments into a Patch
func buildPatch(name, key, where string, assignments []string) (patch.Patch, error) {
	p := patch.Patch{
		Name:  name,
		Where: where,
		Set:   make(map[string]string, len(assignments)),
	}

	if key != "" {
		col, val, err := validation.ParseAssignment(key)
		if err != nil {
			return patch.Patch{}, fmt.Errorf("--key: %w", err)
		}
		p.Key, p.Value = col, val
	}

	for _, s := range assignments {
		col, val, err := validation.ParseAssignment(s)
		if err != nil {
			return patch.Patch{}, fmt.Errorf("--set: %w", err)
		}
		if _, dup := p.Set[col]; dup {
			return patch.Patch{}, fmt.Errorf("--set: column %q assigned twice", col)
		}
		p.Set[col] = val
	}

	return p, nil
}
