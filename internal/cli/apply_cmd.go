package cli

import (
	"github.com/spf13/cobra"

	"github.com/leengari/csvpatch/internal/patch"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		flags      runFlags
		patchFiles []string
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply the patches from one or more patch files",
		Long:  "Loads FILE, applies every patch from the given YAML patch files in order, and writes the table back.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patches []patch.Patch
			for _, path := range patchFiles {
				loaded, err := patch.LoadFile(path)
				if err != nil {
					return err
				}
				patches = append(patches, loaded...)
			}
			return flags.run(cmd, a, args[0], patches)
		},
	}

	cmd.Flags().StringArrayVarP(&patchFiles, "patches", "p", nil, "YAML patch file (repeatable)")
	_ = cmd.MarkFlagRequired("patches")
	flags.register(cmd)

	return cmd
}
