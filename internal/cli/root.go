package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leengari/csvpatch/internal/config"
	"github.com/leengari/csvpatch/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries state resolved once per invocation
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	closeFn func()
}

func (a *app) close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Execute runs the CLI.
func Execute() int {
	a := &app{}
	defer a.close()

	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	var (
		configPath string
		logLevel   string
		seqURL     string
	)

	rootCmd := &cobra.Command{
		Use:           "csvpatch",
		Short:         "Patch rows of a CSV file in place",
		Long:          "Loads a CSV file, overwrites fields on rows matched by key or expression, and writes the file back with every field quoted.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// An explicit --config must exist; the default location is optional
			path := configPath
			optional := !cmd.Flags().Changed("config")
			if path == "" {
				path = config.Path()
			}

			cfg, err := config.Load(path, optional)
			if err != nil {
				return err
			}
			cfg.ApplyEnv(os.Getenv)

			// Apply precedence: flag > env > file > default
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("seq-url") {
				cfg.SeqURL = seqURL
			}

			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger, a.closeFn = logging.SetupLogger(logging.Options{
				Level:  level,
				SeqURL: cfg.SeqURL,
				Output: cmd.ErrOrStderr(),
			})
			slog.SetDefault(a.logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.csvpatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&seqURL, "seq-url", "", "Seq server URL for structured logs")

	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newSetCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "csvpatch %s (%s)\n", version, commit)
			return err
		},
	}
}

func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f.Fd())
}
