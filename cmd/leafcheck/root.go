package leafcheck

import (
	"fmt"
	"os"

	"github.com/kamilpajak/leafcheck/internal/config"
	"github.com/kamilpajak/leafcheck/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand and filled in before any of
// them runs.
type globalOptions struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "leafcheck",
		Short: "Plant disease diagnosis from leaf photos",
		Long: `leafcheck uploads a leaf photo to a plant-disease classification
service and shows the diagnosis, the most likely alternatives, and the
treatment advisory returned with it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/leafcheck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *globalOptions) load(cmd *cobra.Command) error {
	bootstrap := logging.New(o.logLevel, logging.FormatAuto, cmd.ErrOrStderr())

	cfg, err := config.Load(o.configPath, bootstrap)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	o.cfg = cfg
	o.log = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
