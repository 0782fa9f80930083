package leafcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kamilpajak/leafcheck/internal/database"
	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/kamilpajak/leafcheck/internal/predict"
	"github.com/kamilpajak/leafcheck/internal/render"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	output     string
	serviceURL string
	verbose    bool
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <image> [image...]",
		Short: "Diagnose one or more leaf photos",
		Long: `Upload leaf photos to the classification service and print the diagnosis.

Images are analyzed one after another. Each IMAGE must be a PNG or JPEG file
of at most 16 MiB.

Examples:
  leafcheck analyze ./tomato-leaf.jpg
  leafcheck analyze ./a.png ./b.jpg --output json
  leafcheck analyze ./leaf.jpg --service-url http://gpu-box:5000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&opts.serviceURL, "service-url", "", "Prediction service URL (overrides config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests and state transitions")
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalOptions, opts *analyzeOptions, paths []string) error {
	format, err := render.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	cfg := g.cfg
	if opts.serviceURL != "" {
		cfg.ServiceURL = opts.serviceURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log := g.log
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := predict.NewClient(cfg.ServiceURL, cfg.Timeout,
		predict.WithRateLimit(cfg.RateLimit),
		predict.WithLogger(log),
	)
	machine := lifecycle.New(client, lifecycle.WithLogger(log))

	stderr := cmd.ErrOrStderr()
	term := render.NewTerminal(cmd.OutOrStdout(), stderr, format, render.IsInteractive(stderr))
	machine.Subscribe(term)
	defer term.Release()

	if cfg.DatabaseURL != "" {
		db, err := openHistory(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("diagnosis history unavailable")
		} else {
			defer db.Close()
			machine.Subscribe(database.NewRecorder(db, log))
		}
	}

	var failed int
	for i, path := range paths {
		if i > 0 {
			machine.Reset()
		}

		img, err := predict.LoadImage(path)
		if err != nil {
			_, _ = color.New(color.FgRed).Fprintf(stderr, "✗ %v\n", err)
			failed++
			continue
		}

		st, err := machine.Select(ctx, img)
		if err != nil {
			return fmt.Errorf("analysis of %s was not completed: %w", path, err)
		}
		if err := term.Err(); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if st.Kind == lifecycle.Failed {
			failed++
		}
	}

	switch {
	case failed == 0:
		return nil
	case len(paths) == 1:
		return errors.New("analysis failed")
	default:
		return fmt.Errorf("%d of %d analyses failed", failed, len(paths))
	}
}
