package leafcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kamilpajak/leafcheck/internal/database"
	"github.com/kamilpajak/leafcheck/internal/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var (
		limit  int
		output string
		purge  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent diagnoses",
		Long: `List diagnoses stored in the history database (requires DATABASE_URL).

With --purge the history table is dropped instead. It is recreated empty the
next time a diagnosis is recorded or listed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.DatabaseURL == "" {
				return errors.New("history is disabled, set DATABASE_URL to enable it")
			}
			if purge {
				if err := database.MigrateDown(g.cfg.DatabaseURL); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Diagnosis history deleted.")
				return nil
			}
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := openHistory(ctx, g.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			diagnoses, err := db.ListDiagnoses(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list diagnoses: %w", err)
			}
			return printHistory(cmd.OutOrStdout(), diagnoses, format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of diagnoses to show")
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&purge, "purge", false, "Delete all recorded diagnoses")
	cmd.MarkFlagsMutuallyExclusive("purge", "limit")
	return cmd
}

// openHistory migrates the history schema and connects to it.
func openHistory(ctx context.Context, databaseURL string) (*database.DB, error) {
	if err := database.Migrate(databaseURL); err != nil {
		return nil, err
	}
	return database.New(ctx, databaseURL)
}

func printHistory(w io.Writer, diagnoses []database.Diagnosis, format render.Format) error {
	switch format {
	case render.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnoses)
	case render.FormatYAML:
		out, err := yaml.Marshal(diagnoses)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	if len(diagnoses) == 0 {
		fmt.Fprintln(w, "No diagnoses recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tIMAGE\tDIAGNOSIS\tCONFIDENCE\tRISK")
	for _, d := range diagnoses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\n",
			d.CreatedAt.Local().Format("2006-01-02 15:04"), d.ImageName, d.DisplayLabel, d.Confidence, d.Risk)
	}
	return tw.Flush()
}
