package main

import (
	"fmt"

	"github.com/abhijeet6401/newslet/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagSources  []string
	flagDaysBack int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, analyze and store articles once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		req := runner.Request{Sources: a.cfg.Scrape.Sources, DaysBack: a.cfg.Scrape.DaysBack}
		if len(flagSources) > 0 {
			req.Sources = flagSources
		}
		if cmd.Flags().Changed("days-back") {
			req.DaysBack = flagDaysBack
		}

		h, err := a.runner.Start(ctx, req)
		if err != nil {
			return fmt.Errorf("starting run: %w", err)
		}
		st, err := h.Wait(ctx)
		if err != nil {
			return fmt.Errorf("waiting for run: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s: %s\n", st.RunID, st.Message)
		if st.Phase == runner.PhaseError {
			return fmt.Errorf("run failed: %s", st.Error)
		}
		fmt.Fprintf(out, "Articles: %d scraped, %d saved\n", st.ArticleCount, st.SavedCount)
		if st.Snapshot != "" {
			fmt.Fprintf(out, "Snapshot: %s\n", st.Snapshot)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&flagSources, "sources", nil, "source ids to scrape (default from config)")
	runCmd.Flags().IntVar(&flagDaysBack, "days-back", 0, "lookback window in days (default from config)")
}
