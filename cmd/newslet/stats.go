package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored article statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadBase()
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s\n", cfg.Storage.DBPath)
		fmt.Fprintf(out, "Articles: %d\n", stats.TotalArticles)
		fmt.Fprintf(out, "Sources: %d\n", stats.TotalSources)
		fmt.Fprintf(out, "Average sentiment: %.3f\n", stats.AverageSentiment)
		fmt.Fprintf(out, "Average importance: %.3f\n", stats.AverageImportance)

		sources := make([]string, 0, len(stats.SourceBreakdown))
		for s := range stats.SourceBreakdown {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			fmt.Fprintf(out, "  %-16s %d\n", s, stats.SourceBreakdown[s])
		}
		return nil
	},
}
