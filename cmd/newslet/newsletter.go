package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/abhijeet6401/newslet/internal/newsletter"
	"github.com/abhijeet6401/newslet/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagTitle         string
	flagFormat        string
	flagMinImportance float64
	flagMaxArticles   int
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Render a newsletter from stored articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadBase()
		if err != nil {
			return err
		}
		defer log.Sync()

		format := cfg.Newsletter.Format
		if flagFormat != "" {
			format = flagFormat
		}
		if !newsletter.ValidFormat(format) {
			return fmt.Errorf("%w: %q (want one of %v)", newsletter.ErrUnsupportedFormat, format, newsletter.Formats())
		}
		minImp := cfg.Newsletter.MinImportance
		if cmd.Flags().Changed("min-importance") {
			minImp = flagMinImportance
		}
		maxArts := cfg.Newsletter.MaxArticles
		if cmd.Flags().Changed("max-articles") {
			maxArts = flagMaxArticles
		}

		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		arts, err := st.Query(cmd.Context(), store.Filter{MinImportance: minImp, Limit: maxArts})
		if err != nil {
			return fmt.Errorf("querying articles: %w", err)
		}
		if len(arts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No articles found matching criteria.")
			return nil
		}

		now := time.Now()
		title := flagTitle
		if title == "" {
			title = newsletter.DefaultTitle(now)
		}
		content, err := newsletter.Render(arts, title, format, now)
		if err != nil {
			return fmt.Errorf("rendering newsletter: %w", err)
		}
		name, err := newsletter.Write(cfg.Storage.NewsletterDir, format, content, now)
		if err != nil {
			return fmt.Errorf("writing newsletter: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d article(s) to %s\n", len(arts), filepath.Join(cfg.Storage.NewsletterDir, name))
		return nil
	},
}

func init() {
	newsletterCmd.Flags().StringVar(&flagTitle, "title", "", "newsletter title")
	newsletterCmd.Flags().StringVar(&flagFormat, "format", "", "output format: html, csv, json or md")
	newsletterCmd.Flags().Float64Var(&flagMinImportance, "min-importance", 0, "minimum importance score")
	newsletterCmd.Flags().IntVar(&flagMaxArticles, "max-articles", 0, "maximum number of articles")
}
