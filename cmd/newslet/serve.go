package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abhijeet6401/newslet/internal/server"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.cfg
		addr := cfg.Server.Addr
		if flagAddr != "" {
			addr = flagAddr
		}
		srv := server.New(server.Options{
			Addr:          addr,
			ReadTimeout:   cfg.Server.ReadTimeout,
			WriteTimeout:  cfg.Server.WriteTimeout,
			Runner:        a.runner,
			Store:         a.store,
			NewsletterDir: cfg.Storage.NewsletterDir,
			SnapshotDir:   cfg.Storage.SnapshotDir,
			AnalyzerInfo:  a.analyzer.Info(),
			Defaults: server.Defaults{
				Sources:       cfg.Scrape.Sources,
				DaysBack:      cfg.Scrape.DaysBack,
				MinImportance: cfg.Newsletter.MinImportance,
				MaxArticles:   cfg.Newsletter.MaxArticles,
				Format:        cfg.Newsletter.Format,
			},
			Log: a.log,
		})
		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
}
