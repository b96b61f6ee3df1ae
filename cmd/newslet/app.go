package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhijeet6401/newslet/internal/analyzer"
	"github.com/abhijeet6401/newslet/internal/config"
	"github.com/abhijeet6401/newslet/internal/crawler"
	"github.com/abhijeet6401/newslet/internal/inference"
	"github.com/abhijeet6401/newslet/internal/logger"
	"github.com/abhijeet6401/newslet/internal/runner"
	"github.com/abhijeet6401/newslet/internal/store"
	"github.com/abhijeet6401/newslet/pkg/httpclient"
	"github.com/abhijeet6401/newslet/pkg/providers"
	"github.com/abhijeet6401/newslet/pkg/publishers"
)

// app owns every long-lived component of one process.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	sources    *providers.SourceRegistry
	store      *store.Store
	history    *runner.History
	dispatcher *publishers.Dispatcher
	analyzer   *analyzer.Analyzer
	runner     *runner.Runner
}

// loadBase resolves config and logging only; commands that touch just the
// store use it to avoid probing the inference endpoint.
func loadBase() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config, log logger.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Storage.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// newApp wires the full pipeline.
func newApp(ctx context.Context) (_ *app, err error) {
	cfg, log, err := loadBase()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Scrape.SourcesFile != "" {
		if a.sources, err = providers.LoadSources(cfg.Scrape.SourcesFile); err != nil {
			return nil, fmt.Errorf("loading sources: %w", err)
		}
	} else {
		a.sources = providers.DefaultSources()
	}

	client := httpclient.NewRestyClient(cfg.Scrape.RequestTimeout, httpclient.WithRetries(2, 500*time.Millisecond))
	collector := crawler.NewCollector(a.sources, providers.DefaultFetcherRegistry(client, nil), log)

	var capability analyzer.Capability
	if cfg.Inference.Enabled {
		capability = inference.New(cfg.Inference, httpclient.NewRestyClient(cfg.Inference.Timeout))
	}
	a.analyzer = analyzer.New(analyzer.Select(ctx, capability, log), log)

	if a.store, err = openStore(cfg, log); err != nil {
		return nil, err
	}
	if a.history, err = runner.OpenHistory(cfg.Storage.HistoryPath); err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}

	deps := runner.Deps{
		Collector:   collector,
		Analyzer:    a.analyzer,
		Store:       a.store,
		History:     a.history,
		SnapshotDir: cfg.Storage.SnapshotDir,
		SourceDelay: cfg.Scrape.SourceDelay,
		Log:         log,
	}
	if cfg.Scrape.FetchContent {
		deps.Content = crawler.NewScraper(client, log, cfg.Scrape.ContentWorkers)
	}
	if cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			return nil, fmt.Errorf("loading publishers: %w", err)
		}
		if a.dispatcher, err = publishers.NewDispatcher(ctx, reg, nil, log); err != nil {
			return nil, fmt.Errorf("building publishers: %w", err)
		}
		deps.Events = a.dispatcher
	}

	if a.runner, err = runner.New(deps); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases everything newApp opened.
func (a *app) Close() error {
	var errs []error
	if a.dispatcher != nil {
		errs = append(errs, a.dispatcher.Close())
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
