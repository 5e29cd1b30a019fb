package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/archive"
	"github.com/bingokit/drawsync/internal/config"
	"github.com/bingokit/drawsync/internal/engine"
	"github.com/bingokit/drawsync/internal/extract"
	"github.com/bingokit/drawsync/internal/id/uuid"
	"github.com/bingokit/drawsync/internal/publisher/pubsub"
	"github.com/bingokit/drawsync/internal/scrape"
	"github.com/bingokit/drawsync/internal/store"
	"github.com/bingokit/drawsync/internal/store/postgres"
	"github.com/bingokit/drawsync/internal/transport"
)

// buildGateway selects the persistence gateway from config.
func buildGateway(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Gateway, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		gw, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: int32(cfg.DB.MaxConns),
			MinConns: int32(cfg.DB.MinConns),
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres gateway: %w", err)
		}
		return gw, gw.Close, nil
	default:
		gw, err := store.NewFileGateway(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open file gateway: %w", err)
		}
		return gw, func() {}, nil
	}
}

// buildEngine assembles the full acquisition pipeline from config. The
// returned cleanup releases every connection the wiring opened.
func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine.Engine, store.Gateway, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	gateway, closeGateway, err := buildGateway(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanups = append(cleanups, closeGateway)

	client := transport.NewClient(transport.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	}, logger)
	retry := transport.NewRetryPolicy(cfg.HTTP.MaxRetries, time.Duration(cfg.HTTP.BackoffInitialMs)*time.Millisecond)

	extractor := extract.NewExtractor(nil, nil)
	normalizer := extract.NewNormalizer()

	docFetcher := scrape.NewCollyFetcher(scrape.FetcherConfig{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	}, logger)
	var renderer scrape.Renderer
	if cfg.Headless.Enabled {
		chrome, err := scrape.NewChromedpRenderer(scrape.RendererConfig{
			Enabled:     true,
			UserAgent:   cfg.HTTP.UserAgent,
			PageTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("start renderer: %w", err)
		}
		cleanups = append(cleanups, chrome.Close)
		renderer = chrome
	}
	scraper := scrape.New(docFetcher, renderer, normalizer, logger)

	dims := engine.Dimensions{
		Endpoints:   cfg.Search.Endpoints,
		DateKeys:    cfg.Search.DateKeys,
		DateFormats: parseDateFormats(cfg.Search.DateFormats),
		PageKeys:    cfg.Search.PageKeys,
		Methods:     cfg.Search.Methods,
		PageOrigins: cfg.Search.PageOrigins,
	}

	opts := []engine.Option{engine.WithIDGenerator(uuid.New())}

	switch cfg.Archive.Driver {
	case "local":
		arch, err := archive.NewLocalArchive(cfg.Archive.Dir)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("open local archive: %w", err)
		}
		opts = append(opts, engine.WithArchiver(arch))
	case "gcs":
		arch, err := archive.NewGCSArchive(ctx, cfg.Archive.GCSBucket, logger)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("open GCS archive: %w", err)
		}
		cleanups = append(cleanups, func() { _ = arch.Close() })
		opts = append(opts, engine.WithArchiver(arch))
	}

	if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
		pub, err := pubsub.New(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("open pubsub publisher: %w", err)
		}
		cleanups = append(cleanups, func() { _ = pub.Close() })
		opts = append(opts, engine.WithPublisher(pub))
	}

	eng := engine.New(engine.Config{
		PageSize:        cfg.Search.PageSize,
		MaxPages:        cfg.Search.MaxPages,
		PaceDelay:       cfg.PaceDelay(),
		HTMLURLs:        cfg.HTML.URLs,
		HTMLPollRetries: cfg.HTML.PollRetries,
		HTMLPollDelay:   time.Duration(cfg.HTML.PollDelaySeconds) * time.Second,
		PublishTopic:    cfg.PubSub.TopicName,
	}, dims, client, retry, extractor, normalizer, scraper, gateway, logger, opts...)

	return eng, gateway, cleanup, nil
}

func parseDateFormats(names []string) []engine.DateFormat {
	out := make([]engine.DateFormat, 0, len(names))
	for _, n := range names {
		switch n {
		case "slash":
			out = append(out, engine.DateFormatSlash)
		case "roc":
			out = append(out, engine.DateFormatROC)
		default:
			out = append(out, engine.DateFormatISO)
		}
	}
	return out
}
