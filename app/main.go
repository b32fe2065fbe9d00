package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/lysyi3m/rss-relay/app/bing"
	"github.com/lysyi3m/rss-relay/app/cache"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/message"
	"github.com/lysyi3m/rss-relay/app/pipeline"
	"github.com/lysyi3m/rss-relay/app/telegram"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	initLogger(false)

	config, err := cfg.Load(args)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if config == nil {
		return 0
	}

	initLogger(config.Debug)
	slog.SetDefault(slog.Default().With("run_id", uuid.New().String()[:8]))
	slog.Info("Starting RSS Relay", "version", config.Version, "timezone", config.Location.String())

	sources, err := feed.NewSourceLoader(config.Feeds, config.FeedsFile).Run()
	if err != nil {
		slog.Error("Failed to load feed sources", "error", err)
		return 1
	}
	slog.Info("Feed sources loaded", "count", len(sources.Sources), "icon_rules", len(sources.Icons))

	store, err := cache.Open(config.CacheBackend, config.CacheFile, config.CacheDB)
	if err != nil {
		slog.Error("Failed to open sent links cache", "backend", config.CacheBackend, "error", err)
		return 1
	}
	defer store.Close()

	dialect, err := message.NewDialect(config.ParseMode)
	if err != nil {
		slog.Error("Failed to configure message format", "error", err)
		return 1
	}

	batcher, err := message.NewBatcher(config.BatchMode, config.MessageLength)
	if err != nil {
		slog.Error("Failed to configure batching", "error", err)
		return 1
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), feed.FetcherSettings{
		UserAgent:  config.UserAgent,
		Timeout:    config.FetchTimeout,
		RetryCount: config.RetryCount,
		RetryDelay: config.RetryDelay,
		MaxItems:   config.MaxArticles,
	})
	formatter := message.NewFormatter(dialect, message.NewIconSet(sources.Icons), config.MessageLength)
	sink := telegram.NewClient(httpClient, config.APIURL, config.BotToken, config.ChannelID, dialect.Mode(), config.DeliverTimeout).
		WithInterval(config.SendInterval)

	driver := pipeline.NewDriver(sources.Sources, fetcher, feed.NewFilterer(config.SummaryLength),
		formatter, batcher, sink, store, config.Location, config.WorkerCount)
	if config.ExtractContent {
		driver.WithEnricher(pipeline.NewEnricher(fetcher, feed.NewContentExtractor(), config.SummaryLength))
	}
	if config.DailyImage {
		driver.WithDailyImage(bing.NewClient(httpClient, config.DailyImageURL, config.UserAgent, config.FetchTimeout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := driver.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Run interrupted")
		} else {
			slog.Error("Run failed", "error", err)
		}
		return 1
	}

	return 0
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
