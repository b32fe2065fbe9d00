package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-relay/app/cache"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/message"
)

var ErrNoSources = errors.New("no feed sources configured")

type FeedFetcher interface {
	Run(ctx context.Context, src feed.Source) (*feed.Feed, error)
}

// Sink delivers one unit to the channel.
type Sink interface {
	Send(ctx context.Context, unit message.Unit) error
}

// ImageSource resolves an image attached to the run's first unit.
type ImageSource interface {
	Run(ctx context.Context) (string, error)
}

type Report struct {
	Sources       int
	FailedSources int
	Fetched       int
	Fresh         int
	New           int
	Units         int
	Delivered     int
	Failed        int
}

type Driver struct {
	sources     []feed.Source
	fetcher     FeedFetcher
	filterer    *feed.Filterer
	formatter   *message.Formatter
	batcher     *message.Batcher
	sink        Sink
	store       cache.Store
	loc         *time.Location
	workerCount int

	enricher   *Enricher
	dailyImage ImageSource
	now        func() time.Time
	stage      Stage
}

func NewDriver(sources []feed.Source, fetcher FeedFetcher, filterer *feed.Filterer, formatter *message.Formatter,
	batcher *message.Batcher, sink Sink, store cache.Store, loc *time.Location, workerCount int) *Driver {
	if loc == nil {
		loc = time.Local
	}

	return &Driver{
		sources:     sources,
		fetcher:     fetcher,
		filterer:    filterer,
		formatter:   formatter,
		batcher:     batcher,
		sink:        sink,
		store:       store,
		loc:         loc,
		workerCount: workerCount,
		now:         time.Now,
	}
}

func (d *Driver) WithEnricher(e *Enricher) *Driver {
	d.enricher = e
	return d
}

func (d *Driver) WithDailyImage(src ImageSource) *Driver {
	d.dailyImage = src
	return d
}

func (d *Driver) WithClock(now func() time.Time) *Driver {
	d.now = now
	return d
}

func (d *Driver) Stage() Stage {
	return d.stage
}

// Run performs one poll-and-deliver pass. Delivery failures are counted in
// the report; only setup failures, cancellation and cache persistence
// failures are returned as errors.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	var report Report
	started := d.now()

	d.enter(StageLoadingSources)
	if len(d.sources) == 0 {
		return report, ErrNoSources
	}
	report.Sources = len(d.sources)

	seen, err := d.store.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load sent links: %w", err)
	}
	slog.Debug("Sent links loaded", "count", seen.Len())

	d.enter(StageFetching)
	results := fetchAll(ctx, d.fetcher, d.sources, d.workerCount)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	d.enter(StageFiltering)
	startOfDay := feed.StartOfDay(d.now(), d.loc)
	var fresh []feed.Article
	for _, res := range results {
		if res.err != nil {
			report.FailedSources++
			slog.Error("Feed unavailable, skipping", "feed", res.source.URL, "error", res.err)
			continue
		}
		report.Fetched += len(res.feed.Entries)

		articles := d.filterer.Run(res.feed, res.source, startOfDay)
		slog.Debug("Feed filtered", "feed", res.source.URL, "entries", len(res.feed.Entries), "today", len(articles))
		fresh = append(fresh, articles...)
	}
	report.Fresh = len(fresh)

	d.enter(StageDeduping)
	var articles []feed.Article
	for _, article := range fresh {
		if seen.Contains(article.Link) {
			continue
		}
		seen.Add(article.Link)
		articles = append(articles, article)
	}
	report.New = len(articles)

	if len(articles) == 0 {
		slog.Info("No new articles today", "sources", report.Sources, "fresh", report.Fresh)
		d.enter(StageDone)
		return report, nil
	}

	d.enter(StageFormatting)
	messages := make([]message.Message, 0, len(articles))
	for _, article := range articles {
		if d.enricher != nil {
			article = d.enricher.Run(ctx, article)
		}
		messages = append(messages, d.formatter.Run(article))
	}

	d.enter(StageBatching)
	units := d.batcher.Run(messages)
	report.Units = len(units)
	d.attachDailyImage(ctx, units)

	d.enter(StageDelivering)
	var delivered []string
	for i, unit := range units {
		if ctx.Err() != nil {
			slog.Warn("Delivery interrupted", "remaining", len(units)-i)
			break
		}

		if err := d.sink.Send(ctx, unit); err != nil {
			report.Failed++
			slog.Error("Delivery failed", "unit", i+1, "articles", len(unit.Links), "error", err)
			continue
		}

		report.Delivered++
		delivered = append(delivered, unit.Links...)
	}

	// Persist even after cancellation so delivered links are not resent.
	d.enter(StagePersistingCache)
	if err := d.store.Record(context.WithoutCancel(ctx), delivered); err != nil {
		return report, fmt.Errorf("failed to persist sent links: %w", err)
	}

	d.enter(StageDone)
	slog.Info("Run completed",
		"sources", report.Sources,
		"failed_sources", report.FailedSources,
		"fetched", report.Fetched,
		"fresh", report.Fresh,
		"new", report.New,
		"units", report.Units,
		"delivered", report.Delivered,
		"failed", report.Failed,
		"duration", d.now().Sub(started))

	return report, ctx.Err()
}

func (d *Driver) attachDailyImage(ctx context.Context, units []message.Unit) {
	if d.dailyImage == nil || len(units) == 0 || units[0].ImageURL != "" {
		return
	}

	imageURL, err := d.dailyImage.Run(ctx)
	if err != nil {
		slog.Warn("Daily image unavailable", "error", err)
		return
	}
	units[0].ImageURL = imageURL
}

func (d *Driver) enter(stage Stage) {
	slog.Debug("Pipeline stage", "from", d.stage.String(), "to", stage.String())
	d.stage = stage
}
