package pipeline

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-relay/app/feed"
)

type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Enricher fills a missing summary or lead image from the article page.
type Enricher struct {
	pages         PageFetcher
	extractor     *feed.ContentExtractor
	summaryLength int
}

func NewEnricher(pages PageFetcher, extractor *feed.ContentExtractor, summaryLength int) *Enricher {
	return &Enricher{
		pages:         pages,
		extractor:     extractor,
		summaryLength: summaryLength,
	}
}

// Run returns the article with gaps filled where the page allows it. Any
// failure leaves the article as it was.
func (e *Enricher) Run(ctx context.Context, article feed.Article) feed.Article {
	needsSummary := article.Summary == feed.PlaceholderSummary
	needsImage := article.ImageURL == ""
	if !needsSummary && !needsImage {
		return article
	}

	data, err := e.pages.FetchPage(ctx, article.Link)
	if err != nil {
		slog.Debug("Article page unavailable", "link", article.Link, "error", err)
		return article
	}

	extract, err := e.extractor.Run(data, article.Link)
	if err != nil {
		slog.Debug("Content extraction failed", "link", article.Link, "error", err)
		return article
	}

	if needsSummary && extract.Excerpt != "" {
		article.Summary = feed.Ellipsize(extract.Excerpt, e.summaryLength)
	}
	if needsImage && extract.ImageURL != "" {
		article.ImageURL = extract.ImageURL
	}

	return article
}
