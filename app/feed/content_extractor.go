package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"

	"codeberg.org/readeck/go-readability"
)

type Extract struct {
	Excerpt  string
	ImageURL string
}

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run reads an article page and returns its plain-text excerpt and lead image.
func (e *ContentExtractor) Run(data []byte, pageURL string) (Extract, error) {
	if len(data) == 0 {
		return Extract{}, fmt.Errorf("HTML data is empty")
	}

	var base *url.URL
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return Extract{}, fmt.Errorf("invalid page URL: %w", err)
		}
		base = u
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return Extract{}, fmt.Errorf("failed to extract content: %w", err)
	}

	extract := Extract{
		Excerpt:  CleanHTML(article.Excerpt),
		ImageURL: article.Image,
	}
	if extract.Excerpt == "" {
		extract.Excerpt = CleanHTML(article.TextContent)
	}

	if extract.Excerpt == "" && extract.ImageURL == "" {
		return Extract{}, fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"excerpt_length", len(extract.Excerpt),
		"image", extract.ImageURL)

	return extract, nil
}
