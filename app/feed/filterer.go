package feed

import (
	"cmp"
	"log/slog"
	"strings"
	"time"
)

const titleMaxLength = 256

// Layouts tried on raw timestamps that the feed parser could not interpret.
var rawTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

type Filterer struct {
	summaryLength int
}

func NewFilterer(summaryLength int) *Filterer {
	return &Filterer{summaryLength: summaryLength}
}

// Run keeps the entries published at or after startOfDay and turns them into
// articles, preserving feed order.
func (f *Filterer) Run(fd *Feed, src Source, startOfDay time.Time) []Article {
	if fd == nil {
		return nil
	}

	source := cmp.Or(src.Name, fd.Metadata.Title, PlaceholderSource)

	articles := make([]Article, 0, len(fd.Entries))
	for _, entry := range fd.Entries {
		if entry.Link == "" {
			slog.Warn("Entry skipped: missing link", "feed", src.URL, "title", entry.Title)
			continue
		}

		publishedAt, ok := entry.PublishedAt()
		if !ok {
			slog.Warn("Entry skipped: missing time info", "feed", src.URL, "link", entry.Link)
			continue
		}

		if publishedAt.Before(startOfDay) {
			continue
		}

		articles = append(articles, f.toArticle(entry, source, publishedAt))
	}

	return articles
}

func (f *Filterer) toArticle(entry Entry, source string, publishedAt time.Time) Article {
	title := cmp.Or(CleanHTML(entry.Title), PlaceholderTitle)
	summary := cmp.Or(CleanHTML(entry.Summary), PlaceholderSummary)

	return Article{
		Title:       Ellipsize(title, titleMaxLength),
		Link:        entry.Link,
		Summary:     Ellipsize(summary, f.summaryLength),
		Source:      source,
		ImageURL:    entry.ImageURL,
		PublishedAt: publishedAt,
	}
}

// PublishedAt resolves the entry's instant: parsed published, parsed updated,
// then the raw published and updated strings.
func (e Entry) PublishedAt() (time.Time, bool) {
	if e.Published != nil {
		return *e.Published, true
	}
	if e.Updated != nil {
		return *e.Updated, true
	}
	for _, raw := range []string{e.PublishedRaw, e.UpdatedRaw} {
		if t, ok := parseRawTime(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseRawTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range rawTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay returns local midnight of now's date in loc.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
