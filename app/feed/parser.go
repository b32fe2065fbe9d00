package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &Feed{
		Metadata: Metadata{
			Title: strings.TrimSpace(parsed.Title),
			Link:  parsed.Link,
		},
		Entries: make([]Entry, 0, len(parsed.Items)),
	}

	if parsed.Image != nil {
		result.Metadata.ImageURL = parsed.Image.URL
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		result.Entries = append(result.Entries, p.normalizeItem(item))
	}

	return result, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:        item.Title,
		Link:         strings.TrimSpace(item.Link),
		Summary:      cmp.Or(item.Description, item.Content),
		Published:    item.PublishedParsed,
		Updated:      item.UpdatedParsed,
		PublishedRaw: strings.TrimSpace(item.Published),
		UpdatedRaw:   strings.TrimSpace(item.Updated),
		ImageURL:     p.extractImage(item),
	}

	if entry.Link == "" && strings.HasPrefix(item.GUID, "http") {
		entry.Link = item.GUID
	}

	return entry
}

// extractImage picks the first image enclosure, then the item image, then
// Media RSS content or thumbnails.
func (p *Parser) extractImage(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" && (name == "thumbnail" || ext.Attrs["medium"] == "image" || strings.HasPrefix(ext.Attrs["type"], "image/")) {
					return u
				}
			}
		}
	}

	return ""
}
