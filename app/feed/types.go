package feed

import (
	"time"
)

// Source configuration types

type Source struct {
	Name string `yaml:"name"` // Optional; overrides the feed's own title
	URL  string `yaml:"url"`
}

type IconRule struct {
	Match  string `yaml:"match"`
	Symbol string `yaml:"symbol"`
}

type SourceList struct {
	Sources []Source   `yaml:"feeds"`
	Icons   []IconRule `yaml:"icons"`
}

// Feed processing types

type Metadata struct {
	Title    string
	Link     string
	ImageURL string
}

type Entry struct {
	Title        string
	Link         string
	Summary      string // Possibly HTML
	Published    *time.Time
	Updated      *time.Time
	PublishedRaw string // Unparsed published value as found in the document
	UpdatedRaw   string
	ImageURL     string
}

type Feed struct {
	Metadata Metadata
	Entries  []Entry
}

// Article is the cleaned projection of an Entry that survived the date filter.
type Article struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	ImageURL    string
	PublishedAt time.Time
}

const (
	PlaceholderTitle   = "no title"
	PlaceholderSummary = "no summary"
	PlaceholderSource  = "unknown source"
)
