package message

import (
	"log/slog"

	"github.com/lysyi3m/rss-relay/app/feed"
)

type Formatter struct {
	dialect   Dialect
	icons     *IconSet
	maxLength int
}

func NewFormatter(dialect Dialect, icons *IconSet, maxLength int) *Formatter {
	return &Formatter{
		dialect:   dialect,
		icons:     icons,
		maxLength: maxLength,
	}
}

func (f *Formatter) Dialect() Dialect {
	return f.dialect
}

// Run renders an article. Text longer than the limit is hard truncated.
func (f *Formatter) Run(article feed.Article) Message {
	text := f.dialect.Render(
		f.icons.Lookup(article.Source),
		article.Title,
		article.Link,
		article.Source,
		article.Summary)

	if Len(text) > f.maxLength {
		slog.Warn("Message truncated to limit", "link", article.Link, "length", Len(text), "limit", f.maxLength)
		text = f.truncate(text, article)
	}

	return Message{
		Text:     text,
		ImageURL: article.ImageURL,
		Link:     article.Link,
	}
}

// truncate cuts text to the limit. When the limit falls inside the title,
// link or source markup, the message degrades to escaped plain text so no
// entity is left open.
func (f *Formatter) truncate(text string, article feed.Article) string {
	icon := f.icons.Lookup(article.Source)
	header := f.dialect.Render(icon, article.Title, article.Link, article.Source, "")
	if Len(header) > f.maxLength {
		text = f.dialect.Escape(icon + " " + article.Title + "\n" + article.Link)
	}

	cut, _ := feed.Truncate(text, f.maxLength)
	return f.dialect.Repair(cut)
}
