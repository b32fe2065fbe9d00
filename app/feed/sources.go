package feed

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceLoader struct {
	feeds     []string
	feedsFile string
}

// NewSourceLoader creates a loader. Inline feeds take precedence over the file.
func NewSourceLoader(feeds []string, feedsFile string) *SourceLoader {
	return &SourceLoader{
		feeds:     feeds,
		feedsFile: feedsFile,
	}
}

func (l *SourceLoader) Run() (*SourceList, error) {
	var list *SourceList

	if len(l.feeds) > 0 {
		list = &SourceList{}
		for _, u := range l.feeds {
			list.Sources = append(list.Sources, Source{URL: u})
		}
	} else {
		data, err := os.ReadFile(l.feedsFile)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("feeds file '%s' not found", l.feedsFile)
			}
			return nil, fmt.Errorf("failed to read feeds file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(l.feedsFile)) {
		case ".yml", ".yaml":
			list, err = parseYAMLSources(data)
		default:
			list, err = parseLineSources(data)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid feeds file %s: %w", l.feedsFile, err)
		}
	}

	if err := validateSources(list); err != nil {
		return nil, err
	}

	if len(list.Sources) == 0 {
		return nil, fmt.Errorf("no feed sources found")
	}

	slog.Debug("Feed sources loaded", "count", len(list.Sources), "icon_rules", len(list.Icons))

	return list, nil
}

func parseYAMLSources(data []byte) (*SourceList, error) {
	var list SourceList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i := range list.Sources {
		list.Sources[i].URL = strings.TrimSpace(list.Sources[i].URL)
		list.Sources[i].Name = strings.TrimSpace(list.Sources[i].Name)
	}
	return &list, nil
}

// parseLineSources reads one URL per line. Blank lines and lines starting
// with '#' are ignored.
func parseLineSources(data []byte) (*SourceList, error) {
	list := &SourceList{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.Sources = append(list.Sources, Source{URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return list, nil
}

func validateSources(list *SourceList) error {
	for i, src := range list.Sources {
		if src.URL == "" {
			return fmt.Errorf("feed at index %d: url is required", i)
		}
		u, err := url.Parse(src.URL)
		if err != nil {
			return fmt.Errorf("feed at index %d: invalid url: %w", i, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed at index %d: url scheme must be http or https, got '%s'", i, u.Scheme)
		}
	}

	for i, rule := range list.Icons {
		if rule.Match == "" || rule.Symbol == "" {
			return fmt.Errorf("icon rule at index %d must have both match and symbol", i)
		}
	}

	return nil
}
