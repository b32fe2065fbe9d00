package cache

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps one link per line in an append-only text file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (Set, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet(), nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	set := NewSet()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if link := strings.TrimSpace(scanner.Text()); link != "" {
			set.Add(link)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	return set, nil
}

func (s *FileStore) Record(ctx context.Context, links []string) error {
	lines := sanitize(links)
	if len(lines) == 0 {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}

	var b strings.Builder
	if needsNewline(f) {
		b.WriteString("\n")
	}
	for _, link := range lines {
		b.WriteString(link)
		b.WriteString("\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to cache file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// needsNewline reports whether the file is non-empty and lacks a trailing
// newline, as files written by older versions do.
func needsNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false
	}
	return last[0] != '\n'
}

func sanitize(links []string) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		link = strings.TrimSpace(link)
		if link == "" || strings.ContainsAny(link, "\r\n") {
			continue
		}
		out = append(out, link)
	}
	return out
}
