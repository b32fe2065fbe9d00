package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type FailureKind string

const (
	KindTransport FailureKind = "transport"
	KindStatus    FailureKind = "status"
	KindParse     FailureKind = "parse"
)

// FetchError describes the last failed attempt of a fetch.
type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: HTTP error: %d (after %d attempts)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s error (after %d attempts): %v", e.URL, e.Kind, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type FetcherSettings struct {
	UserAgent  string
	Timeout    time.Duration // per attempt
	RetryCount int
	RetryDelay time.Duration
	MaxItems   int
}

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	settings   FetcherSettings
}

func NewFetcher(httpClient *http.Client, parser *Parser, settings FetcherSettings) *Fetcher {
	if settings.RetryCount <= 0 {
		settings.RetryCount = 1
	}
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		settings:   settings,
	}
}

// Run fetches and parses the source, retrying with a fixed delay. Entries are
// capped to MaxItems in document order.
func (f *Fetcher) Run(ctx context.Context, src Source) (*Feed, error) {
	var lastErr *FetchError

	for attempt := 1; attempt <= f.settings.RetryCount; attempt++ {
		parsed, err := f.attempt(ctx, src.URL)
		if err == nil {
			if f.settings.MaxItems > 0 && len(parsed.Entries) > f.settings.MaxItems {
				parsed.Entries = parsed.Entries[:f.settings.MaxItems]
			}
			return parsed, nil
		}

		lastErr = err
		lastErr.Attempts = attempt
		slog.Warn("Fetch attempt failed", "feed", src.URL, "attempt", attempt, "max_attempts", f.settings.RetryCount, "kind", string(err.Kind), "error", err.Err)

		if attempt == f.settings.RetryCount {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{Kind: KindTransport, URL: src.URL, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(f.settings.RetryDelay):
		}
	}

	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string) (*Feed, *FetchError) {
	data, err := f.get(ctx, url, "")
	if err != nil {
		return nil, err
	}

	parsed, perr := f.parser.Run(data)
	if perr != nil {
		return nil, &FetchError{Kind: KindParse, URL: url, Err: perr}
	}

	return parsed, nil
}

// FetchPage downloads an HTML page, used for content extraction.
func (f *Fetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	data, err := f.get(ctx, url, "text/html")
	if err != nil {
		err.Attempts = 1
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url, wantType string) ([]byte, *FetchError) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.settings.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if f.settings.UserAgent != "" {
		req.Header.Set("User-Agent", f.settings.UserAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: KindStatus, URL: url, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	if wantType != "" {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), wantType) {
			return nil, &FetchError{Kind: KindParse, URL: url, Err: fmt.Errorf("content type is not %s: %s", wantType, contentType)}
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}
