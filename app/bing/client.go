package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client resolves the Bing picture of the day.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, endpoint, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

type archiveResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Run returns the absolute URL of today's image.
func (c *Client) Run(ctx context.Context) (string, error) {
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid image archive endpoint: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	var archive archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return "", fmt.Errorf("failed to decode image archive: %w", err)
	}

	if len(archive.Images) == 0 || strings.TrimSpace(archive.Images[0].URL) == "" {
		return "", fmt.Errorf("image archive has no images")
	}

	ref, err := url.Parse(archive.Images[0].URL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}
