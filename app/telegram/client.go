package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/rss-relay/app/message"
	"golang.org/x/time/rate"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindRejected  ErrorKind = "rejected"
)

const maxErrorBody = 1024

// DeliveryError describes a failed Bot API call. Body holds the API
// description when the response was JSON, the raw body otherwise.
type DeliveryError struct {
	Kind       ErrorKind
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Method, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
	parseMode  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

func NewClient(httpClient *http.Client, baseURL, token, chatID, parseMode string, timeout time.Duration) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		chatID:     chatID,
		parseMode:  parseMode,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// WithInterval spaces consecutive API calls at least interval apart.
// Zero disables pacing.
func (c *Client) WithInterval(interval time.Duration) *Client {
	if interval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendPhotoRequest struct {
	ChatID    string `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send delivers a unit: the image first when there is one, then the text.
// A failed image is logged and does not stop the text; the returned error
// reflects the text call only.
func (c *Client) Send(ctx context.Context, unit message.Unit) error {
	if unit.ImageURL != "" {
		if err := c.SendPhoto(ctx, unit.ImageURL, ""); err != nil {
			slog.Warn("Image delivery failed", "image", unit.ImageURL, "error", err)
		}
	}
	return c.SendMessage(ctx, unit.Text)
}

func (c *Client) SendMessage(ctx context.Context, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: c.parseMode,
	})
}

func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	req := sendPhotoRequest{
		ChatID: c.chatID,
		Photo:  photoURL,
	}
	if caption != "" {
		req.Caption = caption
		req.ParseMode = c.parseMode
	}
	return c.call(ctx, "sendPhoto", req)
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Kind: KindTransport, Method: method, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &DeliveryError{Kind: KindTransport, Method: method, Err: err}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(timeoutCtx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Kind: KindTransport, Method: method, Err: errors.New("failed to create request")}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the bot token; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &DeliveryError{Kind: KindTransport, Method: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(raw))

	var apiResp apiResponse
	if json.Unmarshal(raw, &apiResp) == nil && apiResp.Description != "" {
		detail = apiResp.Description
	}

	return &DeliveryError{Kind: KindRejected, Method: method, StatusCode: resp.StatusCode, Body: detail}
}
