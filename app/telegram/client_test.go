package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/rss-relay/app/message"
)

type recordedCall struct {
	Path string
	Body map[string]any
}

type fakeAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	status map[string]int
	body   map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{status: map[string]int{}, body: map[string]string{}}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	json.NewDecoder(r.Body).Decode(&payload)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Path: r.URL.Path, Body: payload})
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	status, ok := f.status[method]
	body := f.body[method]
	f.mu.Unlock()

	if !ok {
		status = http.StatusOK
		body = `{"ok":true,"result":{}}`
	}
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestClient_SendText(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL+"/", "123:abc", "@news", "MarkdownV2", time.Second)
	err := client.Send(context.Background(), message.Unit{Text: "hello", Links: []string{"https://example.com"}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(api.calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(api.calls))
	}
	call := api.calls[0]
	if call.Path != "/bot123:abc/sendMessage" {
		t.Errorf("Expected sendMessage path, got %s", call.Path)
	}
	if call.Body["chat_id"] != "@news" {
		t.Errorf("Expected chat_id '@news', got %v", call.Body["chat_id"])
	}
	if call.Body["text"] != "hello" {
		t.Errorf("Expected text 'hello', got %v", call.Body["text"])
	}
	if call.Body["parse_mode"] != "MarkdownV2" {
		t.Errorf("Expected parse_mode 'MarkdownV2', got %v", call.Body["parse_mode"])
	}
}

func TestClient_SendWithImage(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "MarkdownV2", time.Second)
	err := client.Send(context.Background(), message.Unit{Text: "hello", ImageURL: "https://example.com/p.jpg"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(api.calls) != 2 {
		t.Fatalf("Expected 2 calls, got %d", len(api.calls))
	}
	if !strings.HasSuffix(api.calls[0].Path, "/sendPhoto") {
		t.Errorf("Expected sendPhoto first, got %s", api.calls[0].Path)
	}
	if api.calls[0].Body["photo"] != "https://example.com/p.jpg" {
		t.Errorf("Expected photo URL, got %v", api.calls[0].Body["photo"])
	}
	if _, ok := api.calls[0].Body["caption"]; ok {
		t.Error("Expected no caption on the auxiliary image call")
	}
	if !strings.HasSuffix(api.calls[1].Path, "/sendMessage") {
		t.Errorf("Expected sendMessage second, got %s", api.calls[1].Path)
	}
}

func TestClient_ImageFailureStillSendsText(t *testing.T) {
	api := newFakeAPI()
	api.status["sendPhoto"] = http.StatusBadRequest
	api.body["sendPhoto"] = `{"ok":false,"error_code":400,"description":"Bad Request: wrong file identifier"}`
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "MarkdownV2", time.Second)
	if err := client.Send(context.Background(), message.Unit{Text: "hello", ImageURL: "bad"}); err != nil {
		t.Fatalf("Expected text delivery to succeed, got: %v", err)
	}
	if len(api.calls) != 2 {
		t.Errorf("Expected 2 calls, got %d", len(api.calls))
	}
}

func TestClient_RejectedJSON(t *testing.T) {
	api := newFakeAPI()
	api.status["sendMessage"] = http.StatusBadRequest
	api.body["sendMessage"] = `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "MarkdownV2", time.Second)
	err := client.Send(context.Background(), message.Unit{Text: "bad *markup"})

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected *DeliveryError, got: %v", err)
	}
	if deliveryErr.Kind != KindRejected {
		t.Errorf("Expected kind %s, got %s", KindRejected, deliveryErr.Kind)
	}
	if deliveryErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", deliveryErr.StatusCode)
	}
	if deliveryErr.Body != "Bad Request: can't parse entities" {
		t.Errorf("Expected API description, got %q", deliveryErr.Body)
	}
}

func TestClient_RejectedPlainText(t *testing.T) {
	api := newFakeAPI()
	api.status["sendMessage"] = http.StatusBadGateway
	api.body["sendMessage"] = "upstream down"
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "HTML", time.Second)
	err := client.SendMessage(context.Background(), "x")

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected *DeliveryError, got: %v", err)
	}
	if deliveryErr.Body != "upstream down" {
		t.Errorf("Expected raw body, got %q", deliveryErr.Body)
	}
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient(http.DefaultClient, base, "secret-token", "42", "MarkdownV2", time.Second)
	err := client.SendMessage(context.Background(), "x")

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected *DeliveryError, got: %v", err)
	}
	if deliveryErr.Kind != KindTransport {
		t.Errorf("Expected kind %s, got %s", KindTransport, deliveryErr.Kind)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("Expected token to be absent from error, got: %v", err)
	}
}

func TestClient_WithInterval(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "MarkdownV2", time.Second).
		WithInterval(50 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := client.SendMessage(context.Background(), "x"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Expected calls to be paced at least 100ms in total, got %v", elapsed)
	}
}

func TestClient_WithIntervalCanceled(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "t", "42", "MarkdownV2", time.Second).
		WithInterval(time.Hour)

	if err := client.SendMessage(context.Background(), "first"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := client.SendMessage(ctx, "second"); err == nil {
		t.Error("Expected paced call to fail on cancellation")
	}
	if len(api.calls) != 1 {
		t.Errorf("Expected 1 call to reach the API, got %d", len(api.calls))
	}
}

func TestClient_DeliverTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "secret-token", "42", "MarkdownV2", 50*time.Millisecond)

	start := time.Now()
	err := client.SendMessage(context.Background(), "x")
	elapsed := time.Since(start)

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected *DeliveryError, got: %v", err)
	}
	if deliveryErr.Kind != KindTransport {
		t.Errorf("Expected kind %s, got %s", KindTransport, deliveryErr.Kind)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Expected the call to give up after the timeout, took %v", elapsed)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("Expected token to be absent from error, got: %v", err)
	}
}
