package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:   url + "/v1/",
		APIKey:    "sk-test",
		Model:     "gpt-4.1-mini",
		MaxTokens: 2000,
		Timeout:   timeout,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestCompleteJSON_RequestShape(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"matches\":[]}"}}]}`))
	}))
	defer srv.Close()

	content, err := newTestClient(t, srv.URL, 5*time.Second).CompleteJSON(context.Background(), "hello")
	if err != nil {
		t.Fatalf("CompleteJSON() error: %v", err)
	}
	if content != `{"matches":[]}` {
		t.Errorf("content = %q", content)
	}

	if got.Model != "gpt-4.1-mini" || got.MaxTokens != 2000 {
		t.Errorf("model/max_tokens = %q/%d", got.Model, got.MaxTokens)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", got.ResponseFormat)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestCompleteJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		wantMsg string
	}{
		{
			name:    "openai style error",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"invalid api key","type":"auth"}}`,
			check:   func(err error) bool { return IsStatus(err, http.StatusUnauthorized) },
			wantMsg: "invalid api key",
		},
		{
			name:    "plain error",
			status:  http.StatusTooManyRequests,
			body:    `{"error":"slow down"}`,
			check:   func(err error) bool { return IsStatus(err, http.StatusTooManyRequests) },
			wantMsg: "slow down",
		},
		{
			name:    "html error",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			check:   func(err error) bool { return IsStatus(err, http.StatusBadGateway) },
			wantMsg: "bad gateway",
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check:  func(err error) bool { return errors.Is(err, ErrEmptyResponse) },
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `not json`,
			check:  func(err error) bool { return err != nil && strings.Contains(err.Error(), "decode response") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, 5*time.Second).CompleteJSON(context.Background(), "p")
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantMsg != "" && (err == nil || !strings.Contains(err.Error(), tt.wantMsg)) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want exactly one attempt", calls)
			}
		})
	}
}

func TestCompleteJSON_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).CompleteJSON(context.Background(), "p")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not enforced")
	}
}

func TestCompleteJSON_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(t, srv.URL, 5*time.Second).CompleteJSON(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	base := Config{BaseURL: "http://x", APIKey: "k", Model: "m", Timeout: time.Second}

	for name, mutate := range map[string]func(*Config){
		"base url": func(c *Config) { c.BaseURL = "" },
		"api key":  func(c *Config) { c.APIKey = "" },
		"model":    func(c *Config) { c.Model = "" },
		"timeout":  func(c *Config) { c.Timeout = 0 },
	} {
		cfg := base
		mutate(&cfg)
		if _, err := NewClient(cfg); err == nil {
			t.Errorf("missing %s: expected error", name)
		}
	}
}
