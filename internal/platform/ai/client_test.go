package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateCopy(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/site-copy" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tagline":"Fresh cuts","hero_title":"Hello","services":[{"name":"Cut","price":"$40"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Options{Endpoint: srv.URL + "/", APIKey: "secret", Model: "copy-small"})
	out, err := client.GenerateCopy(context.Background(), Prompt{BusinessName: "Studio", Industry: "barber"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tagline != "Fresh cuts" || len(out.Services) != 1 || out.Services[0].Price != "$40" {
		t.Fatalf("unexpected copy %+v", out)
	}
	if out.Empty() {
		t.Fatalf("expected non-empty copy")
	}
	if got["model"] != "copy-small" || got["business_name"] != "Studio" {
		t.Fatalf("unexpected request body %v", got)
	}
}

func TestGenerateCopyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Options{Endpoint: srv.URL}).GenerateCopy(context.Background(), Prompt{})
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDisabledClient(t *testing.T) {
	client := NewClient(Options{})
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if _, err := client.GenerateCopy(context.Background(), Prompt{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
