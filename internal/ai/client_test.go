package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intellimanage/platform/internal/apperrors"
)

func TestGenerateReturnsFirstCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q, want %q", got, "test-key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"three sprint goals"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	got, err := c.Generate(context.Background(), "suggest sprint goals")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "three sprint goals" {
		t.Errorf("Generate = %q, want %q", got, "three sprint goals")
	}
}

func TestGenerateUpstreamRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), "prompt")
	if !apperrors.IsKind(err, apperrors.KindRateLimited) {
		t.Errorf("error = %v, want RateLimited kind", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Error("Generate accepted an empty candidate list")
	}
}

func TestGenerateDisabled(t *testing.T) {
	c := NewClient("", "")
	if c.Enabled() {
		t.Error("Enabled() = true for empty URL")
	}
	_, err := c.Generate(context.Background(), "prompt")
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Errorf("error = %v, want InvalidState kind", err)
	}
}
