// Package ai calls the hosted generative model behind the project
// assistant endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/intellimanage/platform/internal/apperrors"
)

// Client talks to a Gemini-style generateContent endpoint.
type Client struct {
	url  string
	key  string
	http *http.Client
}

// NewClient creates an AI client. An empty url disables the client.
func NewClient(url, key string) *Client {
	return &Client{
		url:  url,
		key:  key,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an upstream endpoint is configured.
func (c *Client) Enabled() bool { return c.url != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", apperrors.InvalidState("assistant is not configured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("x-goog-api-key", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", apperrors.RateLimited("the assistant is over capacity, try again shortly")
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperrors.Internal(fmt.Errorf("model returned status %d: %s", resp.StatusCode, string(data)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.Internal(errors.New("model returned no candidates"))
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
