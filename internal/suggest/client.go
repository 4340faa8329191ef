// Package suggest is a thin client for the external PC build-suggestion
// backend. All matching and scoring happens on the backend; this client
// only forwards the free-text requirement and annotates storage slots in
// the response.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"

	"github.com/trandaiky/techshop-discounts/internal/classifier"
	"github.com/trandaiky/techshop-discounts/internal/model"
)

// Config holds the connection settings for the suggestion backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the build-suggestion backend over retryable HTTP.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

// NewClient creates a Client for the given backend.
func NewClient(cfg Config) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.MaxRetries
	c.HTTPClient.Timeout = cfg.Timeout
	c.Logger = nil // zerolog handles request logging at the handler

	return &Client{
		http:    c,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type suggestRequest struct {
	Requirement string `json:"requirement"`
}

// Suggest forwards a free-text requirement and returns the backend's three
// ranked configurations with storage slots classified as ssd or hdd.
func (c *Client) Suggest(ctx context.Context, requirement string) (*model.BuildSuggestion, error) {
	body, err := json.Marshal(suggestRequest{Requirement: requirement})
	if err != nil {
		return nil, fmt.Errorf("marshal suggestion request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/builds/suggest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call suggestion backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion backend returned status %d", resp.StatusCode)
	}

	var suggestion model.BuildSuggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return nil, fmt.Errorf("decode suggestion response: %w", err)
	}

	lo.ForEach([]*model.BuildConfiguration{
		&suggestion.Saving,
		&suggestion.Performance,
		&suggestion.Popular,
	}, func(cfg *model.BuildConfiguration, _ int) {
		cfg.Storage.StorageKind = classifier.StorageKind(cfg.Storage)
	})

	return &suggestion, nil
}
