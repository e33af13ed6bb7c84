// Package client is the HTTP boundary to the collaborator endpoints the
// dashboard core consumes: scrape/process triggers, heatmap and review
// fetches, and itinerary persistence. Every call carries the session
// credentials; no call is retried here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

type Client struct {
	logger  *slog.Logger
	baseURL string
	http    *http.Client
	token   string
}

// New creates a collaborator client for the given base URL. token is the
// session bearer credential attached to every request.
func New(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

// Scrape triggers external data collection for a city and category.
func (c *Client) Scrape(ctx context.Context, city, category string) error {
	body := types.ScrapeRequest{City: city, Category: category}
	return c.post(ctx, "/scrape", body, nil)
}

// Process triggers the external emotion-scoring pipeline.
func (c *Client) Process(ctx context.Context) error {
	return c.post(ctx, "/process", struct{}{}, nil)
}

// Heatmap fetches the dataset for one emotion. The union wire shape is
// resolved into the tagged variant during decoding.
func (c *Client) Heatmap(ctx context.Context, emotion string) (types.HeatmapDataset, error) {
	var dataset types.HeatmapDataset
	query := url.Values{"emotion": []string{emotion}}
	if err := c.get(ctx, "/heatmap", query, &dataset); err != nil {
		return types.HeatmapDataset{}, err
	}
	return dataset, nil
}

// Reviews fetches the reviews for a coordinate key.
func (c *Client) Reviews(ctx context.Context, lat, lng float64) ([]types.Review, error) {
	var resp types.ReviewsResponse
	query := url.Values{"location": []string{fmt.Sprintf("%v,%v", lat, lng)}}
	if err := c.get(ctx, "/reviews", query, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// SaveItinerary persists one ordered hotspot id sequence.
func (c *Client) SaveItinerary(ctx context.Context, hotspotIDs []string) error {
	body := types.CreateItineraryRequest{HotspotIDs: hotspotIDs}
	return c.post(ctx, "/itineraries", body, nil)
}

// Itineraries lists previously saved itineraries.
func (c *Client) Itineraries(ctx context.Context) ([]types.Itinerary, error) {
	var itineraries []types.Itinerary
	if err := c.get(ctx, "/itineraries", nil, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode body for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Collaborator call failed",
			slog.String("path", req.URL.Path), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %v", types.ErrNetwork, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned status %d", types.ErrNetwork, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decoding response: %v", types.ErrNetwork, req.URL.Path, err)
	}
	return nil
}
