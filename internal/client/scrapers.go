package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// HTTPScraper triggers one external review-collection service. It satisfies
// the pipeline Scraper interface.
type HTTPScraper struct {
	logger   *slog.Logger
	name     string
	endpoint string
	http     *http.Client
}

// NewHTTPScraper creates a scraper trigger for a named source.
func NewHTTPScraper(name, endpoint string, logger *slog.Logger) *HTTPScraper {
	return &HTTPScraper{
		logger:   logger,
		name:     name,
		endpoint: endpoint,
		// Scrape runs are slow; give the source time to finish.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (s *HTTPScraper) Name() string { return s.name }

// Scrape triggers the source and returns how many reviews it collected.
func (s *HTTPScraper) Scrape(ctx context.Context, city, category string) (int, error) {
	payload, err := json.Marshal(types.ScrapeRequest{City: city, Category: category})
	if err != nil {
		return 0, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: scraper %s: %v", types.ErrNetwork, s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("%w: scraper %s returned status %d", types.ErrNetwork, s.name, resp.StatusCode)
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: scraper %s: decoding response: %v", types.ErrNetwork, s.name, err)
	}
	return result.Count, nil
}

// HTTPProcessor triggers the external emotion-scoring pipeline. It
// satisfies the pipeline Processor interface.
type HTTPProcessor struct {
	logger   *slog.Logger
	endpoint string
	http     *http.Client
}

func NewHTTPProcessor(endpoint string, logger *slog.Logger) *HTTPProcessor {
	return &HTTPProcessor{
		logger:   logger,
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Minute},
	}
}

// Process triggers scoring of pending raw reviews and returns how many were
// processed.
func (p *HTTPProcessor) Process(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader([]byte(`{}`)))
	if err != nil {
		return 0, fmt.Errorf("failed to build process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: processor: %v", types.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("%w: processor returned status %d", types.ErrNetwork, resp.StatusCode)
	}

	var result struct {
		ProcessedCount int `json:"processed_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: processor: decoding response: %v", types.ErrNetwork, err)
	}
	return result.ProcessedCount, nil
}
