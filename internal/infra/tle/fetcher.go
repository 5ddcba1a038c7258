// Package tle maintains the tracked satellite's orbital elements: fetching
// group TLE files from CelesTrak, extracting the configured NORAD id,
// publishing immutable snapshots through an atomic store, and keeping a
// small on-disk cache of raw fetches so restarts survive upstream outages.
package tle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"iss-aprs-tracker/internal/domain"
)

// Fetcher retrieves raw TLE data from a remote source.
type Fetcher struct {
	sourceURL  string
	httpClient *http.Client
}

func NewFetcher(sourceURL string) *Fetcher {
	return &Fetcher{
		sourceURL: sourceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SourceURL returns the configured source URL.
func (f *Fetcher) SourceURL() string { return f.sourceURL }

// Fetch performs an HTTP GET for the raw TLE group file. Failures are
// wrapped in domain.ErrFetch so callers can keep last-known-good state.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", domain.ErrFetch, resp.StatusCode, f.sourceURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", domain.ErrFetch, err)
	}
	return body, nil
}
