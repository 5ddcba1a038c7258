// Package ariss implements the activity-source boundary against the
// ariss.net last-heard export. The feed is a CSV of stations recently
// digipeated by the ISS, newest first:
//
//	callsign,heard_at,link
//	PU2URT-12,20260829143055,http://www.findu.com/cgi-bin/...
//
// heard_at is UTC in YYYYMMDDHHMMSS form. Only the newest record matters to
// the monitor; the rest of the file is ignored.
package ariss

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/adapter"
)

const heardAtLayout = "20060102150405"

var _ adapter.ActivitySource = (*Client)(nil)

// Client fetches the last-heard feed over HTTP.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

func NewClient(feedURL string) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// LastHeard returns the newest station entry from the feed.
func (c *Client) LastHeard(ctx context.Context) (model.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return model.Station{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Station{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Station{}, fmt.Errorf("%w: unexpected status %d from %s", domain.ErrFetch, resp.StatusCode, c.feedURL)
	}

	st, err := parseFirstRecord(resp.Body)
	if err != nil {
		return model.Station{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return st, nil
}

// parseFirstRecord reads CSV records until the first well-formed station
// entry. A header line, if present, fails timestamp parsing and is skipped.
func parseFirstRecord(r io.Reader) (model.Station, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return model.Station{}, fmt.Errorf("feed contains no station records")
		}
		if err != nil {
			return model.Station{}, fmt.Errorf("malformed feed: %v", err)
		}
		if len(rec) < 2 {
			continue
		}

		callsign := strings.TrimSpace(rec[0])
		heardAt, err := time.ParseInLocation(heardAtLayout, strings.TrimSpace(rec[1]), time.UTC)
		if err != nil || callsign == "" {
			continue
		}

		link := ""
		if len(rec) >= 3 {
			link = strings.TrimSpace(rec[2])
		}
		return model.Station{Callsign: callsign, HeardAt: heardAt, Link: link}, nil
	}
}
