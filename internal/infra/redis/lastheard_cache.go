package redis

import (
	"context"
	"encoding/json"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
)

const lastHeardKey = "ariss:lastheard"

// LastHeardCache keeps the most recent feed sample in Redis so the HTTP
// last-heard endpoint can answer without hitting the upstream feed between
// poller ticks.
type LastHeardCache struct {
	cli RedisClient
	ttl time.Duration
}

func NewLastHeardCache(cli RedisClient, ttl time.Duration) *LastHeardCache {
	return &LastHeardCache{cli: cli, ttl: ttl}
}

type cachedStation struct {
	Callsign string    `json:"callsign"`
	HeardAt  time.Time `json:"heard_at"`
	Link     string    `json:"link,omitempty"`
}

func (c *LastHeardCache) Put(ctx context.Context, st model.Station) error {
	b, err := json.Marshal(cachedStation{Callsign: st.Callsign, HeardAt: st.HeardAt, Link: st.Link})
	if err != nil {
		return err
	}
	return c.cli.Set(ctx, lastHeardKey, b, c.ttl)
}

func (c *LastHeardCache) Get(ctx context.Context) (model.Station, error) {
	raw, err := c.cli.Get(ctx, lastHeardKey)
	if err != nil {
		if IsNil(err) {
			return model.Station{}, domain.ErrNotFound
		}
		return model.Station{}, err
	}
	var cs cachedStation
	if err := json.Unmarshal([]byte(raw), &cs); err != nil {
		return model.Station{}, err
	}
	return model.Station{Callsign: cs.Callsign, HeardAt: cs.HeardAt, Link: cs.Link}, nil
}
