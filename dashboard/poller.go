package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"devfolio/api/models"
)

// Poller refreshes the analytics snapshot for the dashboard on a fixed
// interval. A failed poll is logged and the previous snapshot is retained, so
// readers always see the last successful response (stale-but-available).
type Poller struct {
	url      string
	apiKey   string
	interval time.Duration
	client   *http.Client

	mu        sync.RWMutex
	snapshot  *models.AnalyticsResponse
	fetchedAt time.Time
}

// NewPoller polls url on the given interval (defaults to 5s).
func NewPoller(url, apiKey string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		url:      url,
		apiKey:   apiKey,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Snapshot returns the last successful response and when it was fetched. ok
// is false until the first successful poll.
func (p *Poller) Snapshot() (snapshot *models.AnalyticsResponse, fetchedAt time.Time, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.fetchedAt, p.snapshot != nil
}

func (p *Poller) poll(ctx context.Context) {
	snapshot, err := p.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Analytics poll failed, keeping previous snapshot")
		return
	}

	p.mu.Lock()
	p.snapshot = snapshot
	p.fetchedAt = time.Now()
	p.mu.Unlock()
}

func (p *Poller) fetch(ctx context.Context) (*models.AnalyticsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-KEY", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snapshot models.AnalyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}
	return &snapshot, nil
}
