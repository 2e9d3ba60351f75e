package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"devfolio/api/models"
)

// Environment is the snapshot of client-exposed signals the collector works
// from. Every field is best-effort; zero values simply stay out of the
// resulting visitor record.
type Environment struct {
	URL       string
	Referrer  string
	UserAgent string
	Language  string
	Timezone  string
	Platform  string

	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
	ColorScheme    string

	ConnectionType string
	EffectiveType  string
	Downlink       float64
	RTT            int
	SaveData       bool

	Memory         float64
	Cores          int
	MaxTouchPoints int

	Online          bool
	CookiesEnabled  bool
	DoNotTrack      string
	DocumentTitle   string
	DocumentCharset string
	Plugins         []string
}

// CollectVisitor synthesizes a visitor record purely from the environment
// snapshot: user-agent parsing plus attribution parameters from the query
// string. It cannot fail; unknown agents and missing capabilities degrade to
// defaults.
func CollectVisitor(env Environment, visitorID, sessionID string) models.Visitor {
	ua := ParseUserAgent(env.UserAgent)

	visitor := models.Visitor{
		VisitorID:       visitorID,
		SessionID:       sessionID,
		Timestamp:       time.Now().UnixMilli(),
		Referrer:        env.Referrer,
		UserAgent:       env.UserAgent,
		Browser:         ua.Browser,
		BrowserVersion:  ua.BrowserVersion,
		OS:              ua.OS,
		OSVersion:       ua.OSVersion,
		DeviceType:      ua.DeviceType,
		Platform:        env.Platform,
		Language:        env.Language,
		Timezone:        env.Timezone,
		ColorScheme:     env.ColorScheme,
		ConnectionType:  env.ConnectionType,
		EffectiveType:   env.EffectiveType,
		Downlink:        env.Downlink,
		RTT:             env.RTT,
		Memory:          env.Memory,
		Cores:           env.Cores,
		MaxTouchPoints:  env.MaxTouchPoints,
		DoNotTrack:      env.DoNotTrack,
		DocumentTitle:   env.DocumentTitle,
		DocumentCharset: env.DocumentCharset,
		Plugins:         env.Plugins,
	}

	online := env.Online
	visitor.IsOnline = &online
	cookies := env.CookiesEnabled
	visitor.CookiesEnabled = &cookies
	if env.SaveData {
		saveData := true
		visitor.SaveData = &saveData
	}

	if env.ScreenWidth > 0 && env.ScreenHeight > 0 {
		visitor.ScreenResolution = fmt.Sprintf("%dx%d", env.ScreenWidth, env.ScreenHeight)
	}
	if env.ViewportWidth > 0 && env.ViewportHeight > 0 {
		visitor.ViewportSize = fmt.Sprintf("%dx%d", env.ViewportWidth, env.ViewportHeight)
	}

	if parsed, err := url.Parse(env.URL); err == nil {
		visitor.Page = parsed.Path
		query := parsed.Query()
		visitor.UTMSource = query.Get("utm_source")
		visitor.UTMMedium = query.Get("utm_medium")
		visitor.UTMCampaign = query.Get("utm_campaign")
		visitor.UTMContent = query.Get("utm_content")
		visitor.UTMTerm = query.Get("utm_term")
		visitor.GCLID = query.Get("gclid")
		visitor.FBCLID = query.Get("fbclid")
		visitor.MSCLKID = query.Get("msclkid")
	}

	return visitor
}

// Config wires a Tracker to the tracking endpoints.
type Config struct {
	BaseURL   string
	Page      string
	VisitorID string // generated when empty; callers persist it across sessions
	SessionID string // generated when empty; one per page visit

	FlushInterval time.Duration // defaults to 30s
	HTTPClient    *http.Client
}

// Tracker maintains one page-session snapshot and flushes it periodically and
// on Close. All delivery is fire-and-forget: failures are logged at debug and
// the data for that flush is simply lost (at-most-once, loss-tolerant).
type Tracker struct {
	baseURL  string
	client   *http.Client
	interval time.Duration

	visitorID string
	sessionID string
	page      string
	entryTime time.Time

	mu           sync.Mutex
	scrollDepth  int
	interactions map[string]struct{}
	events       []models.SessionEvent

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewTracker(cfg Config) *Tracker {
	if cfg.VisitorID == "" {
		cfg.VisitorID = "visitor_" + uuid.New().String()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "session_" + uuid.New().String()
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Tracker{
		baseURL:      cfg.BaseURL,
		client:       cfg.HTTPClient,
		interval:     cfg.FlushInterval,
		visitorID:    cfg.VisitorID,
		sessionID:    cfg.SessionID,
		page:         cfg.Page,
		entryTime:    time.Now(),
		interactions: make(map[string]struct{}),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (t *Tracker) VisitorID() string { return t.visitorID }
func (t *Tracker) SessionID() string { return t.sessionID }

// Start launches the periodic flush loop. Calling Start again is a no-op.
func (t *Tracker) Start(ctx context.Context) {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-ticker.C:
				t.Flush(ctx)
			}
		}
	}()
}

// TrackVisitor sends the visitor identity record. Fire-and-forget.
func (t *Tracker) TrackVisitor(ctx context.Context, env Environment) {
	visitor := CollectVisitor(env, t.visitorID, t.sessionID)
	t.post(ctx, "/api/track/visitor", visitor)
}

// TrackEvent appends a timestamped event to the session log.
func (t *Tracker) TrackEvent(eventType string, data map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, models.SessionEvent{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
	t.interactions[eventType] = struct{}{}
}

// RecordInteraction adds a distinct interaction tag (e.g. "click:BUTTON:cta").
func (t *Tracker) RecordInteraction(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interactions[tag] = struct{}{}
	t.events = append(t.events, models.SessionEvent{
		Type:      "interaction",
		Timestamp: time.Now().UnixMilli(),
		Data:      map[string]any{"interaction": tag},
	})
}

// ObserveScroll records a scroll-depth observation; the session keeps the
// running maximum.
func (t *Tracker) ObserveScroll(percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent > t.scrollDepth {
		t.scrollDepth = percent
	}
}

// Flush sends the current session snapshot with duration recomputed from the
// entry time.
func (t *Tracker) Flush(ctx context.Context) {
	t.post(ctx, "/api/track/page-session", t.snapshot(false))
}

// Close stops the flush loop and sends a final snapshot with the exit time
// set. Delivery is still best-effort.
func (t *Tracker) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
	if t.started.Load() {
		<-t.done
	}
	t.post(context.Background(), "/api/track/page-session", t.snapshot(true))
}

func (t *Tracker) snapshot(exiting bool) models.PageSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	tags := make([]string, 0, len(t.interactions))
	for tag := range t.interactions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	events := make([]models.SessionEvent, len(t.events))
	copy(events, t.events)

	now := time.Now()
	session := models.PageSession{
		SessionID:    t.sessionID,
		VisitorID:    t.visitorID,
		Page:         t.page,
		EntryTime:    t.entryTime.UnixMilli(),
		Duration:     now.Sub(t.entryTime).Milliseconds(),
		ScrollDepth:  t.scrollDepth,
		Interactions: tags,
		Events:       events,
	}
	if exiting {
		session.ExitTime = now.UnixMilli()
	}
	return session
}

func (t *Tracker) post(ctx context.Context, path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Dropped tracking payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Dropped tracking payload")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Dropped tracking payload")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}
