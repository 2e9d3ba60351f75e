package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devfolio/api/models"
)

func TestCollectVisitor(t *testing.T) {
	env := Environment{
		URL:            "https://example.com/blog/my-post?utm_source=newsletter&utm_medium=email&gclid=abc123",
		Referrer:       "https://news.ycombinator.com/",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Language:       "en-US",
		Timezone:       "Europe/Berlin",
		ScreenWidth:    1920,
		ScreenHeight:   1080,
		ViewportWidth:  1200,
		ViewportHeight: 800,
		Online:         true,
		CookiesEnabled: true,
	}

	v := CollectVisitor(env, "v1", "s1")

	assert.Equal(t, "v1", v.VisitorID)
	assert.Equal(t, "s1", v.SessionID)
	assert.Equal(t, "/blog/my-post", v.Page)
	assert.Equal(t, "newsletter", v.UTMSource)
	assert.Equal(t, "email", v.UTMMedium)
	assert.Equal(t, "abc123", v.GCLID)
	assert.Empty(t, v.UTMCampaign)
	assert.Equal(t, "Chrome", v.Browser)
	assert.Equal(t, "Windows", v.OS)
	assert.Equal(t, "1920x1080", v.ScreenResolution)
	assert.Equal(t, "1200x800", v.ViewportSize)
	require.NotNil(t, v.IsOnline)
	assert.True(t, *v.IsOnline)
	assert.NotZero(t, v.Timestamp)
	assert.Nil(t, v.SaveData, "save-data only set when reported")
}

type capture struct {
	mu       sync.Mutex
	paths    []string
	sessions []models.PageSession
}

func newCaptureServer(t *testing.T) (*capture, *httptest.Server) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.paths = append(c.paths, r.URL.Path)
		if r.URL.Path == "/api/track/page-session" {
			var s models.PageSession
			require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
			c.sessions = append(c.sessions, s)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return c, srv
}

func TestTrackerFlushAndClose(t *testing.T) {
	c, srv := newCaptureServer(t)

	tr := NewTracker(Config{BaseURL: srv.URL, Page: "/blog"})
	assert.NotEmpty(t, tr.VisitorID())
	assert.NotEmpty(t, tr.SessionID())

	tr.ObserveScroll(30)
	tr.ObserveScroll(80)
	tr.ObserveScroll(50)
	tr.RecordInteraction("click:BUTTON:cta")
	tr.RecordInteraction("click:BUTTON:cta")
	tr.TrackEvent("copy", map[string]any{"text": "hello"})

	tr.Flush(context.Background())
	tr.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.sessions, 2)

	first, final := c.sessions[0], c.sessions[1]

	assert.Equal(t, tr.SessionID(), first.SessionID)
	assert.Equal(t, "/blog", first.Page)
	assert.Equal(t, 80, first.ScrollDepth, "scroll depth keeps the running maximum")
	assert.Equal(t, []string{"click:BUTTON:cta", "copy"}, first.Interactions)
	assert.Len(t, first.Events, 3)
	assert.Zero(t, first.ExitTime)

	assert.NotZero(t, final.ExitTime, "final snapshot marks the exit")
	assert.GreaterOrEqual(t, final.Duration, first.Duration)
}

func TestTrackerTrackVisitor(t *testing.T) {
	c, srv := newCaptureServer(t)

	tr := NewTracker(Config{BaseURL: srv.URL, Page: "/", VisitorID: "v1", SessionID: "s1"})
	tr.TrackVisitor(context.Background(), Environment{UserAgent: "curl/8.4.0"})

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.paths, 1)
	assert.Equal(t, "/api/track/visitor", c.paths[0])
}

func TestTrackerSwallowsDeliveryFailures(t *testing.T) {
	tr := NewTracker(Config{BaseURL: "http://127.0.0.1:0", Page: "/"})

	tr.Flush(context.Background())
	tr.Close()
}
