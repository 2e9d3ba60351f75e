package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devfolio/api/models"
	"devfolio/api/store"
)

func newTrackRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemoryStore()
	h := NewTrackHandlers(s)

	r := gin.New()
	r.POST("/api/track/visitor", h.TrackVisitor)
	r.POST("/api/track/page-session", h.TrackPageSession)
	r.GET("/api/analytics", h.GetAnalytics)
	r.GET("/api/analytics/visitors/:visitorId/sessions", h.GetVisitorSessions)
	r.DELETE("/api/analytics", h.ClearAnalytics)
	return r, s
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackVisitor(t *testing.T) {
	r, s := newTrackRouter(t)

	w := doJSON(r, http.MethodPost, "/api/track/visitor",
		`{"visitorId":"v1","browser":"Chrome","os":"Windows","somethingUnknown":"dropped"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	record, err := s.GetVisitorData(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Chrome", record["browser"])
	assert.NotContains(t, record, "somethingUnknown", "unknown JSON keys never reach the store")
}

func TestTrackVisitorRejectsBadPayload(t *testing.T) {
	r, _ := newTrackRouter(t)

	for name, body := range map[string]string{
		"malformed json":    `{"visitorId":`,
		"missing visitorId": `{"browser":"Chrome"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/track/visitor", body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"success":false}`, w.Body.String())
		})
	}
}

func TestTrackPageSession(t *testing.T) {
	r, s := newTrackRouter(t)

	w := doJSON(r, http.MethodPost, "/api/track/page-session",
		`{"sessionId":"s1","visitorId":"v1","page":"/blog","duration":4000,"scrollDepth":75}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	record, err := s.GetPageSession(context.Background(), "v1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "/blog", record["page"])
	assert.Equal(t, "4000", record["duration"])
	assert.Equal(t, "75", record["scrollDepth"])
}

func TestTrackPageSessionRequiresIdentity(t *testing.T) {
	r, _ := newTrackRouter(t)

	w := doJSON(r, http.MethodPost, "/api/track/page-session", `{"page":"/blog"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())
}

func TestGetAnalytics(t *testing.T) {
	r, _ := newTrackRouter(t)

	doJSON(r, http.MethodPost, "/api/track/visitor", `{"visitorId":"v1","browser":"Chrome"}`)
	doJSON(r, http.MethodPost, "/api/track/visitor", `{"visitorId":"v2","browser":"Safari"}`)
	doJSON(r, http.MethodPost, "/api/track/page-session", `{"sessionId":"s1","visitorId":"v1","page":"/blog"}`)
	doJSON(r, http.MethodPost, "/api/track/page-session", `{"sessionId":"s2","visitorId":"v2","page":"/blog"}`)

	w := doJSON(r, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Analytics.TotalVisitors)
	assert.Equal(t, 2, resp.Analytics.TotalSessions)
	require.Len(t, resp.Analytics.Pages, 1)
	assert.Equal(t, 2, resp.Analytics.Pages[0].UniqueVisitors)
	assert.Len(t, resp.Visitors, 2)
	assert.Equal(t, []string{"/blog"}, resp.Pages)
}

func TestGetVisitorSessions(t *testing.T) {
	r, _ := newTrackRouter(t)

	doJSON(r, http.MethodPost, "/api/track/page-session", `{"sessionId":"s1","visitorId":"v1","page":"/blog"}`)
	doJSON(r, http.MethodPost, "/api/track/page-session", `{"sessionId":"s2","visitorId":"v1","page":"/projects"}`)

	w := doJSON(r, http.MethodGet, "/api/analytics/visitors/v1/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VisitorID string              `json:"visitorId"`
		Sessions  []map[string]string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "v1", resp.VisitorID)
	assert.Len(t, resp.Sessions, 2)
}

func TestClearAnalytics(t *testing.T) {
	r, s := newTrackRouter(t)

	doJSON(r, http.MethodPost, "/api/track/visitor", `{"visitorId":"v1"}`)
	doJSON(r, http.MethodPost, "/api/track/page-session", `{"sessionId":"s1","visitorId":"v1","page":"/blog"}`)

	w := doJSON(r, http.MethodDelete, "/api/analytics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	summary, err := s.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalVisitors)
	assert.Zero(t, summary.TotalSessions)
}
