package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"devfolio/api/models"
	"devfolio/api/store"
)

// TrackHandlers owns the telemetry ingestion endpoints and the analytics
// reader. Tracking is best-effort: any parse or store failure maps to a
// generic {success:false} with no detail, and nothing is retried.
type TrackHandlers struct {
	Store store.VisitorStore
}

func NewTrackHandlers(s store.VisitorStore) *TrackHandlers {
	return &TrackHandlers{Store: s}
}

// TrackVisitor upserts a visitor identity record. Only whitelisted fields from
// the typed model reach the store; unknown JSON keys are dropped at binding.
func (h *TrackHandlers) TrackVisitor(c *gin.Context) {
	var visitor models.Visitor
	if err := c.ShouldBindJSON(&visitor); err != nil {
		log.Debug().Err(err).Msg("Invalid visitor payload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Store.StoreVisitorData(ctx, visitor.VisitorID, visitor.Fields()); err != nil {
		log.Error().Err(err).Str("visitorId", visitor.VisitorID).Msg("Failed to store visitor data")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TrackPageSession upserts one page-session snapshot. Re-sends of the same
// session overwrite the previous snapshot; the client computes max scroll
// depth and duration locally before sending.
func (h *TrackHandlers) TrackPageSession(c *gin.Context) {
	var session models.PageSession
	if err := c.ShouldBindJSON(&session); err != nil {
		log.Debug().Err(err).Msg("Invalid page session payload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Store.StorePageSession(ctx, session.SessionID, session.VisitorID, session.Page, session.Fields()); err != nil {
		log.Error().Err(err).
			Str("visitorId", session.VisitorID).
			Str("sessionId", session.SessionID).
			Msg("Failed to store page session")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAnalytics serves the full aggregate to the dashboard. Every call re-scans
// the store and re-transfers the whole result; there is no pagination or delta
// fetching.
func (h *TrackHandlers) GetAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	analytics, err := h.Store.GetAnalytics(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	visitors, err := h.Store.GetAllVisitors(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list visitors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	pages, err := h.Store.GetAllPages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	c.JSON(http.StatusOK, models.AnalyticsResponse{
		Analytics: *analytics,
		Visitors:  visitors,
		Pages:     pages,
	})
}

// GetVisitorSessions lists all stored session snapshots for one visitor.
func (h *TrackHandlers) GetVisitorSessions(c *gin.Context) {
	visitorID := c.Param("visitorId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sessions, err := h.Store.GetVisitorSessions(ctx, visitorID)
	if err != nil {
		log.Error().Err(err).Str("visitorId", visitorID).Msg("Failed to list visitor sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitorId": visitorID, "sessions": sessions})
}

// ClearAnalytics drops every analytics record. Visitor records have no TTL, so
// this admin operation is the only deletion path.
func (h *TrackHandlers) ClearAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Analytics cleared"})
}
