package store

import (
	"context"

	"devfolio/api/models"
)

// VisitorStore is the aggregation store behind the tracking endpoints. A
// record is a flat hash of string fields; StoreVisitorData merges field-wise
// (last write wins per field), StorePageSession overwrites the whole session
// snapshot. Implementations exist for Redis, MongoDB and an in-process map,
// and are drop-in interchangeable.
type VisitorStore interface {
	// StoreVisitorData merges the supplied fields into the visitor record and
	// stamps lastUpdated. Fields absent from the map keep their stored value.
	StoreVisitorData(ctx context.Context, visitorID string, fields map[string]string) error

	// StorePageSession overwrites the session snapshot for the
	// (visitor, session) key and maintains the visitor->sessions and
	// page->sessions indexes. Stamps storedAt.
	StorePageSession(ctx context.Context, sessionID, visitorID, page string, fields map[string]string) error

	// GetAnalytics computes the summary by scanning every visitor and session
	// record. Cost is O(total keys) on every call; nothing is precomputed.
	GetAnalytics(ctx context.Context) (*models.AnalyticsSummary, error)

	GetVisitorData(ctx context.Context, visitorID string) (map[string]string, error)
	GetPageSession(ctx context.Context, visitorID, sessionID string) (map[string]string, error)
	GetVisitorSessions(ctx context.Context, visitorID string) ([]map[string]string, error)
	GetAllVisitors(ctx context.Context) ([]models.VisitorRecord, error)
	GetAllPages(ctx context.Context) ([]string, error)

	// Clear drops every analytics record. This is the only deletion path;
	// visitor records otherwise have no TTL.
	Clear(ctx context.Context) error
}
