package models

// PageStats is the aggregate for a single page path.
type PageStats struct {
	Page           string `json:"page"`
	Sessions       int    `json:"sessions"`
	UniqueVisitors int    `json:"uniqueVisitors"`
}

// AnalyticsSummary is the full-scan aggregate served to the dashboard.
type AnalyticsSummary struct {
	TotalVisitors int            `json:"totalVisitors"`
	TotalSessions int            `json:"totalSessions"`
	Pages         []PageStats    `json:"pages"`
	Browsers      map[string]int `json:"browsers"`
	OSes          map[string]int `json:"oses"`
	Devices       map[string]int `json:"devices"`
	UTMSources    map[string]int `json:"utmSources"`
}

// VisitorRecord pairs a visitor ID with its stored hash fields.
type VisitorRecord struct {
	VisitorID string            `json:"visitorId"`
	Data      map[string]string `json:"data"`
}

// AnalyticsResponse is the payload of the read-only analytics endpoint.
type AnalyticsResponse struct {
	Analytics AnalyticsSummary `json:"analytics"`
	Visitors  []VisitorRecord  `json:"visitors"`
	Pages     []string         `json:"pages"`
}
