package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"devfolio/api/models"
)

// MemoryStore is the in-process variant of the aggregation store. It holds
// everything in maps guarded by a single RWMutex, so records only live for the
// lifetime of the process. Useful for development and tests.
type MemoryStore struct {
	mu              sync.RWMutex
	visitors        map[string]map[string]string
	sessions        map[string]map[string]string // keyed visitorId:sessionId
	visitorSessions map[string]map[string]struct{}
	pageSessions    map[string]map[string]struct{} // page -> set of session keys
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors:        make(map[string]map[string]string),
		sessions:        make(map[string]map[string]string),
		visitorSessions: make(map[string]map[string]struct{}),
		pageSessions:    make(map[string]map[string]struct{}),
	}
}

func memSessionKey(visitorID, sessionID string) string {
	return visitorID + ":" + sessionID
}

func (s *MemoryStore) StoreVisitorData(_ context.Context, visitorID string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.visitors[visitorID]
	if !ok {
		record = make(map[string]string, len(fields)+1)
		s.visitors[visitorID] = record
	}
	for k, v := range fields {
		record[k] = v
	}
	record["lastUpdated"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	return nil
}

func (s *MemoryStore) StorePageSession(_ context.Context, sessionID, visitorID, page string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := make(map[string]string, len(fields)+2)
	for k, v := range fields {
		record[k] = v
	}
	record["page"] = page
	record["storedAt"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	key := memSessionKey(visitorID, sessionID)
	s.sessions[key] = record

	if s.visitorSessions[visitorID] == nil {
		s.visitorSessions[visitorID] = make(map[string]struct{})
	}
	s.visitorSessions[visitorID][sessionID] = struct{}{}

	if s.pageSessions[page] == nil {
		s.pageSessions[page] = make(map[string]struct{})
	}
	s.pageSessions[page][key] = struct{}{}
	return nil
}

func (s *MemoryStore) GetVisitorData(_ context.Context, visitorID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecord(s.visitors[visitorID]), nil
}

func (s *MemoryStore) GetPageSession(_ context.Context, visitorID, sessionID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecord(s.sessions[memSessionKey(visitorID, sessionID)]), nil
}

func (s *MemoryStore) GetVisitorSessions(_ context.Context, visitorID string) ([]map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []map[string]string
	for sessionID := range s.visitorSessions[visitorID] {
		if record := copyRecord(s.sessions[memSessionKey(visitorID, sessionID)]); record != nil {
			sessions = append(sessions, record)
		}
	}
	return sessions, nil
}

func (s *MemoryStore) GetAllVisitors(_ context.Context) ([]models.VisitorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visitors := make([]models.VisitorRecord, 0, len(s.visitors))
	for visitorID, record := range s.visitors {
		visitors = append(visitors, models.VisitorRecord{VisitorID: visitorID, Data: copyRecord(record)})
	}
	sort.Slice(visitors, func(i, j int) bool { return visitors[i].VisitorID < visitors[j].VisitorID })
	return visitors, nil
}

func (s *MemoryStore) GetAllPages(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]string, 0, len(s.pageSessions))
	for page := range s.pageSessions {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages, nil
}

// GetAnalytics scans every stored record on each call, same as the other
// backends.
func (s *MemoryStore) GetAnalytics(_ context.Context) (*models.AnalyticsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &models.AnalyticsSummary{
		TotalVisitors: len(s.visitors),
		TotalSessions: len(s.sessions),
		Pages:         make([]models.PageStats, 0, len(s.pageSessions)),
		Browsers:      make(map[string]int),
		OSes:          make(map[string]int),
		Devices:       make(map[string]int),
		UTMSources:    make(map[string]int),
	}

	for page, keys := range s.pageSessions {
		unique := make(map[string]struct{})
		for key := range keys {
			if idx := strings.Index(key, ":"); idx > 0 {
				unique[key[:idx]] = struct{}{}
			}
		}
		summary.Pages = append(summary.Pages, models.PageStats{
			Page:           page,
			Sessions:       len(keys),
			UniqueVisitors: len(unique),
		})
	}
	sort.Slice(summary.Pages, func(i, j int) bool { return summary.Pages[i].Page < summary.Pages[j].Page })

	for _, record := range s.visitors {
		countField(summary.Browsers, record["browser"])
		countField(summary.OSes, record["os"])
		countField(summary.Devices, record["deviceType"])
		countField(summary.UTMSources, record["utmSource"])
	}

	return summary, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = make(map[string]map[string]string)
	s.sessions = make(map[string]map[string]string)
	s.visitorSessions = make(map[string]map[string]struct{})
	s.pageSessions = make(map[string]map[string]struct{})
	return nil
}

func copyRecord(record map[string]string) map[string]string {
	if record == nil {
		return nil
	}
	out := make(map[string]string, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
