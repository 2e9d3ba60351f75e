package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"devfolio/api/database"
	"devfolio/api/models"
)

// RedisStore keeps visitor and session records in Redis hashes with set-based
// secondary indexes:
//
//	visitor:{visitorId}                   hash of visitor fields
//	pageSession:{visitorId}:{sessionId}   hash of session fields
//	visitorSessions:{visitorId}           set of session ids
//	pageSessions:{page}                   set of session hash keys
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(client *database.RedisClient) *RedisStore {
	return &RedisStore{rdb: client.Conn}
}

func visitorKey(visitorID string) string {
	return "visitor:" + visitorID
}

func sessionKey(visitorID, sessionID string) string {
	return "pageSession:" + visitorID + ":" + sessionID
}

func (s *RedisStore) StoreVisitorData(ctx context.Context, visitorID string, fields map[string]string) error {
	merged := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["lastUpdated"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	// HSET only touches the supplied fields, which is exactly the field-wise
	// merge the visitor record needs.
	if err := s.rdb.HSet(ctx, visitorKey(visitorID), merged).Err(); err != nil {
		return fmt.Errorf("failed to store visitor %s: %w", visitorID, err)
	}
	return nil
}

func (s *RedisStore) StorePageSession(ctx context.Context, sessionID, visitorID, page string, fields map[string]string) error {
	key := sessionKey(visitorID, sessionID)

	merged := make(map[string]string, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged["page"] = page
	merged["storedAt"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	// Drop the old hash first so the write replaces the snapshot instead of
	// merging into it.
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to replace page session %s: %w", key, err)
	}
	if err := s.rdb.HSet(ctx, key, merged).Err(); err != nil {
		return fmt.Errorf("failed to store page session %s: %w", key, err)
	}
	// The hash write and the two index writes are not atomic as a group; a
	// crash in between can leave a session without index entries.
	if err := s.rdb.SAdd(ctx, "visitorSessions:"+visitorID, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to index session for visitor %s: %w", visitorID, err)
	}
	if err := s.rdb.SAdd(ctx, "pageSessions:"+page, key).Err(); err != nil {
		return fmt.Errorf("failed to index session for page %s: %w", page, err)
	}
	return nil
}

func (s *RedisStore) GetVisitorData(ctx context.Context, visitorID string) (map[string]string, error) {
	data, err := s.rdb.HGetAll(ctx, visitorKey(visitorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read visitor %s: %w", visitorID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *RedisStore) GetPageSession(ctx context.Context, visitorID, sessionID string) (map[string]string, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(visitorID, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read page session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *RedisStore) GetVisitorSessions(ctx context.Context, visitorID string) ([]map[string]string, error) {
	sessionIDs, err := s.rdb.SMembers(ctx, "visitorSessions:"+visitorID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions for visitor %s: %w", visitorID, err)
	}

	var sessions []map[string]string
	for _, sessionID := range sessionIDs {
		session, err := s.GetPageSession(ctx, visitorID, sessionID)
		if err != nil {
			return nil, err
		}
		if session != nil {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (s *RedisStore) GetAllVisitors(ctx context.Context) ([]models.VisitorRecord, error) {
	keys, err := s.scanKeys(ctx, "visitor:*")
	if err != nil {
		return nil, err
	}

	visitors := make([]models.VisitorRecord, 0, len(keys))
	for _, key := range keys {
		data, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		visitors = append(visitors, models.VisitorRecord{
			VisitorID: strings.TrimPrefix(key, "visitor:"),
			Data:      data,
		})
	}

	sort.Slice(visitors, func(i, j int) bool { return visitors[i].VisitorID < visitors[j].VisitorID })
	return visitors, nil
}

func (s *RedisStore) GetAllPages(ctx context.Context) ([]string, error) {
	keys, err := s.scanKeys(ctx, "pageSessions:*")
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(keys))
	for _, key := range keys {
		pages = append(pages, strings.TrimPrefix(key, "pageSessions:"))
	}
	sort.Strings(pages)
	return pages, nil
}

// GetAnalytics walks every visitor and session key on each call. There is no
// maintained rolling aggregate, so the cost grows linearly with the number of
// stored records.
func (s *RedisStore) GetAnalytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	visitorKeys, err := s.scanKeys(ctx, "visitor:*")
	if err != nil {
		return nil, err
	}
	sessionKeys, err := s.scanKeys(ctx, "pageSession:*")
	if err != nil {
		return nil, err
	}
	pageKeys, err := s.scanKeys(ctx, "pageSessions:*")
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		TotalVisitors: len(visitorKeys),
		TotalSessions: len(sessionKeys),
		Pages:         make([]models.PageStats, 0, len(pageKeys)),
		Browsers:      make(map[string]int),
		OSes:          make(map[string]int),
		Devices:       make(map[string]int),
		UTMSources:    make(map[string]int),
	}

	for _, pageKey := range pageKeys {
		members, err := s.rdb.SMembers(ctx, pageKey).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read index %s: %w", pageKey, err)
		}
		unique := make(map[string]struct{})
		for _, member := range members {
			// member is pageSession:{visitorId}:{sessionId}
			parts := strings.Split(member, ":")
			if len(parts) > 1 {
				unique[parts[1]] = struct{}{}
			}
		}
		summary.Pages = append(summary.Pages, models.PageStats{
			Page:           strings.TrimPrefix(pageKey, "pageSessions:"),
			Sessions:       len(members),
			UniqueVisitors: len(unique),
		})
	}
	sort.Slice(summary.Pages, func(i, j int) bool { return summary.Pages[i].Page < summary.Pages[j].Page })

	for _, key := range visitorKeys {
		data, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		countField(summary.Browsers, data["browser"])
		countField(summary.OSes, data["os"])
		countField(summary.Devices, data["deviceType"])
		countField(summary.UTMSources, data["utmSource"])
	}

	return summary, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	var all []string
	for _, pattern := range []string{"visitor:*", "pageSession:*", "visitorSessions:*", "pageSessions:*"} {
		keys, err := s.scanKeys(ctx, pattern)
		if err != nil {
			return err
		}
		all = append(all, keys...)
	}
	if len(all) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, all...).Err(); err != nil {
		return fmt.Errorf("failed to clear analytics keys: %w", err)
	}
	return nil
}

func (s *RedisStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", pattern, err)
	}
	return keys, nil
}

func countField(counts map[string]int, value string) {
	if value != "" {
		counts[value]++
	}
}
