package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devfolio/api/database"
	"devfolio/api/models"
)

// MongoStore is the document-store variant of the aggregation store. Visitor
// records are upserted with $set so partial writes merge field-wise; session
// snapshots are replaced wholesale. Per-page aggregates come from an
// aggregation pipeline instead of set indexes.
type MongoStore struct {
	visitors *mongo.Collection
	sessions *mongo.Collection
}

func NewMongoStore(client *database.MongoClient) *MongoStore {
	return &MongoStore{
		visitors: client.DB.Collection("visitors"),
		sessions: client.DB.Collection("page_sessions"),
	}
}

func (s *MongoStore) StoreVisitorData(ctx context.Context, visitorID string, fields map[string]string) error {
	set := bson.M{"lastUpdated": strconv.FormatInt(time.Now().UnixMilli(), 10)}
	for k, v := range fields {
		set[k] = v
	}

	_, err := s.visitors.UpdateOne(ctx,
		bson.M{"_id": visitorID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store visitor %s: %w", visitorID, err)
	}
	return nil
}

func (s *MongoStore) StorePageSession(ctx context.Context, sessionID, visitorID, page string, fields map[string]string) error {
	doc := bson.M{
		"_id":       visitorID + ":" + sessionID,
		"visitorId": visitorID,
		"sessionId": sessionID,
		"page":      page,
		"storedAt":  strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	for k, v := range fields {
		if k == "page" {
			continue
		}
		doc[k] = v
	}

	_, err := s.sessions.ReplaceOne(ctx,
		bson.M{"_id": visitorID + ":" + sessionID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store page session %s:%s: %w", visitorID, sessionID, err)
	}
	return nil
}

func (s *MongoStore) GetVisitorData(ctx context.Context, visitorID string) (map[string]string, error) {
	var doc bson.M
	err := s.visitors.FindOne(ctx, bson.M{"_id": visitorID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read visitor %s: %w", visitorID, err)
	}
	return docToRecord(doc), nil
}

func (s *MongoStore) GetPageSession(ctx context.Context, visitorID, sessionID string) (map[string]string, error) {
	var doc bson.M
	err := s.sessions.FindOne(ctx, bson.M{"_id": visitorID + ":" + sessionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page session: %w", err)
	}
	return docToRecord(doc), nil
}

func (s *MongoStore) GetVisitorSessions(ctx context.Context, visitorID string) ([]map[string]string, error) {
	cursor, err := s.sessions.Find(ctx, bson.M{"visitorId": visitorID})
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions for visitor %s: %w", visitorID, err)
	}
	defer cursor.Close(ctx)

	var sessions []map[string]string
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, docToRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("session cursor error: %w", err)
	}
	return sessions, nil
}

func (s *MongoStore) GetAllVisitors(ctx context.Context) ([]models.VisitorRecord, error) {
	cursor, err := s.visitors.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer cursor.Close(ctx)

	var visitors []models.VisitorRecord
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode visitor: %w", err)
		}
		id, _ := doc["_id"].(string)
		visitors = append(visitors, models.VisitorRecord{VisitorID: id, Data: docToRecord(doc)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("visitor cursor error: %w", err)
	}

	sort.Slice(visitors, func(i, j int) bool { return visitors[i].VisitorID < visitors[j].VisitorID })
	return visitors, nil
}

func (s *MongoStore) GetAllPages(ctx context.Context) ([]string, error) {
	values, err := s.sessions.Distinct(ctx, "page", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := make([]string, 0, len(values))
	for _, v := range values {
		if page, ok := v.(string); ok {
			pages = append(pages, page)
		}
	}
	sort.Strings(pages)
	return pages, nil
}

// GetAnalytics runs counts plus a per-page aggregation pipeline, then scans
// every visitor document for the frequency tables. Still O(total records).
func (s *MongoStore) GetAnalytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	totalVisitors, err := s.visitors.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	totalSessions, err := s.sessions.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	summary := &models.AnalyticsSummary{
		TotalVisitors: int(totalVisitors),
		TotalSessions: int(totalSessions),
		Pages:         []models.PageStats{},
		Browsers:      make(map[string]int),
		OSes:          make(map[string]int),
		Devices:       make(map[string]int),
		UTMSources:    make(map[string]int),
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$page"},
			{Key: "sessions", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "visitors", Value: bson.D{{Key: "$addToSet", Value: "$visitorId"}}},
		}}},
	}
	cursor, err := s.sessions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pages: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			Page     string   `bson:"_id"`
			Sessions int      `bson:"sessions"`
			Visitors []string `bson:"visitors"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode page aggregate: %w", err)
		}
		summary.Pages = append(summary.Pages, models.PageStats{
			Page:           row.Page,
			Sessions:       row.Sessions,
			UniqueVisitors: len(row.Visitors),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("page aggregate cursor error: %w", err)
	}
	sort.Slice(summary.Pages, func(i, j int) bool { return summary.Pages[i].Page < summary.Pages[j].Page })

	visitorCursor, err := s.visitors.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan visitors: %w", err)
	}
	defer visitorCursor.Close(ctx)

	for visitorCursor.Next(ctx) {
		var doc bson.M
		if err := visitorCursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode visitor: %w", err)
		}
		record := docToRecord(doc)
		countField(summary.Browsers, record["browser"])
		countField(summary.OSes, record["os"])
		countField(summary.Devices, record["deviceType"])
		countField(summary.UTMSources, record["utmSource"])
	}
	if err := visitorCursor.Err(); err != nil {
		return nil, fmt.Errorf("visitor cursor error: %w", err)
	}

	return summary, nil
}

func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.visitors.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear visitors: %w", err)
	}
	if _, err := s.sessions.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

func docToRecord(doc bson.M) map[string]string {
	record := make(map[string]string, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		if str, ok := v.(string); ok {
			record[k] = str
		}
	}
	return record
}
