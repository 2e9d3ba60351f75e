package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SessionEvent is one timestamped interaction event within a page session.
type SessionEvent struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// PageSession is one visit to one page by one visitor. The client re-sends the
// whole snapshot periodically while the tab is open; each write overwrites the
// previous one for the same (visitor, session) key.
type PageSession struct {
	SessionID string `json:"sessionId" binding:"required"`
	VisitorID string `json:"visitorId" binding:"required"`
	Page      string `json:"page" binding:"required"`

	EntryTime    int64          `json:"entryTime,omitempty"`
	ExitTime     int64          `json:"exitTime,omitempty"`
	Duration     int64          `json:"duration,omitempty"`
	ScrollDepth  int            `json:"scrollDepth,omitempty"`
	Interactions []string       `json:"interactions,omitempty"`
	Events       []SessionEvent `json:"events,omitempty"`
}

// Fields flattens the session into hash fields. Events are carried as a JSON
// blob since hash values are flat strings.
func (p *PageSession) Fields() map[string]string {
	f := map[string]string{
		"page": p.Page,
	}
	if p.EntryTime != 0 {
		f["entryTime"] = strconv.FormatInt(p.EntryTime, 10)
	}
	if p.ExitTime != 0 {
		f["exitTime"] = strconv.FormatInt(p.ExitTime, 10)
	}
	if p.Duration != 0 {
		f["duration"] = strconv.FormatInt(p.Duration, 10)
	}
	if p.ScrollDepth != 0 {
		f["scrollDepth"] = strconv.Itoa(p.ScrollDepth)
	}
	if len(p.Interactions) > 0 {
		f["interactions"] = strings.Join(p.Interactions, ",")
	}
	if len(p.Events) > 0 {
		if blob, err := json.Marshal(p.Events); err == nil {
			f["events"] = string(blob)
		}
	}
	return f
}
