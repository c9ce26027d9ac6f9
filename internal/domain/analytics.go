package domain

import (
	"time"
	"unicode/utf8"
)

const (
	// HistoryLimit is the number of most recent visitors retained per record.
	HistoryLimit = 1000
	// SnapshotVisitors is the number of visitors returned by an analytics snapshot.
	SnapshotVisitors = 100
	// MaxUserAgentLength is measured in characters, not bytes.
	MaxUserAgentLength = 200

	UnknownLocation = "Unknown"
)

// Visit is a single tracking event for a short id.
type Visit struct {
	ShortID   string `json:"shortId"`
	VisitorID string `json:"visitorId"`
	City      string `json:"city"`
	Country   string `json:"country"`
	UserAgent string `json:"userAgent"`
}

type TrackRequest struct {
	ShortID   string `json:"shortId" validate:"required"`
	VisitorID string `json:"visitorId" validate:"required"`
	City      string `json:"city,omitempty"`
}

type TrackBatchRequest struct {
	Events []TrackRequest `json:"events"`
}

type TrackBatchResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
}

type AnalyticsSnapshot struct {
	TotalClicks  int64           `json:"totalClicks"`
	UniqueClicks int64           `json:"uniqueClicks"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Visitors     []VisitorDetail `json:"visitors"`
}

// ApplyVisit folds one visit into rec and reports whether the visitor was new.
//
// totalClicks always advances. A visitor is new when no retained history entry
// carries the same visitor id; new visitors bump uniqueClicks and are appended,
// after which the history is cut back to the most recent limit entries. Because
// only retained entries are scanned, uniqueClicks can exceed len(history) once
// truncation has happened.
func ApplyVisit(rec *URLRecord, visit Visit, now time.Time, limit int) bool {
	if limit <= 0 {
		limit = HistoryLimit
	}

	rec.TotalClicks++
	rec.UpdatedAt = now

	for _, v := range rec.VisitorDetails {
		if v.VisitorID == visit.VisitorID {
			return false
		}
	}

	rec.UniqueClicks++
	rec.VisitorDetails = append(rec.VisitorDetails, VisitorDetail{
		VisitorID: visit.VisitorID,
		City:      orUnknown(visit.City),
		Country:   orUnknown(visit.Country),
		Timestamp: now,
		UserAgent: TruncateUserAgent(visit.UserAgent),
	})

	if excess := len(rec.VisitorDetails) - limit; excess > 0 {
		kept := make([]VisitorDetail, limit)
		copy(kept, rec.VisitorDetails[excess:])
		rec.VisitorDetails = kept
	}

	return true
}

// Snapshot returns the dashboard view of rec with the last SnapshotVisitors entries.
func Snapshot(rec *URLRecord) *AnalyticsSnapshot {
	visitors := rec.VisitorDetails
	if len(visitors) > SnapshotVisitors {
		visitors = visitors[len(visitors)-SnapshotVisitors:]
	}

	out := make([]VisitorDetail, len(visitors))
	copy(out, visitors)

	return &AnalyticsSnapshot{
		TotalClicks:  rec.TotalClicks,
		UniqueClicks: rec.UniqueClicks,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Visitors:     out,
	}
}

func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	runes := []rune(ua)
	return string(runes[:MaxUserAgentLength])
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLocation
	}
	return s
}
