package domain

import (
	"encoding/json"
	"time"
)

type URLRecord struct {
	ID             int64           `json:"-"`
	ShortID        string          `json:"shortId"`
	OriginalURL    string          `json:"originalUrl"`
	TotalClicks    int64           `json:"totalClicks"`
	UniqueClicks   int64           `json:"uniqueClicks"`
	VisitorDetails []VisitorDetail `json:"visitorDetails"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type VisitorDetail struct {
	VisitorID string    `json:"visitorId"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
}

type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,absurl"`
}

type ShortenResponse struct {
	ShortURL string `json:"shortUrl"`
	ShortID  string `json:"shortId"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type URLList struct {
	Data       []URLRecord `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// EncodeHistory serializes a visitor history for the JSON blob column.
// A nil history is stored as an empty array, never as null.
func EncodeHistory(history []VisitorDetail) ([]byte, error) {
	if history == nil {
		history = []VisitorDetail{}
	}
	return json.Marshal(history)
}

// DecodeHistory parses the JSON blob column. Empty input yields an empty list.
func DecodeHistory(data []byte) ([]VisitorDetail, error) {
	history := []VisitorDetail{}
	if len(data) == 0 || string(data) == "null" {
		return history, nil
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}
