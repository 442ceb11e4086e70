package audit

import (
	"encoding/json"
	"time"
)

// Entry is one immutable audit row. Created once per qualifying request,
// never mutated afterwards.
type Entry struct {
	ID          int64           `json:"id"`
	UserID      *int64          `json:"userId,omitempty"`
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	StatusCode  int             `json:"statusCode"`
	IP          string          `json:"ip"`
	UserAgent   string          `json:"userAgent"`
	RequestBody json.RawMessage `json:"requestBody,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Filters membatasi hasil listing audit log.
type Filters struct {
	Page     int
	PageSize int
	Method   string
	Path     string
	UserID   *int64
}

// Result membungkus hasil listing dengan informasi paging.
type Result struct {
	Entries  []Entry
	Page     int
	PageSize int
	Total    int
}
