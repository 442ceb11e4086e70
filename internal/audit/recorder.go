package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

const writeTimeout = 5 * time.Second

// Writer persists audit entries.
type Writer interface {
	Insert(ctx context.Context, entry Entry) error
}

// DropCounter observes writes the recorder had to discard.
type DropCounter interface {
	Inc()
}

// Recorder captures redacted audit rows for mutating requests. The write is
// deliberately fire-and-forget: audit durability is best-effort and must
// never add latency or a visible error to the primary request. Failures are
// counted and logged for operational visibility only.
type Recorder struct {
	writer  Writer
	logger  *slog.Logger
	drops   DropCounter
	dropped atomic.Int64
}

// NewRecorder constructs a Recorder. drops may be nil.
func NewRecorder(writer Writer, logger *slog.Logger, drops DropCounter) *Recorder {
	return &Recorder{writer: writer, logger: logger, drops: drops}
}

// ShouldRecord reports whether a request outcome qualifies for capture:
// mutating methods on API paths with a final status below 500. Server
// errors mean the operation did not meaningfully complete, so they are
// not durable audit material.
func ShouldRecord(method, path string, status int) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	return status >= 200 && status < 500
}

// Observe captures one request outcome. It returns before the write
// completes; the detached goroutine carries its own context so a finished
// request cannot cancel the audit write.
func (r *Recorder) Observe(p *authz.Principal, method, path string, status int, ip, userAgent string, body []byte) {
	if r == nil || r.writer == nil {
		return
	}
	if !ShouldRecord(method, path, status) {
		return
	}
	entry := Entry{
		Method:      method,
		Path:        path,
		StatusCode:  status,
		IP:          ip,
		UserAgent:   userAgent,
		RequestBody: RedactBody(body),
		CreatedAt:   time.Now().UTC(),
	}
	if p != nil {
		userID := p.ID
		entry.UserID = &userID
	}
	go r.write(entry)
}

func (r *Recorder) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.writer.Insert(ctx, entry); err != nil {
		r.dropped.Add(1)
		if r.drops != nil {
			r.drops.Inc()
		}
		if r.logger != nil {
			r.logger.Warn("audit write dropped",
				slog.String("method", entry.Method),
				slog.String("path", entry.Path),
				slog.Any("error", err))
		}
	}
}

// Dropped returns how many writes have been discarded since start.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}
