package audit

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

// maxCapturedBody caps how much of a request body is retained for audit.
const maxCapturedBody = 64 << 10

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(data)
}

// Middleware observes every request outcome and hands qualifying ones to
// the recorder after the response is finalized.
func Middleware(recorder *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body []byte
			if r.Body != nil && mutating(r.Method) {
				captured, err := io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
				if err == nil {
					body = captured
					r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(captured), r.Body))
				}
			}

			// The identity resolver runs later in the chain; the capture
			// slot lets us attribute the entry once it has.
			ctx, capture := authz.ContextWithCapture(r.Context())

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			recorder.Observe(capture.Principal(), r.Method, r.URL.Path, sw.status, clientIP(r), r.UserAgent(), body)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func clientIP(r *http.Request) string {
	// chi middleware.RealIP rewrites RemoteAddr from the forwarding headers.
	return r.RemoteAddr
}
