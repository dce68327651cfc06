package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/consultorio/consultorio/internal/platform/cache"
)

// replayHeaders are copied into a cached entry and restored on a hit.
var replayHeaders = []string{echo.HeaderContentType, "Cache-Control", "ETag"}

// cachedResponse is the value stored per cache key.
type cachedResponse struct {
	Status int               `json:"status"`
	Header map[string]string `json:"header"`
	Body   []byte            `json:"body"`
}

// ---------------------------------------------------------------------------
// Buffered response writer
// ---------------------------------------------------------------------------

// bufferedResponseWriter captures the response body in a buffer so it can be
// stored and hashed before being flushed to the real writer.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        *bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		writer:     w,
		buf:        &bytes.Buffer{},
		statusCode: http.StatusOK,
	}
}

// Header returns the underlying writer's header map so that headers set by
// handlers are visible to both the middleware and the final flush.
func (w *bufferedResponseWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.statusCode = code
}

// Flush implements http.Flusher (no-op for buffer).
func (w *bufferedResponseWriter) Flush() {}

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() > 0 {
		_, err := w.writer.Write(w.buf.Bytes())
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// ResponseCache
// ---------------------------------------------------------------------------

// ResponseCache serves GET responses from store, keyed by path and sorted
// query. Only 200 responses are stored. Every response gets an ETag and
// If-None-Match is answered with 304. Store failures are logged and the
// request is served uncached. A non-positive ttl disables the cache.
func ResponseCache(store cache.Store, ttl time.Duration, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if ttl <= 0 || store == nil {
			return next
		}
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			ctx := req.Context()
			key := cache.ResponseKey(req.URL.Path, req.URL.Query())
			res := c.Response()

			raw, ok, err := store.Get(ctx, key)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("response cache read failed")
			}
			if ok {
				var entry cachedResponse
				if err := json.Unmarshal(raw, &entry); err == nil {
					for k, v := range entry.Header {
						res.Header().Set(k, v)
					}
					res.Header().Set("X-Cache", "HIT")
					if notModified(req, entry.Header["ETag"]) {
						return c.NoContent(http.StatusNotModified)
					}
					res.WriteHeader(entry.Status)
					_, err := res.Write(entry.Body)
					return err
				}
			}

			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			if err := next(c); err != nil {
				res.Writer = origWriter
				return err
			}
			res.Writer = origWriter

			res.Header().Set("X-Cache", "MISS")
			if buf.statusCode != http.StatusOK {
				return buf.flushTo()
			}

			etag := computeETag(buf.buf.Bytes())
			res.Header().Set("ETag", etag)

			entry := cachedResponse{Status: buf.statusCode, Header: map[string]string{}, Body: buf.buf.Bytes()}
			for _, h := range replayHeaders {
				if v := res.Header().Get(h); v != "" {
					entry.Header[h] = v
				}
			}
			if b, err := json.Marshal(entry); err == nil {
				if err := store.Set(ctx, key, b, ttl); err != nil {
					logger.Warn().Err(err).Str("key", key).Msg("response cache write failed")
				}
			}

			if notModified(req, etag) {
				res.Writer.WriteHeader(http.StatusNotModified)
				return nil
			}
			return buf.flushTo()
		}
	}
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

func notModified(req *http.Request, etag string) bool {
	inm := req.Header.Get("If-None-Match")
	return inm != "" && etag != "" && etagMatch(inm, etag)
}

// computeETag returns a weak ETag based on the MD5 hash of the body.
func computeETag(body []byte) string {
	hash := md5.Sum(body)
	return fmt.Sprintf(`W/"%x"`, hash)
}

// etagMatch checks if the provided If-None-Match header value matches the
// given ETag. Supports comma-separated lists and the wildcard "*".
func etagMatch(headerVal, etag string) bool {
	headerVal = strings.TrimSpace(headerVal)
	if headerVal == "*" {
		return true
	}
	for _, candidate := range strings.Split(headerVal, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag {
			return true
		}
		// Weak comparison: W/"x" matches W/"x" or "x".
		if stripWeakPrefix(candidate) == stripWeakPrefix(etag) {
			return true
		}
	}
	return false
}

// stripWeakPrefix removes the W/ prefix from a weak ETag.
func stripWeakPrefix(etag string) string {
	if strings.HasPrefix(etag, `W/`) {
		return etag[2:]
	}
	return etag
}
