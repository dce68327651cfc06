package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxHeaderValueSize is the largest single header value accepted.
const maxHeaderValueSize = 8192

const invalidRequestMessage = "Solicitud inválida"

// Logged only; search terms are always bound as parameters.
var sqlPatterns = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1)`)

// Sanitize rejects requests carrying path traversal, null bytes in the path
// or query, or malformed headers with 400. Urlencoded form bodies are parsed
// here and every value has control characters other than \n, \r and \t
// stripped before handlers read it.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			rawPath := req.URL.RawPath
			if rawPath == "" {
				rawPath = path
			}

			if containsPathTraversal(path) || containsPathTraversal(rawPath) {
				return reject(c, http.StatusBadRequest, invalidRequestMessage)
			}
			if containsNullByte(path) || containsNullByte(rawPath) {
				return reject(c, http.StatusBadRequest, invalidRequestMessage)
			}

			for _, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize || strings.ContainsAny(v, "\r\n") {
						return reject(c, http.StatusBadRequest, invalidRequestMessage)
					}
				}
			}

			for key, values := range req.URL.Query() {
				for _, v := range values {
					if containsNullByte(key) || containsNullByte(v) {
						return reject(c, http.StatusBadRequest, invalidRequestMessage)
					}
					if sqlPatterns.MatchString(v) {
						logger.Warn().
							Str("param", key).
							Str("path", path).
							Str("remote_ip", c.RealIP()).
							Msg("suspicious SQL pattern in query parameter")
					}
				}
			}

			if req.Method == http.MethodPost &&
				strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
				if err := req.ParseForm(); err != nil {
					return reject(c, http.StatusBadRequest, invalidRequestMessage)
				}
				cleanValues(req.PostForm)
				cleanValues(req.Form)
			}

			return next(c)
		}
	}
}

func cleanValues(values map[string][]string) {
	for key, vs := range values {
		for i, v := range vs {
			vs[i] = CleanText(v)
		}
		values[key] = vs
	}
}

// CleanText strips null bytes and control characters except \n, \r and \t.
// Surrounding whitespace is kept; the form layer decides what to trim.
func CleanText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// containsPathTraversal checks for ".." in raw and percent-encoded forms.
func containsPathTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func containsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}
