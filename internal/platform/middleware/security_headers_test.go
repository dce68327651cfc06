package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runSecurityHeaders(t *testing.T, path string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := SecurityHeaders()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	rec := runSecurityHeaders(t, "/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	expected := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "0",
		"Referrer-Policy":        "same-origin",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
		"Cache-Control":          "no-store",
	}

	for header, want := range expected {
		got := rec.Header().Get(header)
		if got != want {
			t.Errorf("header %s: got %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
}

func TestSecurityHeaders_LeavesAPICacheControl(t *testing.T) {
	rec := runSecurityHeaders(t, "/api/patients", func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "public, s-maxage=10, stale-while-revalidate=59")
		return c.JSON(http.StatusOK, map[string]string{})
	})

	if got := rec.Header().Get("Cache-Control"); got != "public, s-maxage=10, stale-while-revalidate=59" {
		t.Errorf("expected handler Cache-Control to survive, got %q", got)
	}
}

func TestSecurityHeaders_DoesNotBlockRequest(t *testing.T) {
	called := false
	rec := runSecurityHeaders(t, "/patients", func(c echo.Context) error {
		called = true
		return c.String(http.StatusCreated, "created")
	})

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}
