package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const rateLimitedMessage = "Demasiadas solicitudes, intente de nuevo en unos segundos"

// RateLimitConfig holds per-client token bucket settings. A zero
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// ExpiresIn is how long an idle client's bucket is kept.
	ExpiresIn time.Duration
}

// DefaultRateLimitConfig allows a typing user's debounced searches with room
// for paging bursts.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		ExpiresIn:         3 * time.Minute,
	}
}

// RateLimit limits requests per client IP with an in-memory token bucket.
// Rejected requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig, logger zerolog.Logger) echo.MiddlewareFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)
	retryAfter := strconv.Itoa(int(1/cfg.RequestsPerSecond) + 1)

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.BurstSize,
		ExpiresIn: cfg.ExpiresIn,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		BeforeFunc: func(c echo.Context) {
			c.Response().Header().Set("X-RateLimit-Limit", limit)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn().
				Str("client", identifier).
				Str("path", c.Request().URL.Path).
				Msg("rate limit exceeded")
			c.Response().Header().Set("Retry-After", retryAfter)
			return reject(c, http.StatusTooManyRequests, rateLimitedMessage)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return reject(c, http.StatusForbidden, invalidRequestMessage)
		},
	})
}
