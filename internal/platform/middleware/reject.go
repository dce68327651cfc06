package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// reject ends the request with status and msg. API callers and clients asking
// for JSON get {"error": msg}; pages and form posts get plain text.
func reject(c echo.Context, status int, msg string) error {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(status, map[string]string{"error": msg})
	}
	return c.String(status, msg)
}
