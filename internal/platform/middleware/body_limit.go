package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const bodyTooLargeMessage = "El formulario es demasiado grande"

// BodyLimit rejects request bodies larger than maxBytes with 413. A declared
// Content-Length over the limit is refused before the handler runs; otherwise
// the body is capped with http.MaxBytesReader and an overrun surfacing from
// the handler is turned into the same 413.
func BodyLimit(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}
			if req.ContentLength > maxBytes {
				return bodyTooLarge(c)
			}

			req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBytes)

			err := next(c)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) && !c.Response().Committed {
				return bodyTooLarge(c)
			}
			return err
		}
	}
}

func bodyTooLarge(c echo.Context) error {
	return reject(c, http.StatusRequestEntityTooLarge, bodyTooLargeMessage)
}
