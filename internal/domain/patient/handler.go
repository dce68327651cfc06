package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/consultorio/consultorio/pkg/pagination"
)

// ListCacheControl is sent with every successful list response.
const ListCacheControl = "public, s-maxage=10, stale-while-revalidate=59"

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Handler struct {
	svc          *Service
	log          zerolog.Logger
	exposeErrors bool
}

// NewHandler builds the JSON API handler. exposeErrors adds the underlying
// error text to 500 responses and must be off in production.
func NewHandler(svc *Service, log zerolog.Logger, exposeErrors bool) *Handler {
	return &Handler{svc: svc, log: log, exposeErrors: exposeErrors}
}

func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	api.GET("/patients", h.ListPatients, mw...)
	api.GET("/patients/:id", h.GetPatient, mw...)
}

func (h *Handler) ListPatients(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid pagination parameters"})
	}

	res, err := h.svc.ListPatientSummaries(c.Request().Context(), p)
	if err != nil {
		return h.internalError(c, err)
	}

	c.Response().Header().Set("Cache-Control", ListCacheControl)
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, ErrInvalidID):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid patient id"})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "Patient not found"})
	case err != nil:
		return h.internalError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) internalError(c echo.Context, err error) error {
	h.log.Error().Err(err).
		Str("path", c.Request().URL.Path).
		Str("query", c.QueryString()).
		Msg("patients api failed")

	body := errorBody{Error: "Internal server error"}
	if h.exposeErrors {
		body.Details = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
