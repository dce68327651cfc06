package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/internal/listview"
	"github.com/consultorio/consultorio/pkg/clinicaldate"
	"github.com/consultorio/consultorio/pkg/pagination"
)

const (
	formCreatePatient = "create-patient"
	formEditPatient   = "edit-patient"
	formNewVisit      = "new-visit"
	formEditVisit     = "edit-visit-"
)

type Handler struct {
	svc     *patient.Service
	actions *patient.Actions
	log     zerolog.Logger
	now     func() time.Time
}

func NewHandler(svc *patient.Service, actions *patient.Actions, log zerolog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		actions: actions,
		log:     log.With().Str("component", "web").Logger(),
		now:     time.Now,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Login)
	e.POST("/login", h.DoLogin)
	e.GET("/dashboard", h.Dashboard)
	e.StaticFS("/static", echo.MustSubFS(staticFS, "static"))

	e.POST("/patients", h.CreatePatient)
	e.GET("/patients/:id", h.PatientDetail)
	e.POST("/patients/:id/edit", h.UpdatePatient)
	e.POST("/patients/:id/delete", h.DeletePatient)
	e.POST("/patients/:id/visits", h.AddVisit)
	e.POST("/patients/:id/visits/:visitId/edit", h.UpdateVisit)
	e.POST("/patients/:id/visits/:visitId/delete", h.DeleteVisit)
}

func (h *Handler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", loginPage{Title: "Iniciar sesión"})
}

// DoLogin accepts any credentials.
func (h *Handler) DoLogin(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, patient.DashboardPath)
}

func (h *Handler) Dashboard(c echo.Context) error {
	return h.renderDashboard(c, http.StatusOK, form{})
}

func (h *Handler) renderDashboard(c echo.Context, status int, f form) error {
	state := listview.ParseURLState(c.QueryParams())
	page := dashboardPage{Title: "Tablero de Pacientes", Search: state.Search, Form: f}

	params := pagination.Params{Page: state.Page, Limit: listview.PageSize, Search: state.Search}
	res, err := h.svc.ListPatientSummaries(c.Request().Context(), params)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard listing failed")
		page.Err = listview.FetchError
		res = pagination.NewResult[patient.PatientSummary](nil, params, 0)
	}
	page.Result = res
	page.Window = listview.PageWindow(res.Pagination.Page, res.Pagination.TotalPages)
	page.Caption = listview.Caption(res.Pagination)
	page.Empty = listview.EmptyMessage(state.Search)
	return c.Render(status, "dashboard.html", page)
}

func (h *Handler) PatientDetail(c echo.Context) error {
	return h.renderDetail(c, http.StatusOK, form{})
}

func (h *Handler) renderDetail(c echo.Context, status int, f form) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, patient.ErrInvalidID), errors.Is(err, patient.ErrNotFound):
		return h.notFound(c)
	case err != nil:
		h.log.Error().Err(err).Str("patient_id", c.Param("id")).Msg("load patient failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener el paciente.")
	}
	return c.Render(status, "patient.html", detailPage{
		Title:   p.Name,
		Patient: p,
		Today:   h.now().Format(clinicaldate.FormLayout),
		Form:    f,
	})
}

func (h *Handler) notFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, "notfound.html", notFoundPage{Title: "Paciente no encontrado"})
}

func (h *Handler) CreatePatient(c echo.Context) error {
	values := formValues(c)
	res := h.actions.CreatePatient(c.Request().Context(), values)
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, patient.DetailPath(res.PatientID))
	}
	return h.renderDashboard(c, http.StatusUnprocessableEntity, form{Target: formCreatePatient, Values: values, Errors: res.Errors})
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	values := formValues(c)
	values["id"] = c.Param("id")
	res := h.actions.UpdatePatient(c.Request().Context(), values)
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, patient.DetailPath(c.Param("id")))
	}
	return h.renderDetail(c, http.StatusUnprocessableEntity, form{Target: formEditPatient, Values: values, Errors: res.Errors})
}

func (h *Handler) DeletePatient(c echo.Context) error {
	res := h.actions.DeletePatient(c.Request().Context(), c.Param("id"))
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, res.Redirect)
	}
	return h.renderDetail(c, http.StatusUnprocessableEntity, form{Target: formEditPatient, Errors: res.Errors})
}

func (h *Handler) AddVisit(c echo.Context) error {
	values := formValues(c)
	values["patientId"] = c.Param("id")
	res := h.actions.AddVisit(c.Request().Context(), values)
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, patient.DetailPath(c.Param("id")))
	}
	return h.renderDetail(c, http.StatusUnprocessableEntity, form{Target: formNewVisit, Values: values, Errors: res.Errors})
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	values := formValues(c)
	values["patientId"] = c.Param("id")
	values["visitId"] = c.Param("visitId")
	res := h.actions.UpdateVisit(c.Request().Context(), values)
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, patient.DetailPath(c.Param("id")))
	}
	return h.renderDetail(c, http.StatusUnprocessableEntity, form{Target: formEditVisit + c.Param("visitId"), Values: values, Errors: res.Errors})
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	res := h.actions.DeleteVisit(c.Request().Context(), c.Param("id"), c.Param("visitId"))
	if wantsJSON(c) || res.Success {
		return h.respond(c, res, patient.DetailPath(c.Param("id")))
	}
	return h.renderDetail(c, http.StatusUnprocessableEntity, form{Target: formEditVisit + c.Param("visitId"), Errors: res.Errors})
}

// respond answers a finished action: JSON for API callers, otherwise a
// redirect to next.
func (h *Handler) respond(c echo.Context, res patient.ActionResult, next string) error {
	if wantsJSON(c) {
		status := http.StatusOK
		if !res.Success {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, res)
	}
	return c.Redirect(http.StatusSeeOther, next)
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func formValues(c echo.Context) map[string]string {
	out := map[string]string{}
	params, err := c.FormParams()
	if err != nil {
		return out
	}
	for k, v := range params {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
