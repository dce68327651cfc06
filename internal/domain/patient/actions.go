package patient

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	// ListPath is the view that shows patient summaries.
	ListPath = "/"
	// DashboardPath is where a deleted patient's detail view redirects to.
	DashboardPath = "/dashboard"
)

// DetailPath is the detail view of one patient.
func DetailPath(id string) string {
	return "/patients/" + id
}

// Revalidator drops cached renderings of the given view paths.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// ActionResult is what every mutation returns. Either Success is set or
// Errors holds field messages, with FormErrorKey for action-level failures.
type ActionResult struct {
	Success   bool        `json:"success,omitempty"`
	PatientID string      `json:"patientId,omitempty"`
	VisitID   string      `json:"visitId,omitempty"`
	Patient   *Patient    `json:"patient,omitempty"`
	Errors    FieldErrors `json:"errors,omitempty"`
	Stale     []string    `json:"stale,omitempty"`
	Redirect  string      `json:"redirect,omitempty"`
}

func failed(errs FieldErrors) ActionResult {
	return ActionResult{Errors: errs}
}

func formError(msg string) ActionResult {
	return failed(FieldErrors{FormErrorKey: {msg}})
}

// Actions validates form input and applies it through the Service.
type Actions struct {
	svc   *Service
	reval Revalidator
	log   zerolog.Logger
}

func NewActions(svc *Service, reval Revalidator, log zerolog.Logger) *Actions {
	return &Actions{svc: svc, reval: reval, log: log.With().Str("component", "actions").Logger()}
}

func (a *Actions) succeed(ctx context.Context, res ActionResult) ActionResult {
	res.Success = true
	if a.reval != nil && len(res.Stale) > 0 {
		if err := a.reval.Revalidate(ctx, res.Stale...); err != nil {
			a.log.Warn().Err(err).Strs("paths", res.Stale).Msg("revalidate failed")
		}
	}
	return res
}

func (a *Actions) fail(action string, err error, msg string) ActionResult {
	a.log.Error().Err(err).Str("action", action).Msg("action failed")
	return formError(msg)
}

func (a *Actions) CreatePatient(ctx context.Context, values map[string]string) ActionResult {
	form := PatientFormFrom(values)
	if errs := form.Validate(); errs != nil {
		return failed(errs)
	}

	p, err := a.svc.CreatePatient(ctx, form.Input())
	if err != nil {
		return a.fail("create_patient", err, "Error al crear el paciente.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: p.ID,
		Patient:   p,
		Stale:     []string{ListPath},
	})
}

func (a *Actions) UpdatePatient(ctx context.Context, values map[string]string) ActionResult {
	form := PatientFormFrom(values)
	errs := form.Validate()
	if form.ID == "" {
		if errs == nil {
			errs = FieldErrors{}
		}
		errs.Add(FormErrorKey, "ID de paciente no encontrado.")
	}
	if errs != nil {
		return failed(errs)
	}

	p, err := a.svc.UpdatePatient(ctx, form.ID, form.Input())
	if err != nil {
		return a.fail("update_patient", err, "Error al actualizar el paciente.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: p.ID,
		Patient:   p,
		Stale:     []string{DetailPath(p.ID), ListPath},
	})
}

func (a *Actions) DeletePatient(ctx context.Context, patientID string) ActionResult {
	if err := a.svc.DeletePatient(ctx, patientID); err != nil {
		return a.fail("delete_patient", err, "Error al eliminar el paciente.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: patientID,
		Stale:     []string{ListPath, DetailPath(patientID)},
		Redirect:  DashboardPath,
	})
}

func (a *Actions) AddVisit(ctx context.Context, values map[string]string) ActionResult {
	form := VisitFormFrom(values)
	if errs := form.Validate(); errs != nil {
		return failed(errs)
	}

	v, err := a.svc.AddVisit(ctx, form.PatientID, form.Input())
	if err != nil {
		return a.fail("add_visit", err, "Error al añadir la visita.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: v.PatientID,
		VisitID:   v.ID,
		Stale:     []string{DetailPath(v.PatientID), ListPath},
	})
}

func (a *Actions) UpdateVisit(ctx context.Context, values map[string]string) ActionResult {
	form := VisitFormFrom(values)
	if errs := form.Validate(); errs != nil {
		return failed(errs)
	}
	if form.VisitID == "" {
		return formError("ID de visita no encontrado.")
	}

	v, err := a.svc.UpdateVisit(ctx, form.PatientID, form.VisitID, form.Input())
	if err != nil {
		return a.fail("update_visit", err, "Error al actualizar la visita.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: v.PatientID,
		VisitID:   v.ID,
		Stale:     []string{DetailPath(v.PatientID), ListPath},
	})
}

func (a *Actions) DeleteVisit(ctx context.Context, patientID, visitID string) ActionResult {
	if err := a.svc.DeleteVisit(ctx, patientID, visitID); err != nil {
		return a.fail("delete_visit", err, "Error al eliminar la visita.")
	}
	return a.succeed(ctx, ActionResult{
		PatientID: patientID,
		VisitID:   visitID,
		Stale:     []string{DetailPath(patientID), ListPath},
	})
}
