package patient

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/consultorio/consultorio/pkg/clinicaldate"
)

// FormErrorKey holds messages that do not belong to a single field.
const FormErrorKey = "_form"

// FieldErrors maps a form field to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// PatientForm is the create/update patient form.
type PatientForm struct {
	ID        string `form:"id"`
	FirstName string `form:"firstName" validate:"min=2"`
	LastName  string `form:"lastName" validate:"min=2"`
	DOB       string `form:"dob" validate:"required,clinicaldate"`
	Phone     string `form:"phone"`
}

// VisitForm is the add/update visit form. The free-text field names match
// the ones used by the visit dialogs.
type VisitForm struct {
	PatientID            string `form:"patientId" validate:"required"`
	VisitID              string `form:"visitId"`
	Date                 string `form:"date" validate:"required,clinicaldate"`
	Complaint            string `form:"padecimiento"`
	ExamFindings         string `form:"exploracion"`
	CurrentTreatment     string `form:"tratamientoActual"`
	HomeopathicTreatment string `form:"tratamientoHomeopatico"`
}

var messages = map[string]map[string]string{
	"firstName": {"min": "El nombre debe tener al menos 2 caracteres."},
	"lastName":  {"min": "El apellido debe tener al menos 2 caracteres."},
	"dob": {
		"required":     "La fecha de nacimiento es obligatoria.",
		"clinicaldate": "Fecha de nacimiento inválida.",
	},
	"patientId": {"required": "ID de paciente no encontrado."},
	"date": {
		"required":     "La fecha es obligatoria",
		"clinicaldate": "Fecha inválida. Use DD-MM-YYYY.",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	_ = v.RegisterValidation("clinicaldate", func(fl validator.FieldLevel) bool {
		_, err := clinicaldate.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// PatientFormFrom reads a patient form from raw field values, trimming each.
func PatientFormFrom(values map[string]string) PatientForm {
	return PatientForm{
		ID:        strings.TrimSpace(values["id"]),
		FirstName: strings.TrimSpace(values["firstName"]),
		LastName:  strings.TrimSpace(values["lastName"]),
		DOB:       strings.TrimSpace(values["dob"]),
		Phone:     strings.TrimSpace(values["phone"]),
	}
}

// VisitFormFrom reads a visit form from raw field values. Clinical notes keep
// their inner whitespace.
func VisitFormFrom(values map[string]string) VisitForm {
	return VisitForm{
		PatientID:            strings.TrimSpace(values["patientId"]),
		VisitID:              strings.TrimSpace(values["visitId"]),
		Date:                 strings.TrimSpace(values["date"]),
		Complaint:            strings.TrimSpace(values["padecimiento"]),
		ExamFindings:         strings.TrimSpace(values["exploracion"]),
		CurrentTreatment:     strings.TrimSpace(values["tratamientoActual"]),
		HomeopathicTreatment: strings.TrimSpace(values["tratamientoHomeopatico"]),
	}
}

// Validate returns nil when the form is valid.
func (f PatientForm) Validate() FieldErrors {
	return validationErrors(validate.Struct(f))
}

// Input normalizes a validated form for storage.
func (f PatientForm) Input() PatientInput {
	dob, _ := clinicaldate.Normalize(f.DOB)
	return PatientInput{FirstName: f.FirstName, LastName: f.LastName, DOB: dob, Phone: f.Phone}
}

// Validate returns nil when the form is valid.
func (f VisitForm) Validate() FieldErrors {
	return validationErrors(validate.Struct(f))
}

// Input normalizes a validated form for storage.
func (f VisitForm) Input() VisitInput {
	date, _ := clinicaldate.Normalize(f.Date)
	return VisitInput{
		Date:                 date,
		Complaint:            f.Complaint,
		ExamFindings:         f.ExamFindings,
		CurrentTreatment:     f.CurrentTreatment,
		HomeopathicTreatment: f.HomeopathicTreatment,
	}
}

func validationErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	out := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add(FormErrorKey, "Datos inválidos.")
		return out
	}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "Valor inválido."
		}
		out.Add(fe.Field(), msg)
	}
	return out
}
