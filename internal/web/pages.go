package web

import (
	"strings"

	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/internal/listview"
)

// form carries the values and errors of the one form being re-rendered.
type form struct {
	Target string
	Values map[string]string
	Errors patient.FieldErrors
}

// Value returns the submitted value when target is the form being
// re-rendered, otherwise def.
func (f form) Value(target, key, def string) string {
	if f.Target == target && f.Values != nil {
		return f.Values[key]
	}
	return def
}

// Err joins the messages for field when target is the form being re-rendered.
func (f form) Err(target, field string) string {
	if f.Target != target {
		return ""
	}
	return strings.Join(f.Errors[field], " ")
}

type loginPage struct {
	Title string
}

type dashboardPage struct {
	Title   string
	Search  string
	Result  *listview.Page
	Err     string
	Window  []listview.PageItem
	Caption string
	Empty   string
	Form    form
}

type detailPage struct {
	Title   string
	Patient *patient.Patient
	Today   string
	Form    form
}

type notFoundPage struct {
	Title string
}
