// Package clinicaldate handles the date-only values used across patient and
// visit records. Dates are kept as YYYY-MM-DD strings at every boundary so a
// birth date never drifts across a timezone.
package clinicaldate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout is the canonical wire and storage representation.
	ISOLayout = "2006-01-02"
	// FormLayout is the day-first layout users type into forms.
	FormLayout = "02-01-2006"
)

var ErrInvalidDate = errors.New("invalid date")

var monthsLong = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthsShort = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sept", "oct", "nov", "dic",
}

// Parse accepts either DD-MM-YYYY or YYYY-MM-DD and returns midnight UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range []string{ISOLayout, FormLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Normalize converts a user-supplied date in either layout to YYYY-MM-DD.
func Normalize(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(ISOLayout), nil
}

// Format renders t as YYYY-MM-DD using its calendar fields as stored.
func Format(t time.Time) string {
	return t.Format(ISOLayout)
}

// FormatPtr is Format for nullable columns; nil yields "".
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// ToForm converts a canonical date to the DD-MM-YYYY form default. Values that
// do not parse are returned unchanged.
func ToForm(iso string) string {
	t, err := Parse(iso)
	if err != nil {
		return iso
	}
	return t.Format(FormLayout)
}

// Long renders "2 de marzo, 2024".
func Long(t time.Time) string {
	return fmt.Sprintf("%d de %s, %d", t.Day(), monthsLong[t.Month()-1], t.Year())
}

// Short renders "2 mar, 2024".
func Short(t time.Time) string {
	return fmt.Sprintf("%d %s, %d", t.Day(), monthsShort[t.Month()-1], t.Year())
}

// LongOrNA formats a canonical date string for display, or "N/A" when absent.
func LongOrNA(iso string) string {
	t, err := Parse(iso)
	if err != nil {
		return "N/A"
	}
	return Long(t)
}

// ShortOrEmpty formats a canonical date string in the short form.
func ShortOrEmpty(iso string) string {
	t, err := Parse(iso)
	if err != nil {
		return ""
	}
	return Short(t)
}
