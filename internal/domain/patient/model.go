package patient

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid identifier")
)

// Patient maps to the patients table. Dates are YYYY-MM-DD strings.
type Patient struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Name      string  `json:"name"`
	DOB       string  `json:"dob,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Visits    []Visit `json:"visits"`
}

// Visit maps to the visits table.
type Visit struct {
	ID                   string `json:"id"`
	PatientID            string `json:"patientId"`
	Date                 string `json:"date"`
	Complaint            string `json:"complaint"`
	ExamFindings         string `json:"examFindings"`
	CurrentTreatment     string `json:"currentTreatment"`
	HomeopathicTreatment string `json:"homeopathicTreatment"`
}

// PatientSummary is the list projection of a patient with its visit aggregates.
type PatientSummary struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Name          string `json:"name"`
	DOB           string `json:"dob,omitempty"`
	Phone         string `json:"phone,omitempty"`
	VisitCount    int    `json:"visitCount"`
	LastVisitDate string `json:"lastVisitDate,omitempty"`
}

// PatientInput carries the writable patient fields, already normalized.
type PatientInput struct {
	FirstName string
	LastName  string
	DOB       string
	Phone     string
}

// VisitInput carries the writable visit fields, already normalized.
type VisitInput struct {
	Date                 string
	Complaint            string
	ExamFindings         string
	CurrentTreatment     string
	HomeopathicTreatment string
}

// SummaryQuery selects one page of patient summaries.
type SummaryQuery struct {
	Page   int
	Limit  int
	Search string
}

// Offset saturates at math.MaxInt so an oversized page reads past the end
// instead of wrapping around to the first rows.
func (q SummaryQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// FullName is the derived display name; it is never stored.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// ParseID converts a boundary identifier to the storage key.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// FormatID converts a storage key to its boundary form.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// SortVisits orders visits most recent first, breaking ties by newest id.
func SortVisits(visits []Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		if visits[i].Date != visits[j].Date {
			return visits[i].Date > visits[j].Date
		}
		a, _ := strconv.ParseInt(visits[i].ID, 10, 64)
		b, _ := strconv.ParseInt(visits[j].ID, 10, 64)
		return a > b
	})
}
