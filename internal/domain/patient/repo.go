package patient

import "context"

type Repository interface {
	CreatePatient(ctx context.Context, in PatientInput) (int64, error)
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	UpdatePatient(ctx context.Context, id int64, in PatientInput) error
	DeletePatient(ctx context.Context, id int64) error

	// Visits
	ListVisits(ctx context.Context, patientID int64) ([]Visit, error)
	AddVisit(ctx context.Context, patientID int64, in VisitInput) (int64, error)
	UpdateVisit(ctx context.Context, patientID, visitID int64, in VisitInput) error
	DeleteVisit(ctx context.Context, patientID, visitID int64) error

	// Summaries. ListSummaries applies the search filter with a grouped
	// aggregate; ListSummariesBasic ignores the filter and uses correlated
	// subqueries.
	ListSummaries(ctx context.Context, q SummaryQuery) ([]PatientSummary, int, error)
	ListSummariesBasic(ctx context.Context, q SummaryQuery) ([]PatientSummary, int, error)
}
