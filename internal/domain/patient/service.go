package patient

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/consultorio/consultorio/pkg/pagination"
)

// exportPageSize is the page size used when walking every summary.
const exportPageSize = pagination.MaxLimit

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "patient").Logger()}
}

// ListPatientSummaries returns one page of summaries. When the filtered
// aggregate query fails it retries exactly once with the basic unfiltered
// query; an error from that second attempt is returned.
func (s *Service) ListPatientSummaries(ctx context.Context, p pagination.Params) (*pagination.Result[PatientSummary], error) {
	q := SummaryQuery{Page: p.Page, Limit: p.Limit, Search: p.Search}

	data, total, err := s.repo.ListSummaries(ctx, q)
	if err == nil {
		return pagination.NewResult(data, p, total), nil
	}

	s.log.Warn().Err(err).
		Str("search", p.Search).
		Int("page", p.Page).
		Msg("summary query failed, falling back to basic listing")

	data, total, err = s.repo.ListSummariesBasic(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list patient summaries: %w", err)
	}
	return pagination.NewResult(data, p, total), nil
}

// EachSummaryPage walks every summary matching search, one page at a time.
func (s *Service) EachSummaryPage(ctx context.Context, search string, fn func([]PatientSummary) error) error {
	for page := 1; ; page++ {
		res, err := s.ListPatientSummaries(ctx, pagination.Params{Page: page, Limit: exportPageSize, Search: search})
		if err != nil {
			return err
		}
		if len(res.Data) > 0 {
			if err := fn(res.Data); err != nil {
				return err
			}
		}
		if !res.Pagination.HasNext {
			return nil
		}
	}
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	pid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetPatient(ctx, pid)
	if err != nil {
		return nil, err
	}
	if p.Visits == nil {
		p.Visits = []Visit{}
	}
	SortVisits(p.Visits)
	return p, nil
}

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	id, err := s.repo.CreatePatient(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Patient{
		ID:        FormatID(id),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Name:      FullName(in.FirstName, in.LastName),
		DOB:       in.DOB,
		Phone:     in.Phone,
		Visits:    []Visit{},
	}, nil
}

// UpdatePatient writes the new fields and returns the patient as stored,
// including its current visits.
func (s *Service) UpdatePatient(ctx context.Context, id string, in PatientInput) (*Patient, error) {
	pid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePatient(ctx, pid, in); err != nil {
		return nil, err
	}
	return s.GetPatient(ctx, id)
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	pid, err := ParseID(id)
	if err != nil {
		return err
	}
	return s.repo.DeletePatient(ctx, pid)
}

func (s *Service) ListVisits(ctx context.Context, patientID string) ([]Visit, error) {
	pid, err := ParseID(patientID)
	if err != nil {
		return nil, err
	}
	visits, err := s.repo.ListVisits(ctx, pid)
	if err != nil {
		return nil, err
	}
	SortVisits(visits)
	return visits, nil
}

func (s *Service) AddVisit(ctx context.Context, patientID string, in VisitInput) (*Visit, error) {
	pid, err := ParseID(patientID)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.AddVisit(ctx, pid, in)
	if err != nil {
		return nil, err
	}
	return visitFromInput(FormatID(id), FormatID(pid), in), nil
}

func (s *Service) UpdateVisit(ctx context.Context, patientID, visitID string, in VisitInput) (*Visit, error) {
	pid, err := ParseID(patientID)
	if err != nil {
		return nil, err
	}
	vid, err := ParseID(visitID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVisit(ctx, pid, vid, in); err != nil {
		return nil, err
	}
	return visitFromInput(FormatID(vid), FormatID(pid), in), nil
}

func (s *Service) DeleteVisit(ctx context.Context, patientID, visitID string) error {
	pid, err := ParseID(patientID)
	if err != nil {
		return err
	}
	vid, err := ParseID(visitID)
	if err != nil {
		return err
	}
	return s.repo.DeleteVisit(ctx, pid, vid)
}

func visitFromInput(id, patientID string, in VisitInput) *Visit {
	return &Visit{
		ID:                   id,
		PatientID:            patientID,
		Date:                 in.Date,
		Complaint:            in.Complaint,
		ExamFindings:         in.ExamFindings,
		CurrentTreatment:     in.CurrentTreatment,
		HomeopathicTreatment: in.HomeopathicTreatment,
	}
}
