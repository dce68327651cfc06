package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consultorio/consultorio/internal/platform/db"
	"github.com/consultorio/consultorio/pkg/clinicaldate"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const visitCols = `id, patient_id, date, complaint, exam_findings, current_treatment, homeopathic_treatment`

func (r *repoPG) CreatePatient(ctx context.Context, in PatientInput) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, date_of_birth, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		in.FirstName, in.LastName, dateArg(in.DOB), textArg(in.Phone),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", err)
	}
	return id, nil
}

func (r *repoPG) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	var (
		p     Patient
		pid   int64
		dob   *time.Time
		phone *string
	)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, first_name, last_name, date_of_birth, phone
		FROM patients WHERE id = $1`, id,
	).Scan(&pid, &p.FirstName, &p.LastName, &dob, &phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select patient: %w", err)
	}
	p.ID = FormatID(pid)
	p.Name = FullName(p.FirstName, p.LastName)
	p.DOB = clinicaldate.FormatPtr(dob)
	p.Phone = deref(phone)

	visits, err := r.ListVisits(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Visits = visits
	return &p, nil
}

func (r *repoPG) UpdatePatient(ctx context.Context, id int64, in PatientInput) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET first_name = $2, last_name = $3, date_of_birth = $4, phone = $5
		WHERE id = $1`,
		id, in.FirstName, in.LastName, dateArg(in.DOB), textArg(in.Phone),
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePatient removes the patient's visits and then the patient in one
// transaction.
func (r *repoPG) DeletePatient(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM visits WHERE patient_id = $1`, id); err != nil {
			return fmt.Errorf("delete visits: %w", err)
		}
		tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Visits

func (r *repoPG) ListVisits(ctx context.Context, patientID int64) ([]Visit, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visits WHERE patient_id = $1 ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("select visits: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *repoPG) AddVisit(ctx context.Context, patientID int64, in VisitInput) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO visits (patient_id, date, complaint, exam_findings, current_treatment, homeopathic_treatment)
		SELECT $1::bigint, $2::date, $3::text, $4::text, $5::text, $6::text
		WHERE EXISTS (SELECT 1 FROM patients WHERE id = $1)
		RETURNING id`,
		patientID, dateArg(in.Date), textArg(in.Complaint), textArg(in.ExamFindings),
		textArg(in.CurrentTreatment), textArg(in.HomeopathicTreatment),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("insert visit: %w", err)
	}
	return id, nil
}

func (r *repoPG) UpdateVisit(ctx context.Context, patientID, visitID int64, in VisitInput) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visits SET date = $3, complaint = $4, exam_findings = $5,
			current_treatment = $6, homeopathic_treatment = $7
		WHERE id = $1 AND patient_id = $2`,
		visitID, patientID, dateArg(in.Date), textArg(in.Complaint), textArg(in.ExamFindings),
		textArg(in.CurrentTreatment), textArg(in.HomeopathicTreatment),
	)
	if err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteVisit(ctx context.Context, patientID, visitID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM visits WHERE id = $1 AND patient_id = $2`, visitID, patientID)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summaries

func (r *repoPG) ListSummaries(ctx context.Context, q SummaryQuery) ([]PatientSummary, int, error) {
	dataSQL, dataArgs, countSQL, countArgs, err := buildSummarySQL(q)
	if err != nil {
		return nil, 0, err
	}
	return r.querySummaries(ctx, dataSQL, dataArgs, countSQL, countArgs)
}

func (r *repoPG) ListSummariesBasic(ctx context.Context, q SummaryQuery) ([]PatientSummary, int, error) {
	dataSQL, dataArgs, countSQL, err := buildBasicSummarySQL(q)
	if err != nil {
		return nil, 0, err
	}
	return r.querySummaries(ctx, dataSQL, dataArgs, countSQL, nil)
}

func (r *repoPG) querySummaries(ctx context.Context, dataSQL string, dataArgs []interface{}, countSQL string, countArgs []interface{}) ([]PatientSummary, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("select summaries: %w", err)
	}
	defer rows.Close()

	out := []PatientSummary{}
	for rows.Next() {
		var (
			s         PatientSummary
			id, count int64
			dob, last *time.Time
			phone     *string
		)
		if err := rows.Scan(&id, &s.FirstName, &s.LastName, &dob, &phone, &count, &last); err != nil {
			return nil, 0, fmt.Errorf("scan summary: %w", err)
		}
		s.ID = FormatID(id)
		s.Name = FullName(s.FirstName, s.LastName)
		s.DOB = clinicaldate.FormatPtr(dob)
		s.Phone = deref(phone)
		s.VisitCount = int(count)
		s.LastVisitDate = clinicaldate.FormatPtr(last)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, total, nil
}

func scanVisit(row pgx.Row) (Visit, error) {
	var (
		v                  Visit
		id, patientID      int64
		date               time.Time
		complaint, exam    *string
		current, homeopath *string
	)
	if err := row.Scan(&id, &patientID, &date, &complaint, &exam, &current, &homeopath); err != nil {
		return Visit{}, fmt.Errorf("scan visit: %w", err)
	}
	v.ID = FormatID(id)
	v.PatientID = FormatID(patientID)
	v.Date = clinicaldate.Format(date)
	v.Complaint = deref(complaint)
	v.ExamFindings = deref(exam)
	v.CurrentTreatment = deref(current)
	v.HomeopathicTreatment = deref(homeopath)
	return v, nil
}

func dateArg(s string) interface{} {
	t, err := clinicaldate.Parse(s)
	if err != nil {
		return nil
	}
	return t
}

func textArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
