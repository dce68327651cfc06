package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consultorio/consultorio/internal/config"
	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/internal/platform/db"
)

type seedPatient struct {
	patient patient.PatientInput
	visits  []patient.VisitInput
}

var seedData = []seedPatient{
	{
		patient: patient.PatientInput{FirstName: "Juan", LastName: "Perez", DOB: "1980-05-15", Phone: "555-1234"},
		visits: []patient.VisitInput{
			{
				Date:                 "2023-10-01",
				Complaint:            "Gripe estacional",
				ExamFindings:         "Congestión nasal, tos leve.",
				CurrentTreatment:     "Reposo y líquidos.",
				HomeopathicTreatment: "Oscillococcinum.",
			},
			{
				Date:                 "2024-03-15",
				Complaint:            "Alergia de primavera",
				ExamFindings:         "Ojos llorosos, estornudos frecuentes.",
				CurrentTreatment:     "Loratadina 10mg al día.",
				HomeopathicTreatment: "Allium Cepa 30C.",
			},
		},
	},
	{
		patient: patient.PatientInput{FirstName: "Maria", LastName: "Garcia", DOB: "1992-09-20", Phone: "555-5678"},
		visits: []patient.VisitInput{
			{
				Date:                 "2024-01-20",
				Complaint:            "Dolor de espalda",
				ExamFindings:         "Limitación de movimiento en la zona lumbar.",
				CurrentTreatment:     "Ibuprofeno 400mg, fisioterapia.",
				HomeopathicTreatment: "Arnica Montana 200C.",
			},
		},
	},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample patients and visits",
		RunE: func(cmd *cobra.Command, args []string) error {

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			if err := db.EnsureSchema(ctx, pool); err != nil {
				return err
			}

			svc := patient.NewService(patient.NewRepo(pool), logger)
			ids, err := seed(ctx, svc)
			if err != nil {
				return err
			}
			logger.Info().Strs("patient_ids", ids).Msg("seeding finished")
			return nil
		},
	}
}

// seed inserts seedData and returns the new patient ids.
func seed(ctx context.Context, svc *patient.Service) ([]string, error) {
	var ids []string
	for _, sp := range seedData {
		p, err := svc.CreatePatient(ctx, sp.patient)
		if err != nil {
			return ids, fmt.Errorf("seed patient %s: %w", patient.FullName(sp.patient.FirstName, sp.patient.LastName), err)
		}
		for _, v := range sp.visits {
			if _, err := svc.AddVisit(ctx, p.ID, v); err != nil {
				return ids, fmt.Errorf("seed visit %s for %s: %w", v.Date, p.ID, err)
			}
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}
