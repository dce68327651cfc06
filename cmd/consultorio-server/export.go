package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consultorio/consultorio/internal/config"
	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/internal/platform/db"
	"github.com/consultorio/consultorio/internal/platform/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every matching patient summary to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			search, _ := cmd.Flags().GetString("search")

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

			svc := patient.NewService(patient.NewRepo(pool), logger)
			rows, err := exportSummaries(ctx, svc, search, out)
			if err != nil {
				return err
			}
			logger.Info().Int("rows", rows).Str("file", out).Msg("export finished")
			return nil
		},
	}
	cmd.Flags().String("out", "pacientes.xlsx", "output file")
	cmd.Flags().String("search", "", "only export patients matching this name")
	return cmd
}

func exportSummaries(ctx context.Context, svc *patient.Service, search, path string) (int, error) {
	wb, err := export.NewSummaryWorkbook()
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	if err := svc.EachSummaryPage(ctx, search, wb.Append); err != nil {
		return 0, fmt.Errorf("export summaries: %w", err)
	}
	if err := wb.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}
	return wb.Rows(), nil
}
