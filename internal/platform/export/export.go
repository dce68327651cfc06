// Package export writes patient summaries to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/pkg/clinicaldate"
)

const SheetName = "Pacientes"

// SummaryHeader is the first row of the sheet.
var SummaryHeader = []string{
	"ID",
	"Nombre",
	"Apellido",
	"Fecha de nacimiento",
	"Teléfono",
	"Visitas",
	"Última visita",
}

var columnWidths = []float64{8, 20, 20, 22, 16, 10, 22}

// SummaryWorkbook accumulates summary rows. Call Close when done.
type SummaryWorkbook struct {
	f    *excelize.File
	next int
}

func NewSummaryWorkbook() (*SummaryWorkbook, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range SummaryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	return &SummaryWorkbook{f: f, next: 2}, nil
}

// Append writes one row per summary below the rows already written.
func (w *SummaryWorkbook) Append(rows []patient.PatientSummary) error {
	for _, s := range rows {
		cell, err := excelize.CoordinatesToCellName(1, w.next)
		if err != nil {
			return err
		}
		values := []interface{}{
			s.ID,
			s.FirstName,
			s.LastName,
			clinicaldate.ShortOrEmpty(s.DOB),
			s.Phone,
			s.VisitCount,
			clinicaldate.ShortOrEmpty(s.LastVisitDate),
		}
		if err := w.f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", w.next, err)
		}
		w.next++
	}
	return nil
}

// Rows returns the number of data rows written so far.
func (w *SummaryWorkbook) Rows() int {
	return w.next - 2
}

func (w *SummaryWorkbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

func (w *SummaryWorkbook) SaveAs(path string) error {
	return w.f.SaveAs(path)
}

func (w *SummaryWorkbook) Close() error {
	return w.f.Close()
}
