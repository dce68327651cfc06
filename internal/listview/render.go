package listview

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/consultorio/consultorio/pkg/clinicaldate"
	"github.com/consultorio/consultorio/pkg/pagination"
)

const (
	EmptySearchMessage  = "No se encontraron pacientes con ese nombre."
	EmptyListMessage    = "No hay pacientes registrados."
	DefaultSkeletonRows = 5
)

// PageItem is one entry of the page selector. Ellipsis items carry no page.
type PageItem struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// PageWindow lists the first page, the last page and the pages next to
// current, with an ellipsis wherever pages are skipped. It is empty when there
// is at most one page.
func PageWindow(current, totalPages int) []PageItem {
	if totalPages <= 1 {
		return nil
	}
	var items []PageItem
	prev := 0
	for p := 1; p <= totalPages; p++ {
		if p != 1 && p != totalPages && (p < current-1 || p > current+1) {
			continue
		}
		if prev != 0 && p > prev+1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: p, Current: p == current})
		prev = p
	}
	return items
}

// Caption is the "Mostrando X a Y de Z pacientes" line, or "" when there is
// nothing to show.
func Caption(m pagination.Meta) string {
	if m.Total == 0 || m.Page < 1 {
		return ""
	}
	from := (m.Page-1)*m.Limit + 1
	to := m.Page * m.Limit
	if to > m.Total {
		to = m.Total
	}
	return fmt.Sprintf("Mostrando %d a %d de %d pacientes", from, to, m.Total)
}

// EmptyMessage is shown in place of rows when the page has none.
func EmptyMessage(search string) string {
	if search != "" {
		return EmptySearchMessage
	}
	return EmptyListMessage
}

// Render writes the list view as a plain-text table.
func Render(w io.Writer, s Snapshot, skeletonRows int) error {
	if skeletonRows <= 0 {
		skeletonRows = DefaultSkeletonRows
	}

	if s.Err != "" {
		if _, err := fmt.Fprintf(w, "Error: %s\n\n", s.Err); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NOMBRE\tFECHA DE NACIMIENTO\tÚLTIMA VISITA\tVISITAS\tID")

	switch {
	case s.Loading:
		for i := 0; i < skeletonRows; i++ {
			fmt.Fprintln(tw, "░░░░░░░░░░░░\t░░░░░░░░░░\t░░░░░░░░░░\t░░\t░░")
		}
	case s.Result == nil || len(s.Result.Data) == 0:
		fmt.Fprintln(tw, EmptyMessage(s.Debounced))
	default:
		for _, p := range s.Result.Data {
			fmt.Fprintf(tw, "%s %s\t%s\t%s\t%d\t%s\n",
				p.FirstName, p.LastName,
				clinicaldate.LongOrNA(p.DOB),
				clinicaldate.LongOrNA(p.LastVisitDate),
				p.VisitCount,
				p.ID,
			)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Result == nil {
		return nil
	}
	m := s.Result.Pagination
	window := PageWindow(m.Page, m.TotalPages)
	if len(window) == 0 {
		return nil
	}

	parts := make([]string, 0, len(window))
	for _, item := range window {
		switch {
		case item.Ellipsis:
			parts = append(parts, "...")
		case item.Current:
			parts = append(parts, "["+strconv.Itoa(item.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(item.Page))
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", Caption(m), strings.Join(parts, " "))
	return err
}
