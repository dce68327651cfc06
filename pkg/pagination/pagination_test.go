package pagination

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p, err := FromContext(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != DefaultPage {
		t.Errorf("expected default page %d, got %d", DefaultPage, p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Search != "" {
		t.Errorf("expected empty search, got %q", p.Search)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=50&search=%20juan%20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p, err := FromContext(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Search != "juan" {
		t.Errorf("expected trimmed search 'juan', got %q", p.Search)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
	}{
		{"page zero", "0", "20"},
		{"negative page", "-2", "20"},
		{"limit zero", "1", "0"},
		{"limit over max", "1", "101"},
		{"non numeric page", "abc", "20"},
		{"non numeric limit", "1", "ten"},
		{"page past max", strconv.Itoa(MaxPage + 1), "20"},
		{"page overflowing offset", "4611686018427387905", "20"},
		{"page overflowing int", "99999999999999999999", "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.page, tt.limit, "")
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Parse(%q, %q) error = %v, want ErrInvalidParams", tt.page, tt.limit, err)
			}
		})
	}
}

func TestParse_Bounds(t *testing.T) {
	for _, limit := range []string{"1", "100"} {
		if _, err := Parse("1", limit, ""); err != nil {
			t.Errorf("limit %s should be accepted: %v", limit, err)
		}
	}

	p, err := Parse(strconv.Itoa(MaxPage), strconv.Itoa(MaxLimit), "")
	if err != nil {
		t.Fatalf("max page should be accepted: %v", err)
	}
	if off := p.Offset(); off <= 0 || off > math.MaxInt32 {
		t.Errorf("offset at max page = %d, want a positive 32-bit value", off)
	}
}

func TestParams_Offset(t *testing.T) {
	tests := []struct {
		params Params
		want   int
	}{
		{Params{Page: 1, Limit: 20}, 0},
		{Params{Page: 2, Limit: 20}, 20},
		{Params{Page: 5, Limit: 7}, 28},
		{Params{Page: 0, Limit: 20}, 0},
	}
	for _, tt := range tests {
		if got := tt.params.Offset(); got != tt.want {
			t.Errorf("Offset(%+v) = %d, want %d", tt.params, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 1, 100},
		{250, 100, 3},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewMeta_Invariants(t *testing.T) {
	for limit := 1; limit <= MaxLimit; limit += 9 {
		for _, total := range []int{0, 1, 19, 20, 21, 999} {
			for page := 1; page <= 4; page++ {
				m := NewMeta(page, limit, total)
				wantPages := (total + limit - 1) / limit
				if m.TotalPages != wantPages {
					t.Fatalf("limit=%d total=%d: totalPages %d, want %d", limit, total, m.TotalPages, wantPages)
				}
				if m.HasNext != (page < m.TotalPages) {
					t.Fatalf("page=%d totalPages=%d: hasNext %v", page, m.TotalPages, m.HasNext)
				}
				if m.HasPrev != (page > 1) {
					t.Fatalf("page=%d: hasPrev %v", page, m.HasPrev)
				}
			}
		}
	}
}

func TestNewResult_EmptyDataMarshalsAsArray(t *testing.T) {
	r := NewResult[string](nil, Params{Page: 1, Limit: 20}, 0)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"data":[],"pagination":{"page":1,"limit":20,"total":0,"totalPages":0,"hasNext":false,"hasPrev":false}}`
	if string(b) != want {
		t.Errorf("got %s\nwant %s", b, want)
	}
}
