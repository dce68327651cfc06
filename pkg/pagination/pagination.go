package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within a signed 32-bit offset for any
	// accepted limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ErrInvalidParams is returned when page or limit fall outside their bounds.
var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params holds page-based pagination parameters extracted from a request.
type Params struct {
	Page   int
	Limit  int
	Search string
}

// FromContext extracts pagination parameters from the echo context.
// Out-of-range values are rejected, not clamped.
func FromContext(c echo.Context) (Params, error) {
	return Parse(c.QueryParam("page"), c.QueryParam("limit"), c.QueryParam("search"))
}

// Parse validates raw query values. Empty page/limit fall back to defaults and
// search is trimmed.
func Parse(page, limit, search string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit, Search: strings.TrimSpace(search)}

	if page != "" {
		n, err := strconv.Atoi(strings.TrimSpace(page))
		if err != nil {
			return Params{}, ErrInvalidParams
		}
		p.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil {
			return Params{}, ErrInvalidParams
		}
		p.Limit = n
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks 1 <= page <= MaxPage and 1 <= limit <= MaxLimit.
func (p Params) Validate() error {
	if p.Page < 1 || p.Page > MaxPage || p.Limit < 1 || p.Limit > MaxLimit {
		return ErrInvalidParams
	}
	return nil
}

// Offset returns the row offset of the first item on the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewMeta derives totalPages, hasNext and hasPrev from page, limit and total.
func NewMeta(page, limit, total int) Meta {
	totalPages := TotalPages(total, limit)
	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// TotalPages returns ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Result wraps one page of T with its pagination descriptor.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// NewResult builds the envelope. A nil slice is replaced with an empty one so
// the JSON body always carries "data": [].
func NewResult[T any](data []T, p Params, total int) *Result[T] {
	if data == nil {
		data = []T{}
	}
	return &Result[T]{
		Data:       data,
		Pagination: NewMeta(p.Page, p.Limit, total),
	}
}
