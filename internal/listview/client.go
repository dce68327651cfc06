package listview

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/pkg/pagination"
)

// ListPath is the list endpoint relative to the server base URL.
const ListPath = "/api/patients"

// Page is one page of patient summaries as served by the list endpoint.
type Page = pagination.Result[patient.PatientSummary]

// Query selects a page from the list endpoint.
type Query struct {
	Page   int
	Limit  int
	Search string
}

// Client fetches pages of patient summaries.
type Client interface {
	ListPatients(ctx context.Context, q Query) (*Page, error)
}

// APIError is a non-2xx answer from the list endpoint.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("list patients: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("list patients: status %d", e.Status)
}

// HTTPClient calls the list endpoint of a running server.
type HTTPClient struct {
	rc *resty.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPClient{rc: rc}
}

func (c *HTTPClient) ListPatients(ctx context.Context, q Query) (*Page, error) {
	params := map[string]string{
		"page":  strconv.Itoa(q.Page),
		"limit": strconv.Itoa(q.Limit),
	}
	if q.Search != "" {
		params["search"] = q.Search
	}

	var page Page
	apiErr := &APIError{}
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&page).
		SetError(apiErr).
		Get(ListPath)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return nil, apiErr
	}
	return &page, nil
}
