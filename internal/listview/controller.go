// Package listview drives the searchable, paginated patient list: it debounces
// search input, fetches pages from the list endpoint, keeps the URL state in
// sync and renders the result.
package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DebounceWindow = 300 * time.Millisecond
	PageSize       = 20
	FetchError     = "Error al obtener pacientes"
)

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Search    string
	Debounced string
	Result    *Page
	Loading   bool
	Err       string
	URL       URLState
}

type Option func(*Controller)

func WithDebounce(window time.Duration) Option {
	return func(c *Controller) { c.debounce = NewDebouncer(window) }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithOnChange registers fn to be called with a fresh Snapshot after every
// state change. fn runs outside the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the list view state. Fetches run in their own goroutines and
// are neither queued nor cancelled: whichever response resolves last wins.
type Controller struct {
	client   Client
	debounce *Debouncer
	log      zerolog.Logger
	onChange func(Snapshot)

	mu        sync.Mutex
	search    string
	debounced string
	url       URLState
	result    *Page
	inflight  int
	err       string
	closed    bool

	wg sync.WaitGroup
}

// NewController seeds the view with a pre-fetched page and the URL state it
// was rendered for. Nothing is fetched until the user acts.
func NewController(client Client, initial *Page, state URLState, opts ...Option) *Controller {
	if state.Page < 1 {
		state.Page = 1
	}
	c := &Controller{
		client:    client,
		log:       zerolog.Nop(),
		search:    state.Search,
		debounced: state.Search,
		url:       state,
		result:    initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.debounce == nil {
		c.debounce = NewDebouncer(DebounceWindow)
	}
	return c
}

// SetSearch records a keystroke. Once input settles the debounced term is
// updated and, if it differs from the URL search, page 1 is fetched.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.search = term
	c.mu.Unlock()

	c.debounce.Trigger(func() { c.settle(term) })
	c.notify()
}

func (c *Controller) settle(term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debounced = term
	changed := term != c.url.Search
	c.mu.Unlock()

	if changed {
		c.fetch(1, term)
		return
	}
	c.notify()
}

// Submit fetches page 1 for the current input without waiting for debounce.
func (c *Controller) Submit() {
	c.mu.Lock()
	term := c.search
	c.mu.Unlock()
	c.fetch(1, term)
}

// GoToPage fetches page n for the debounced term. Pages outside the known
// range are ignored.
func (c *Controller) GoToPage(n int) {
	c.mu.Lock()
	term := c.debounced
	outOfRange := n < 1 || (c.result != nil && c.result.Pagination.TotalPages > 0 && n > c.result.Pagination.TotalPages)
	c.mu.Unlock()
	if outOfRange {
		return
	}
	c.fetch(n, term)
}

// Clear empties the input and fetches page 1 unfiltered.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.search = ""
	c.mu.Unlock()

	c.debounce.Trigger(func() { c.settle("") })
	c.fetch(1, "")
}

func (c *Controller) fetch(page int, term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.inflight++
	c.err = ""
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify()

	go func() {
		defer c.wg.Done()

		q := Query{Page: page, Limit: PageSize, Search: term}
		res, err := c.client.ListPatients(context.Background(), q)

		c.mu.Lock()
		c.inflight--
		if err != nil {
			c.err = errorMessage(err)
			c.log.Warn().Err(err).Int("page", page).Str("search", term).Msg("fetch patients failed")
		} else {
			c.result = res
			c.url = URLState{Page: page, Search: term}
		}
		c.mu.Unlock()
		c.notify()
	}()
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FetchError
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	s := c.Snapshot()
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.onChange(s)
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Search:    c.search,
		Debounced: c.debounced,
		Result:    c.result,
		Loading:   c.inflight > 0,
		Err:       c.err,
		URL:       c.url,
	}
}

// Close cancels any pending debounced search. Fetches already started still
// resolve but no longer notify.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.debounce.Cancel()
}

// Wait blocks until every started fetch has resolved.
func (c *Controller) Wait() {
	c.wg.Wait()
}
