package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// URLState is the part of the view state mirrored in the page URL.
type URLState struct {
	Page   int
	Search string
}

// ParseURLState reads page and search from a query string. A missing or
// unusable page reads as 1.
func ParseURLState(v url.Values) URLState {
	s := URLState{Page: 1, Search: strings.TrimSpace(v.Get("search"))}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		s.Page = n
	}
	return s
}

// Values returns the query values for the state. search is omitted when empty.
func (s URLState) Values() url.Values {
	v := url.Values{}
	page := s.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	return v
}

func (s URLState) Encode() string {
	return s.Values().Encode()
}
