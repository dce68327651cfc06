package listview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURLState(t *testing.T) {
	tests := []struct {
		query string
		want  URLState
	}{
		{"", URLState{Page: 1}},
		{"page=3", URLState{Page: 3}},
		{"page=3&search=%20juan%20", URLState{Page: 3, Search: "juan"}},
		{"page=abc&search=ana", URLState{Page: 1, Search: "ana"}},
		{"page=-1", URLState{Page: 1}},
	}
	for _, tt := range tests {
		v, err := url.ParseQuery(tt.query)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, ParseURLState(v), tt.query)
	}
}

func TestURLState_EncodeOmitsEmptySearch(t *testing.T) {
	assert.Equal(t, "page=2", URLState{Page: 2}.Encode())
	assert.Equal(t, "page=1&search=maria+garcia", URLState{Page: 1, Search: "maria garcia"}.Encode())
	assert.Equal(t, "page=1", URLState{}.Encode())
}

func TestURLState_RoundTrip(t *testing.T) {
	s := URLState{Page: 4, Search: "pérez"}
	assert.Equal(t, s, ParseURLState(s.Values()))
}
