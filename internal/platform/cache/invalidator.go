package cache

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// apiPatientsPath is the JSON API root whose responses back the patient views.
const apiPatientsPath = "/api/patients"

// ResponseKey builds the cache key for a GET path and its query. Query
// parameters are sorted so equivalent URLs share one entry.
func ResponseKey(path string, query url.Values) string {
	if len(query) == 0 {
		return KeyPrefix + path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), query[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return KeyPrefix + path + "?" + b.String()
}

// Invalidator maps stale view paths to the cached API responses behind them.
type Invalidator struct {
	store Store
	log   zerolog.Logger
}

func NewInvalidator(store Store, log zerolog.Logger) *Invalidator {
	return &Invalidator{store: store, log: log}
}

// Revalidate drops cached responses for each view path. "/" invalidates every
// patient list and detail response; "/patients/{id}" invalidates that
// patient's detail response.
func (i *Invalidator) Revalidate(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		var err error
		switch {
		case p == "/" || p == "/dashboard":
			err = i.store.DeletePrefix(ctx, KeyPrefix+apiPatientsPath)
		case strings.HasPrefix(p, "/patients/"):
			id := strings.TrimPrefix(p, "/patients/")
			err = i.store.Delete(ctx, KeyPrefix+apiPatientsPath+"/"+id)
		default:
			continue
		}
		if err != nil {
			return err
		}
		i.log.Debug().Str("path", p).Msg("cache invalidated")
	}
	return nil
}

// NopInvalidator satisfies the revalidation contract without a cache.
type NopInvalidator struct{}

func (NopInvalidator) Revalidate(context.Context, ...string) error { return nil }
