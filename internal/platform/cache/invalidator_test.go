package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseKey_SortsQuery(t *testing.T) {
	a := ResponseKey("/api/patients", url.Values{"search": {"juan"}, "page": {"2"}})
	b := ResponseKey("/api/patients", url.Values{"page": {"2"}, "search": {"juan"}})

	assert.Equal(t, a, b)
	assert.Equal(t, KeyPrefix+"/api/patients?page=2&search=juan", a)
	assert.Equal(t, KeyPrefix+"/api/patients/5", ResponseKey("/api/patients/5", nil))
}

func TestInvalidator_ListPathDropsAllPatientResponses(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	list := ResponseKey("/api/patients", url.Values{"page": {"1"}})
	detail := ResponseKey("/api/patients/3", nil)
	require.NoError(t, store.Set(ctx, list, []byte("x"), time.Minute))
	require.NoError(t, store.Set(ctx, detail, []byte("x"), time.Minute))

	inv := NewInvalidator(store, zerolog.Nop())
	require.NoError(t, inv.Revalidate(ctx, "/"))

	_, ok, _ := store.Get(ctx, list)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, detail)
	assert.False(t, ok)
}

func TestInvalidator_DetailPathDropsOnePatient(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	list := ResponseKey("/api/patients", nil)
	three := ResponseKey("/api/patients/3", nil)
	four := ResponseKey("/api/patients/4", nil)
	for _, k := range []string{list, three, four} {
		store.Set(ctx, k, []byte("x"), time.Minute)
	}

	inv := NewInvalidator(store, zerolog.Nop())
	require.NoError(t, inv.Revalidate(ctx, "/patients/3", "/elsewhere"))

	_, ok, _ := store.Get(ctx, three)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, four)
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, list)
	assert.True(t, ok)
}

func TestNopInvalidator(t *testing.T) {
	assert.NoError(t, NopInvalidator{}.Revalidate(context.Background(), "/"))
}
