package patient

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%juan%", searchPattern("juan"))
	assert.Equal(t, `%50\%%`, searchPattern("50%"))
	assert.Equal(t, `%a\_b%`, searchPattern("a_b"))
	assert.Equal(t, `%c:\\x%`, searchPattern(`c:\x`))
}

func TestBuildSummarySQL_Unfiltered(t *testing.T) {
	dataSQL, dataArgs, countSQL, countArgs, err := buildSummarySQL(SummaryQuery{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Contains(t, dataSQL, `LEFT JOIN "visits" AS "v"`)
	assert.Contains(t, dataSQL, `COUNT("v"."id") AS "visit_count"`)
	assert.Contains(t, dataSQL, `MAX("v"."date") AS "last_visit_date"`)
	assert.Contains(t, dataSQL, `GROUP BY "p"."id"`)
	assert.Contains(t, dataSQL, `ORDER BY "last_visit_date" DESC NULLS LAST, "p"."last_name" ASC, "p"."first_name" ASC, "p"."id" ASC`)
	assert.Contains(t, dataSQL, "LIMIT $1")
	assert.NotContains(t, dataSQL, "WHERE")
	assert.NotContains(t, dataSQL, "OFFSET")
	assert.Len(t, dataArgs, 1)

	assert.Contains(t, countSQL, "COUNT(*)")
	assert.NotContains(t, countSQL, "visits")
	assert.NotContains(t, countSQL, "LIMIT")
	assert.Empty(t, countArgs)
}

func TestBuildSummarySQL_Filtered(t *testing.T) {
	dataSQL, dataArgs, countSQL, countArgs, err := buildSummarySQL(SummaryQuery{Page: 3, Limit: 10, Search: "Juan Per"})
	require.NoError(t, err)

	for _, frag := range []string{
		`"p"."first_name" ILIKE $1`,
		`"p"."last_name" ILIKE $2`,
		`(p.first_name || ' ' || p.last_name) ILIKE $3`,
	} {
		assert.Contains(t, dataSQL, frag)
		assert.Contains(t, countSQL, frag)
	}
	assert.Contains(t, dataSQL, "OFFSET $5")
	require.Len(t, dataArgs, 5)
	assert.Equal(t, []interface{}{"%Juan Per%", "%Juan Per%", "%Juan Per%"}, dataArgs[:3])
	assert.Equal(t, []interface{}{"%Juan Per%", "%Juan Per%", "%Juan Per%"}, countArgs)
	assert.Equal(t, 1, strings.Count(countSQL, "WHERE"))
}

func TestSummaryQuery_OffsetSaturates(t *testing.T) {
	tests := []struct {
		q    SummaryQuery
		want int
	}{
		{SummaryQuery{Page: 1, Limit: 20}, 0},
		{SummaryQuery{Page: 3, Limit: 10}, 20},
		{SummaryQuery{Page: 0, Limit: 20}, 0},
		{SummaryQuery{Page: 4611686018427387905, Limit: 20}, math.MaxInt},
		{SummaryQuery{Page: math.MaxInt, Limit: 100}, math.MaxInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.Offset(), "%+v", tt.q)
	}
}

func TestBuildSummarySQL_HugePageKeepsOffset(t *testing.T) {
	dataSQL, dataArgs, _, _, err := buildSummarySQL(SummaryQuery{Page: 4611686018427387905, Limit: 20})
	require.NoError(t, err)

	assert.Contains(t, dataSQL, "OFFSET $2")
	require.Len(t, dataArgs, 2)
	assert.EqualValues(t, uint(math.MaxInt), dataArgs[1])
}

func TestBuildBasicSummarySQL(t *testing.T) {
	dataSQL, dataArgs, countSQL, err := buildBasicSummarySQL(SummaryQuery{Page: 2, Limit: 20, Search: "ignored"})
	require.NoError(t, err)

	assert.NotContains(t, dataSQL, "ILIKE")
	assert.NotContains(t, dataSQL, "GROUP BY")
	assert.Contains(t, dataSQL, "(SELECT COUNT(*) FROM visits v WHERE v.patient_id = p.id)")
	assert.Contains(t, dataSQL, `"last_visit_date" DESC NULLS LAST`)
	assert.Len(t, dataArgs, 2)
	assert.Equal(t, `SELECT COUNT(*) FROM "patients"`, countSQL)
}
