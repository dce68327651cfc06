package patient

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

var pg = goqu.Dialect("postgres")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPattern builds a contains pattern with LIKE wildcards in term escaped.
func searchPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func searchFilter(term string) exp.Expression {
	pattern := searchPattern(term)
	return goqu.Or(
		goqu.I("p.first_name").ILike(pattern),
		goqu.I("p.last_name").ILike(pattern),
		goqu.L("(p.first_name || ' ' || p.last_name) ILIKE ?", pattern),
	)
}

func patientColumns() []interface{} {
	return []interface{}{
		goqu.I("p.id"),
		goqu.I("p.first_name"),
		goqu.I("p.last_name"),
		goqu.I("p.date_of_birth"),
		goqu.I("p.phone"),
	}
}

func summaryOrder() []exp.OrderedExpression {
	return []exp.OrderedExpression{
		goqu.I("last_visit_date").Desc().NullsLast(),
		goqu.I("p.last_name").Asc(),
		goqu.I("p.first_name").Asc(),
		goqu.I("p.id").Asc(),
	}
}

func applyPage(ds *goqu.SelectDataset, q SummaryQuery) *goqu.SelectDataset {
	ds = ds.Limit(uint(q.Limit))
	if off := q.Offset(); off > 0 {
		ds = ds.Offset(uint(off))
	}
	return ds
}

// buildSummarySQL returns the grouped aggregate page query and its count
// query. Both share the same filter predicate.
func buildSummarySQL(q SummaryQuery) (dataSQL string, dataArgs []interface{}, countSQL string, countArgs []interface{}, err error) {
	cols := append(patientColumns(),
		goqu.COUNT(goqu.I("v.id")).As("visit_count"),
		goqu.MAX(goqu.I("v.date")).As("last_visit_date"),
	)

	data := pg.From(goqu.T("patients").As("p")).
		LeftJoin(goqu.T("visits").As("v"), goqu.On(goqu.I("v.patient_id").Eq(goqu.I("p.id")))).
		Select(cols...).
		GroupBy(goqu.I("p.id")).
		Order(summaryOrder()...)

	count := pg.From(goqu.T("patients").As("p")).Select(goqu.COUNT(goqu.Star()))

	if q.Search != "" {
		f := searchFilter(q.Search)
		data = data.Where(f)
		count = count.Where(f)
	}

	dataSQL, dataArgs, err = applyPage(data, q).Prepared(true).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build summary query: %w", err)
	}
	countSQL, countArgs, err = count.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build summary count: %w", err)
	}
	return dataSQL, dataArgs, countSQL, countArgs, nil
}

// buildBasicSummarySQL returns an unfiltered page query that computes the
// visit aggregates with correlated subqueries instead of a grouped join.
func buildBasicSummarySQL(q SummaryQuery) (dataSQL string, dataArgs []interface{}, countSQL string, err error) {
	cols := append(patientColumns(),
		goqu.L("(SELECT COUNT(*) FROM visits v WHERE v.patient_id = p.id)").As("visit_count"),
		goqu.L("(SELECT MAX(v.date) FROM visits v WHERE v.patient_id = p.id)").As("last_visit_date"),
	)

	data := pg.From(goqu.T("patients").As("p")).
		Select(cols...).
		Order(summaryOrder()...)

	dataSQL, dataArgs, err = applyPage(data, q).Prepared(true).ToSQL()
	if err != nil {
		return "", nil, "", fmt.Errorf("build basic summary query: %w", err)
	}
	countSQL, _, err = pg.From("patients").Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return "", nil, "", fmt.Errorf("build basic summary count: %w", err)
	}
	return dataSQL, dataArgs, countSQL, nil
}
