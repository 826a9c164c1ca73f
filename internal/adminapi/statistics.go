package adminapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerStatisticsRoutes() {
	webserver.ApiGET("/crm/statistics/overview", statisticsOverview)
	webserver.ApiGET("/crm/statistics/daily", statisticsDaily)
}

// statisticsOverview aggregates sales and expenses over a date range
// (default: last 30 days) into register-level figures.
func statisticsOverview(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
	}
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -30)
	}
	ctx := c.Request().Context()
	appctx := GetApp(c)

	sales, salesDegraded, err := appctx.Sales().List(ctx, from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}
	expenses, expensesDegraded, err := appctx.Expenses().List(ctx, from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query expenses", err.Error())
	}

	saleTotals := make(stats.Float64Data, 0, len(sales))
	var revenue float64
	byPayment := map[string]float64{}
	for _, s := range sales {
		saleTotals = append(saleTotals, s.Total)
		revenue += s.Total
		byPayment[s.PaymentMethod] += s.Total
	}
	var spent float64
	for _, e := range expenses {
		spent += e.Amount
	}

	mean, _ := stats.Mean(saleTotals)
	median, _ := stats.Median(saleTotals)
	max, _ := stats.Max(saleTotals)
	stddev, _ := stats.StandardDeviation(saleTotals)

	return okDegraded(c, echo.Map{
		"from":              from,
		"to":                to,
		"sale_count":        len(sales),
		"revenue":           revenue,
		"expenses":          spent,
		"net":               revenue - spent,
		"avg_sale":          mean,
		"median_sale":       median,
		"max_sale":          max,
		"sale_stddev":       stddev,
		"revenue_by_method": byPayment,
	}, salesDegraded || expensesDegraded)
}

// statisticsDaily returns a per-day revenue and expense series for charting.
func statisticsDaily(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
	}
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -30)
	}
	ctx := c.Request().Context()
	appctx := GetApp(c)

	sales, salesDegraded, err := appctx.Sales().List(ctx, from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}
	expenses, expensesDegraded, err := appctx.Expenses().List(ctx, from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query expenses", err.Error())
	}

	type dayEntry struct {
		Date     string  `json:"date"`
		Revenue  float64 `json:"revenue"`
		Expenses float64 `json:"expenses"`
		Sales    int     `json:"sales"`
	}
	days := map[string]*dayEntry{}
	entry := func(t time.Time) *dayEntry {
		key := t.Format("2006-01-02")
		if e, ok := days[key]; ok {
			return e
		}
		e := &dayEntry{Date: key}
		days[key] = e
		return e
	}
	for _, s := range sales {
		e := entry(s.CreatedAt)
		e.Revenue += s.Total
		e.Sales++
	}
	for _, ex := range expenses {
		entry(ex.Date).Expenses += ex.Amount
	}

	series := make([]dayEntry, 0, len(days))
	for _, e := range days {
		series = append(series, *e)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return okDegraded(c, series, salesDegraded || expensesDegraded)
}
