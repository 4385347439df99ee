package metrics

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
)

type CountryAnalytics struct {
	Country                 string    `json:"country"`
	ContentCount            int       `json:"content_count"`
	FailedUnits             int       `json:"failed_units"`
	PredictedMonthlyRevenue float64   `json:"predicted_monthly_revenue"`
	LastUpdated             time.Time `json:"last_updated"`
}

type AnalyticsReport struct {
	TotalContent          int                `json:"total_content"`
	TotalPredictedRevenue float64            `json:"total_predicted_revenue"`
	Countries             []CountryAnalytics `json:"countries"`
}

// Tracker accumulates revenue analytics from finished units.
type Tracker struct {
	mu        sync.RWMutex
	byCountry map[string]*CountryAnalytics
}

func NewTracker() *Tracker { return &Tracker{byCountry: make(map[string]*CountryAnalytics)} }

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

func (t *Tracker) ObserveUnit(r models.UnitResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.byCountry[r.Unit.Country]
	if !ok {
		a = &CountryAnalytics{Country: r.Unit.Country}
		t.byCountry[r.Unit.Country] = a
	}
	a.LastUpdated = time.Now().UTC()
	if !r.OK() {
		a.FailedUnits++
		return
	}
	a.ContentCount++
	if r.Prediction != nil {
		a.PredictedMonthlyRevenue = round2(a.PredictedMonthlyRevenue + r.Prediction.TotalMonthlyRevenue)
	}
}

// Query filters by ?country=a,b and pages with limit/offset. Rows are
// ordered by predicted revenue, highest first.
func (t *Tracker) Query(v url.Values) AnalyticsReport {
	countries := csvSet(v.Get("country"))
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	t.mu.RLock()
	rows := make([]CountryAnalytics, 0, len(t.byCountry))
	for _, a := range t.byCountry {
		if len(countries) > 0 {
			if _, ok := countries[norm(a.Country)]; !ok {
				continue
			}
		}
		rows = append(rows, *a)
	}
	t.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PredictedMonthlyRevenue != rows[j].PredictedMonthlyRevenue {
			return rows[i].PredictedMonthlyRevenue > rows[j].PredictedMonthlyRevenue
		}
		return rows[i].Country < rows[j].Country
	})

	rep := AnalyticsReport{}
	for _, r := range rows {
		rep.TotalContent += r.ContentCount
		rep.TotalPredictedRevenue += r.PredictedMonthlyRevenue
	}
	rep.TotalPredictedRevenue = round2(rep.TotalPredictedRevenue)
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	rep.Countries = paginate(rows, limit, offset)
	return rep
}

// TotalRevenue sums predicted monthly revenue across every country.
func (t *Tracker) TotalRevenue() float64 {
	return t.Query(url.Values{}).TotalPredictedRevenue
}

// TopCountry is the country with the most predicted revenue so far.
func (t *Tracker) TopCountry() string {
	rows := t.Query(url.Values{"limit": {"1"}}).Countries
	if len(rows) == 0 {
		return ""
	}
	return rows[0].Country
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
