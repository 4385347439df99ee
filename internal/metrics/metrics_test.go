package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AngelCh415/revpipe/internal/models"
)

func ok(country string, revenue float64) models.UnitResult {
	return models.UnitResult{
		Unit:       models.ContentUnit{Country: country},
		Prediction: &models.RevenuePrediction{TotalMonthlyRevenue: revenue},
		Duration:   10 * time.Millisecond,
	}
}

func failed(country, stage string) models.UnitResult {
	return models.UnitResult{Unit: models.ContentUnit{Country: country}, Stage: stage, Err: errors.New("x")}
}

func TestTrackerQuery(t *testing.T) {
	tr := NewTracker()
	tr.ObserveUnit(ok("USA", 1525))
	tr.ObserveUnit(ok("USA", 1525))
	tr.ObserveUnit(ok("Japan", 100.111))
	tr.ObserveUnit(failed("Japan", "generate"))

	rep := tr.Query(url.Values{})
	if rep.TotalContent != 3 || rep.TotalPredictedRevenue != 3150.11 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Countries[0].Country != "USA" || rep.Countries[1].FailedUnits != 1 {
		t.Fatalf("rows = %+v", rep.Countries)
	}
	if tr.TopCountry() != "USA" {
		t.Fatalf("top = %q", tr.TopCountry())
	}

	only := tr.Query(url.Values{"country": {" japan "}})
	if len(only.Countries) != 1 || only.Countries[0].Country != "Japan" {
		t.Fatalf("filtered = %+v", only)
	}
	paged := tr.Query(url.Values{"limit": {"1"}, "offset": {"5"}})
	if len(paged.Countries) != 0 {
		t.Fatalf("paged = %+v", paged)
	}
}

func TestCollectors(t *testing.T) {
	c := NewCollectors()
	c.ObserveUnit(ok("UK", 900))
	c.ObserveUnit(failed("UK", "persist"))

	if got := testutil.ToFloat64(c.units.WithLabelValues("UK", "ok")); got != 1 {
		t.Fatalf("ok units = %v", got)
	}
	if got := testutil.ToFloat64(c.stageFailures.WithLabelValues("persist")); got != 1 {
		t.Fatalf("stage failures = %v", got)
	}
	if got := testutil.ToFloat64(c.predictedRevenue.WithLabelValues("UK")); got != 900 {
		t.Fatalf("revenue gauge = %v", got)
	}

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "revpipe_units_total") {
		t.Fatal("exposition missing units counter")
	}
}
