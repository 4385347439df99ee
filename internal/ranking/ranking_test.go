package ranking

import (
	"math"
	"testing"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreFollowsWeights(t *testing.T) {
	p := models.CountryProfile{CPM: 12.5, PurchasingPower: 9.5, MarketSize: 10, Competition: 8.5, AdClickRate: 0.08}
	if got := Score(p); !approx(got, 9.15) {
		t.Fatalf("score = %v, want 9.15", got)
	}
}

func TestRankEmbeddedTable(t *testing.T) {
	got := Rank(profiles.Embedded())
	want := []string{"USA", "Germany", "UK", "Canada", "Australia", "Singapore", "Japan", "Korea"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
	again := Rank(profiles.Embedded())
	for i := range got {
		if got[i] != again[i] {
			t.Fatal("rank is not deterministic")
		}
	}
}

func TestRankTiesKeepTableOrder(t *testing.T) {
	tbl, err := profiles.New([]models.CountryProfile{
		{Code: "B", CPM: 5},
		{Code: "A", CPM: 5},
		{Code: "C", CPM: 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := Rank(tbl)
	want := []string{"C", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
}

func TestFilterAndOrder(t *testing.T) {
	got := FilterAndOrder([]string{"A", "B", "C"}, []string{"C", "A", "Z"})
	if len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("filter = %v, want [A C]", got)
	}
	if got := FilterAndOrder([]string{"A"}, nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestTopAndInsights(t *testing.T) {
	tbl := profiles.Embedded()
	top := Top(tbl, 3)
	if len(top) != 3 || top[0].Country != "USA" || top[0].MonthlyPotential != 15000 {
		t.Fatalf("unexpected top: %+v", top)
	}
	if all := Top(tbl, 100); len(all) != tbl.Len() {
		t.Fatalf("top clamp = %d", len(all))
	}

	in := Insights(tbl)
	if in.TopRevenueCountry != "USA" {
		t.Fatalf("top country = %q", in.TopRevenueCountry)
	}
	if !approx(in.TotalMarketPotential, 68500) {
		t.Fatalf("total potential = %v", in.TotalMarketPotential)
	}
	// table order: USA 12.5, Germany 8.7, UK 9.1, Canada 8.9, Singapore 8.3
	if len(in.HighCPMCountries) != 5 || in.HighCPMCountries[1] != "Germany" {
		t.Fatalf("high cpm = %v", in.HighCPMCountries)
	}
	if len(in.LowCompetitionCountries) != 2 || in.LowCompetitionCountries[0] != "Canada" {
		t.Fatalf("low competition = %v", in.LowCompetitionCountries)
	}
}

func TestEstimatedPotential(t *testing.T) {
	got := EstimatedPotential(profiles.Embedded(), []string{"USA", "Germany", "Nowhere"})
	if !approx(got, 25500) {
		t.Fatalf("potential = %v, want 25500", got)
	}
}
