package ranking

import (
	"sort"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
)

const (
	weightCPM         = 0.30
	weightPurchasing  = 0.25
	weightMarketSize  = 0.20
	weightCompetition = 0.15
	weightClickRate   = 0.10

	highCPMThreshold        = 8.0
	lowCompetitionThreshold = 7.0
)

// Score is the composite monetization score of one profile.
func Score(p models.CountryProfile) float64 {
	return p.CPM*weightCPM +
		p.PurchasingPower*weightPurchasing +
		p.MarketSize*weightMarketSize +
		(10-p.Competition)*weightCompetition +
		(p.AdClickRate*100)*weightClickRate
}

// Rank orders the table's countries by Score, highest first. Equal scores
// keep table order.
func Rank(t *profiles.Table) []string {
	all := t.All()
	scores := make([]float64, len(all))
	idx := make([]int, len(all))
	for i, p := range all {
		scores[i] = Score(p)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = all[j].Code
	}
	return out
}

// FilterAndOrder keeps the ranked countries that were requested, in ranked
// order. Requested countries missing from ranked are dropped silently.
func FilterAndOrder(ranked, requested []string) []string {
	want := make(map[string]struct{}, len(requested))
	for _, c := range requested {
		want[c] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, c := range ranked {
		if _, ok := want[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func Top(t *profiles.Table, limit int) []models.CountryOverview {
	ranked := Rank(t)
	if limit < 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]models.CountryOverview, 0, limit)
	for _, code := range ranked[:limit] {
		p, _ := t.Get(code)
		out = append(out, models.CountryOverview{
			Country:          code,
			MonthlyPotential: p.MonthlyPotential,
			CPM:              p.CPM,
			PurchasingPower:  p.PurchasingPower,
			MarketSize:       p.MarketSize,
			Competition:      p.Competition,
		})
	}
	return out
}

func Insights(t *profiles.Table) models.RevenueInsights {
	ranked := Rank(t)
	in := models.RevenueInsights{
		HighCPMCountries:        []string{},
		LowCompetitionCountries: []string{},
	}
	for _, p := range t.All() {
		in.TotalMarketPotential += p.MonthlyPotential
		if p.CPM > highCPMThreshold {
			in.HighCPMCountries = append(in.HighCPMCountries, p.Code)
		}
		if p.Competition < lowCompetitionThreshold {
			in.LowCompetitionCountries = append(in.LowCompetitionCountries, p.Code)
		}
	}
	if len(ranked) > 0 {
		in.TopRevenueCountry = ranked[0]
	}
	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}
	in.RecommendedFocusCountries = append([]string{}, ranked[:n]...)
	return in
}

// EstimatedPotential sums monthly potential of the requested countries;
// unknown countries count as zero.
func EstimatedPotential(t *profiles.Table, requested []string) float64 {
	var sum float64
	for _, c := range requested {
		if p, ok := t.Get(c); ok {
			sum += p.MonthlyPotential
		}
	}
	return sum
}
