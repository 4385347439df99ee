package monetize

import (
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
)

const (
	DefaultAssumedViews = 10000
	avgCommission       = 50.0

	premiumMultiplier  = 1.5
	standardMultiplier = 1.0
)

// Predict estimates monthly revenue from a fixed planning traffic figure.
// The numbers are model output, not observed revenue.
func Predict(p models.CountryProfile, assumedViews int) models.RevenuePrediction {
	p = effective(p)
	if assumedViews <= 0 {
		assumedViews = DefaultAssumedViews
	}
	views := float64(assumedViews)
	ad := views * p.CPM / 1000
	clicks := views * p.AdClickRate
	aff := clicks * p.AffiliateConversion * avgCommission
	return models.RevenuePrediction{
		MonthlyAdRevenue:        round2(ad),
		MonthlyAffiliateRevenue: round2(aff),
		TotalMonthlyRevenue:     round2(ad + aff),
		EstimatedViews:          assumedViews,
		CPM:                     p.CPM,
		UpdatedAt:               time.Now().UTC(),
	}
}

// KeywordIsPremium is true when any premium term of the profile occurs in
// keyword, compared case-folded.
func KeywordIsPremium(keyword string, p models.CountryProfile) bool {
	fold := cases.Fold()
	k := fold.String(keyword)
	for _, pk := range p.PremiumKeywords {
		pk = strings.TrimSpace(pk)
		if pk == "" {
			continue
		}
		if strings.Contains(k, fold.String(pk)) {
			return true
		}
	}
	return false
}

func KeywordStrategy(keyword, country string, p models.CountryProfile) models.KeywordStrategy {
	p = effective(p)
	s := models.KeywordStrategy{
		Country:                country,
		ExpectedCompetition:    p.Competition,
		RecommendedContentType: "guide",
		MonetizationLevel:      models.LevelHigh,
		RevenueMultiplier:      standardMultiplier,
	}
	if KeywordIsPremium(keyword, p) {
		s.IsPremiumKeyword = true
		s.RecommendedContentType = "comparison"
		s.MonetizationLevel = models.LevelMaximum
		s.RevenueMultiplier = premiumMultiplier
	}
	n := min(2, len(p.AdNetworks))
	s.RecommendedAdNetworks = slices.Clone(p.AdNetworks[:n])
	return s
}

// Strategies builds one strategy per requested country, in request order.
// Countries without a profile get the default profile.
func Strategies(t *profiles.Table, keyword string, countries []string) []models.KeywordStrategy {
	out := make([]models.KeywordStrategy, 0, len(countries))
	for _, c := range countries {
		out = append(out, KeywordStrategy(keyword, c, t.Lookup(c)))
	}
	return out
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
