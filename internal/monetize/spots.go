package monetize

import (
	"slices"
	"strings"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
)

var (
	productTerms    = []string{"product", "tool", "service", "option", "solution"}
	comparisonTerms = []string{"vs", "compare", "comparison", "alternative"}
)

const (
	premiumCPM   = 10.0
	standardCPM  = 7.0
	aboveFoldCPM = 8.0
	maxAffCats   = 3
)

// IsSubheading reports whether line is a "##" (or deeper) markdown heading.
func IsSubheading(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "##")
}

// Detect scans body once and returns placement candidates in line order.
// Headings are section breaks only; the product vocabulary is matched on
// prose lines.
func Detect(body []string) []models.MonetizationSpot {
	var out []models.MonetizationSpot
	for i, line := range body {
		lower := strings.ToLower(line)
		heading := IsSubheading(line)

		if !heading && containsAny(lower, productTerms) {
			out = append(out, models.MonetizationSpot{
				Type:             models.SpotAffiliateLink,
				Position:         i,
				Context:          models.ContextProductMention,
				RevenuePotential: models.PotentialHigh,
			})
		}
		if heading && i > 0 {
			out = append(out, models.MonetizationSpot{
				Type:             models.SpotDisplayAd,
				Position:         i,
				Context:          models.ContextSectionBreak,
				RevenuePotential: models.PotentialMedium,
			})
		}
		if containsAny(lower, comparisonTerms) {
			out = append(out, models.MonetizationSpot{
				Type:             models.SpotComparisonTable,
				Position:         i,
				Context:          models.ContextComparisonSection,
				RevenuePotential: models.PotentialVeryHigh,
			})
		}
	}
	return out
}

// Optimize returns a copy of spots with the country-specific fields set.
// Type, position, context and revenue potential are never touched.
func Optimize(spots []models.MonetizationSpot, p models.CountryProfile) []models.MonetizationSpot {
	p = effective(p)
	out := make([]models.MonetizationSpot, len(spots))
	for i, s := range spots {
		switch s.Type {
		case models.SpotDisplayAd:
			s.AdSize, s.Priority = adSizeFor(p.CPM)
		case models.SpotAffiliateLink:
			n := min(maxAffCats, len(p.TopAffiliateCategories))
			s.RecommendedCategories = slices.Clone(p.TopAffiliateCategories[:n])
			s.ConversionRate = p.AffiliateConversion
		}
		if p.CPM > aboveFoldCPM {
			s.Placement = models.PlacementAboveFold
		} else {
			s.Placement = models.PlacementWithinContent
		}
		out[i] = s
	}
	return out
}

func adSizeFor(cpm float64) (models.AdSize, models.Priority) {
	switch {
	case cpm > premiumCPM:
		return models.AdPremiumBanner, models.PriorityHigh
	case cpm > standardCPM:
		return models.AdStandardBanner, models.PriorityMedium
	default:
		return models.AdText, models.PriorityLow
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// effective swaps an empty profile for the documented default.
func effective(p models.CountryProfile) models.CountryProfile {
	if p.IsZero() {
		return profiles.Default()
	}
	return p
}
