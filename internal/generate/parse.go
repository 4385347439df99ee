package generate

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/monetize"
)

var commonTags = []string{"guide", "review", "tips", "best", "top", "how", "tutorial", "analysis"}

const (
	maxTags          = 10
	metaSourceLines  = 3
	metaMinLines     = 10
	metaMinChars     = 50
	metaCutChars     = 155
	estimatedViews   = 1000
	keywordBoost     = 0.3
	seoBase          = 50
	seoWordWindow    = 200
	seoWordBonus     = 15
	seoHeadingBonus  = 10
	seoKeywordBonus  = 5
	seoCheckKeywords = 3
)

// Parse structures raw provider text. The body keeps every line, so spot
// positions index it directly.
func Parse(text string, u models.ContentUnit, p models.CountryProfile, now time.Time) models.GeneratedContent {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")

	title := strings.TrimSpace(strings.ReplaceAll(lines[0], "#", ""))
	if title == "" {
		title = "Generated Content"
	}

	meta := ""
	if len(lines) > metaMinLines {
		last := strings.TrimSpace(strings.ReplaceAll(strings.Join(lines[len(lines)-metaSourceLines:], " "), "#", ""))
		if utf8.RuneCountInString(last) > metaMinChars {
			meta = truncateRunes(last, metaCutChars) + "..."
		}
	}
	if meta == "" {
		meta = "Expert guide about " + strings.ToLower(title)
	}

	c := models.GeneratedContent{
		Title:           title,
		Body:            lines,
		MetaDescription: meta,
		Tags:            ExtractTags(text),
		Spots:           monetize.Detect(lines),
		SEOScore:        SEOScore(text, p),
	}
	c.Metadata = metadata(u, p, text, now)
	return c
}

// ExtractTags returns the common tags present as whole words.
func ExtractTags(text string) []string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = struct{}{}
	}
	out := []string{}
	for _, t := range commonTags {
		if _, ok := words[t]; ok {
			out = append(out, t)
		}
	}
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	return out
}

func SEOScore(text string, p models.CountryProfile) int {
	score := seoBase
	target := p.Writing.AvgWordCount
	if target == 0 {
		target = 1000
	}
	if n := len(strings.Fields(text)); abs(n-target) <= seoWordWindow {
		score += seoWordBonus
	}
	if strings.Count(text, "#") >= 3 {
		score += seoHeadingBonus
	}
	lower := strings.ToLower(text)
	hv := p.Writing.HighValueKeywords
	if len(hv) > seoCheckKeywords {
		hv = hv[:seoCheckKeywords]
	}
	for _, k := range hv {
		if strings.Contains(lower, strings.ToLower(k)) {
			score += seoKeywordBonus
		}
	}
	return min(score, 100)
}

// EstimatedRevenue is cpm * views * (1 + 0.3 per high-value keyword found
// in the keyword) / 1000.
func EstimatedRevenue(keyword string, p models.CountryProfile) float64 {
	mult := 1.0
	k := strings.ToLower(keyword)
	for _, hv := range p.Writing.HighValueKeywords {
		if hv != "" && strings.Contains(k, strings.ToLower(hv)) {
			mult += keywordBoost
		}
	}
	cpm := p.CPM
	if cpm == 0 {
		cpm = 5.0
	}
	return math.Round(cpm*estimatedViews*mult/1000*100) / 100
}

// Fallback is the placeholder used when the provider answers with no text.
func Fallback(u models.ContentUnit, p models.CountryProfile, now time.Time) models.GeneratedContent {
	body := []string{"This is a comprehensive guide about " + u.Keyword + " for " + u.Country + " readers. Content generation is in progress."}
	c := models.GeneratedContent{
		Title:           "Guide to " + titleCase(u.Keyword) + " in " + u.Country,
		Body:            body,
		MetaDescription: "Learn about " + u.Keyword + " with our expert guide for " + u.Country + ".",
		Tags:            []string{u.Keyword, strings.ToLower(u.Country), "guide"},
		Spots:           []models.MonetizationSpot{},
		SEOScore:        60,
	}
	c.Metadata = metadata(u, p, body[0], now)
	c.Metadata.Fallback = true
	return c
}

func metadata(u models.ContentUnit, p models.CountryProfile, text string, now time.Time) models.ContentMetadata {
	return models.ContentMetadata{
		Keyword:           u.Keyword,
		Country:           u.Country,
		ContentType:       u.ContentType,
		MonetizationLevel: u.MonetizationLevel,
		GeneratedAt:       now.UTC(),
		Language:          p.Locale.Language,
		EstimatedRevenue:  EstimatedRevenue(u.Keyword, p),
		WordCount:         len(strings.Fields(text)),
	}
}

func titleCase(s string) string { return cases.Title(language.English).String(s) }

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
