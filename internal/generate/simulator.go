package generate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/monetize"
)

// Simulator writes template articles offline. Safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewSimulator(seed uint64) *Simulator {
	return &Simulator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: time.Now}
}

func (s *Simulator) pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

func (s *Simulator) Generate(ctx context.Context, u models.ContentUnit, p models.CountryProfile) (models.GeneratedContent, error) {
	if err := ctx.Err(); err != nil {
		return models.GeneratedContent{}, err
	}
	kw := titleCase(u.Keyword)
	cur := orDefault(p.Locale.Currency, "USD")
	refs := p.Writing.LocalReferences
	if len(refs) == 0 {
		refs = []string{u.Country}
	}
	trig := append(append([]string{}, p.Writing.EngagementTriggers...), "proven", "reliable")

	titles := []string{
		fmt.Sprintf("Ultimate %s Guide for %s Readers", kw, u.Country),
		fmt.Sprintf("Best %s Options in %s - Expert Review", kw, u.Country),
		fmt.Sprintf("Complete %s Analysis: %s Edition", kw, u.Country),
		fmt.Sprintf("Top %s Recommendations for %s Budget", kw, cur),
	}
	title := titles[s.pick(len(titles))]

	body := []string{
		"# " + title,
		"",
		"## Introduction",
		fmt.Sprintf("Welcome to our comprehensive guide about %s, specifically tailored for %s readers. Understanding %s is crucial in today's market, especially when considering %s investments.", u.Keyword, u.Country, u.Keyword, cur),
		"",
		fmt.Sprintf("## Why %s Matters in %s", kw, u.Country),
		fmt.Sprintf("%s has become increasingly important for %s consumers. Here's what you need to know:", kw, strings.Join(refs, ", ")),
		"",
		"### Key Benefits",
		"- Enhanced value for your " + cur,
		"- " + titleCase(trig[0]) + " solutions",
		"- Proven results in " + u.Country + " market",
		"- Expert-recommended approaches",
		"",
		"## Detailed Analysis",
		fmt.Sprintf("Our team has analyzed %s from multiple perspectives relevant to %s users:", u.Keyword, u.Country),
		"",
		"### Top Recommendations",
		"1. **Premium Option**: Best for high-budget users",
		"2. **Value Choice**: Perfect " + cur + " balance",
		"3. **Budget-Friendly**: Great for beginners",
		"4. **" + u.Country + " Exclusive**: Local market leader",
		"",
		"## Expert Comparison",
		fmt.Sprintf("When compared to alternatives in the %s market, %s stands out for:", u.Country, u.Keyword),
		"- Superior quality standards",
		"- Competitive " + cur + " pricing",
		"- " + titleCase(trig[1]) + " performance",
		"",
		"## Conclusion",
		fmt.Sprintf("After thorough analysis, we recommend %s for %s users. The combination of features, reliability, and %s value makes it an excellent choice.", u.Keyword, u.Country, cur),
		"",
		"### Next Steps",
		"- Compare providers in " + u.Country,
		"- Read user reviews from " + refs[0] + " customers",
		"- Take advantage of current " + cur + " offers",
	}

	now := s.now()
	c := models.GeneratedContent{
		Title:           title,
		Body:            body,
		MetaDescription: fmt.Sprintf("Comprehensive %s guide for %s. Expert insights, comparisons, and %s recommendations.", u.Keyword, u.Country, cur),
		Tags:            []string{u.Keyword, strings.ToLower(u.Country), "guide", "review", "expert"},
		Spots:           monetize.Detect(body),
		SEOScore:        75 + s.pick(21),
	}
	c.Metadata = metadata(u, p, strings.Join(body, "\n"), now)
	return c, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
