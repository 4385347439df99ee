package generate

import (
	"fmt"
	"strings"

	"github.com/AngelCh415/revpipe/internal/models"
)

var levelInstructions = map[models.MonetizationLevel]string{
	models.LevelLow:     "Include 1-2 subtle product recommendations",
	models.LevelMedium:  "Include 3-4 strategic affiliate opportunities and 2 ad placements",
	models.LevelHigh:    "Include 5-6 monetization opportunities with natural product integration",
	models.LevelMaximum: "Maximize revenue with 8+ monetization points while maintaining quality",
}

func contentTypeTemplate(contentType, keyword string) string {
	switch contentType {
	case "guide":
		return "comprehensive guide about " + keyword
	case "review":
		return "detailed review and analysis of " + keyword
	case "comparison":
		return "comparison article about different " + keyword + " options"
	case "news":
		return "latest news and trends about " + keyword
	case "tutorial":
		return "step-by-step tutorial for " + keyword
	}
	return "article"
}

// BuildPrompt renders the provider instruction for one unit.
func BuildPrompt(u models.ContentUnit, p models.CountryProfile) string {
	instr, ok := levelInstructions[u.MonetizationLevel]
	if !ok {
		instr = levelInstructions[models.LevelHigh]
	}
	hv := p.Writing.HighValueKeywords
	if len(hv) > 5 {
		hv = hv[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a high-quality, engaging %s specifically for %s audience.\n\n",
		contentTypeTemplate(u.ContentType, u.Keyword), u.Country)

	b.WriteString("CONTENT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Primary keyword: %q\n", u.Keyword)
	fmt.Fprintf(&b, "- Target country: %s\n", u.Country)
	fmt.Fprintf(&b, "- Language: %s\n", p.Locale.Language)
	fmt.Fprintf(&b, "- Cultural tone: %s\n", p.Writing.CulturalTone)
	fmt.Fprintf(&b, "- Writing style: %s\n", p.Writing.Style)
	fmt.Fprintf(&b, "- Word count: approximately %d words\n", p.Writing.AvgWordCount)
	fmt.Fprintf(&b, "- Structure: %s\n\n", p.Writing.PreferredStructure)

	b.WriteString("CULTURAL ADAPTATION:\n")
	fmt.Fprintf(&b, "- Use cultural references: %s\n", strings.Join(p.Writing.LocalReferences, ", "))
	fmt.Fprintf(&b, "- Include engagement triggers: %s\n", strings.Join(p.Writing.EngagementTriggers, ", "))
	fmt.Fprintf(&b, "- Avoid: %s\n", strings.Join(p.Writing.AvoidTopics, ", "))
	fmt.Fprintf(&b, "- Currency references: %s\n\n", p.Locale.Currency)

	b.WriteString("HIGH-VALUE OPTIMIZATION:\n")
	fmt.Fprintf(&b, "- Incorporate these high-value keywords naturally: %s\n", strings.Join(hv, ", "))
	fmt.Fprintf(&b, "- %s\n", instr)
	b.WriteString("- Include clear calls-to-action\n")
	b.WriteString("- Add trust signals and social proof\n")
	b.WriteString("- Optimize for search intent\n\n")

	b.WriteString("CONTENT STRUCTURE:\n")
	b.WriteString("1. Compelling headline with emotional hook\n")
	b.WriteString("2. Introduction that addresses user pain points\n")
	b.WriteString("3. Main content with clear subheadings\n")
	b.WriteString("4. Practical examples and case studies\n")
	b.WriteString("5. Comparison sections where relevant\n")
	b.WriteString("6. Strong conclusion with clear next steps\n")
	b.WriteString("7. SEO-optimized meta description\n\n")

	fmt.Fprintf(&b, "Make the content authentic, valuable, and culturally appropriate for %s readers while maximizing revenue potential.\n", u.Country)
	return b.String()
}
