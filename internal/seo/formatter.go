package seo

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/AngelCh415/revpipe/internal/models"
)

const ellipsis = "..."

var ErrInvalidLimits = errors.New("locale limits too small")

type Formatter struct {
	now func() time.Time
}

func NewFormatter() *Formatter { return &Formatter{now: time.Now} }

// Format truncates title and meta to the locale limits, sets the optimized
// keyword list and attaches a schema.org Article. On any failure the input is
// returned unchanged together with the error.
func (f *Formatter) Format(c models.GeneratedContent, country string, p models.CountryProfile) (out models.GeneratedContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = c, fmt.Errorf("seo format %s: %v", country, r)
		}
	}()

	loc := p.Locale
	if loc.MaxTitleLength <= len(ellipsis) || loc.MaxMetaLength <= len(ellipsis) {
		return c, fmt.Errorf("seo format %s: %w (title=%d meta=%d)", country, ErrInvalidLimits, loc.MaxTitleLength, loc.MaxMetaLength)
	}

	out = c
	out.Body = slices.Clone(c.Body)
	out.Title = Truncate(c.Title, loc.MaxTitleLength)
	out.MetaDescription = Truncate(c.MetaDescription, loc.MaxMetaLength)

	n := min(2, len(loc.LocalSearchTerms))
	out.OptimizedKeywords = append([]string{c.Metadata.Keyword}, loc.LocalSearchTerms[:n]...)
	out.SchemaMarkup = map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    out.Title,
		"description": out.MetaDescription,
		"author": map[string]any{
			"@type": "Organization",
			"name":  "Global Blog " + country,
		},
		"datePublished": f.now().UTC().Format(time.RFC3339),
		"inLanguage":    InLanguage(loc.Language),
	}
	return out, nil
}

// Truncate cuts s to max runes, ending in "..." when it had to cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-len(ellipsis)]) + ellipsis
}

// InLanguage reduces a BCP 47 tag to its base language, or "auto".
func InLanguage(tag string) string {
	t, err := language.Parse(tag)
	if err != nil || t == language.Und {
		return "auto"
	}
	base, _ := t.Base()
	return base.String()
}
