// Package profiles holds the immutable per-country parameter table that the
// ranking and monetization engines read. A table is built once at startup
// and passed by reference; nothing in it changes afterwards.
package profiles

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/revpipe/internal/models"
)

//go:embed countries.yaml
var embeddedTable []byte

var ErrProfileNotFound = errors.New("country profile not found")

type Table struct {
	order  []string
	byCode map[string]models.CountryProfile
}

type tableFile struct {
	Countries []models.CountryProfile `yaml:"countries"`
}

// Load reads a YAML table from path, or the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(embeddedTable)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return Parse(raw)
}

func Embedded() *Table {
	t, err := Parse(embeddedTable)
	if err != nil {
		panic(fmt.Sprintf("embedded profiles: %v", err))
	}
	return t
}

func Parse(raw []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	return New(f.Countries)
}

// New builds a table preserving the order of list.
func New(list []models.CountryProfile) (*Table, error) {
	t := &Table{
		order:  make([]string, 0, len(list)),
		byCode: make(map[string]models.CountryProfile, len(list)),
	}
	for i, p := range list {
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			return nil, fmt.Errorf("profile %d: code is required", i)
		}
		if _, dup := t.byCode[p.Code]; dup {
			return nil, fmt.Errorf("profile %q: duplicate code", p.Code)
		}
		if p.CPM < 0 || p.AdClickRate < 0 || p.AdClickRate > 1 || p.AffiliateConversion < 0 || p.AffiliateConversion > 1 {
			return nil, fmt.Errorf("profile %q: rates out of range", p.Code)
		}
		t.order = append(t.order, p.Code)
		t.byCode[p.Code] = clone(p)
	}
	return t, nil
}

func (t *Table) Len() int { return len(t.order) }

func (t *Table) Codes() []string { return slices.Clone(t.order) }

func (t *Table) Get(code string) (models.CountryProfile, bool) {
	p, ok := t.byCode[code]
	if !ok {
		return models.CountryProfile{}, false
	}
	return clone(p), true
}

// Lookup returns the profile for code or the Default profile.
func (t *Table) Lookup(code string) models.CountryProfile {
	if p, ok := t.Get(code); ok {
		return p
	}
	return Default()
}

// All returns every profile in table order.
func (t *Table) All() []models.CountryProfile {
	out := make([]models.CountryProfile, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, clone(t.byCode[c]))
	}
	return out
}

// Default is the profile used when a caller hands the engines an empty one:
// CPM 5.0, click rate 0.05, affiliate conversion 0.02, competition 5 and
// US-English locale limits (60/160).
func Default() models.CountryProfile {
	return models.CountryProfile{
		Code:                   "default",
		CPM:                    5.0,
		AdClickRate:            0.05,
		AffiliateConversion:    0.02,
		Competition:            5,
		TopAffiliateCategories: []string{"tech", "finance", "health"},
		AdNetworks:             []string{"Google AdSense"},
		Locale: models.Locale{
			Language:         "en-US",
			Currency:         "USD",
			MaxTitleLength:   60,
			MaxMetaLength:    160,
			KeywordDensity:   0.02,
			LocalSearchTerms: []string{"America", "US", "United States"},
		},
		Writing: models.Writing{
			CulturalTone:       "neutral, informative",
			Style:              "clear, structured",
			PreferredStructure: "introduction -> analysis -> recommendation -> conclusion",
			AvgWordCount:       1000,
			HighValueKeywords:  []string{"best", "guide", "review"},
			EngagementTriggers: []string{"proven", "essential"},
			LocalReferences:    []string{"local"},
		},
		Design: models.Design{
			ThemeName:     "Global Default",
			PrimaryColors: []string{"#1E3A8A", "#059669"},
			FontFamily:    "'Inter', sans-serif",
			Layout:        "wide_grid",
			CTAStyle:      "professional_understated",
		},
	}
}

func clone(p models.CountryProfile) models.CountryProfile {
	p.TopAffiliateCategories = slices.Clone(p.TopAffiliateCategories)
	p.AdNetworks = slices.Clone(p.AdNetworks)
	p.PremiumKeywords = slices.Clone(p.PremiumKeywords)
	p.Locale.LocalSearchTerms = slices.Clone(p.Locale.LocalSearchTerms)
	p.Writing.HighValueKeywords = slices.Clone(p.Writing.HighValueKeywords)
	p.Writing.EngagementTriggers = slices.Clone(p.Writing.EngagementTriggers)
	p.Writing.LocalReferences = slices.Clone(p.Writing.LocalReferences)
	p.Writing.AvoidTopics = slices.Clone(p.Writing.AvoidTopics)
	p.Design.PrimaryColors = slices.Clone(p.Design.PrimaryColors)
	return p
}
