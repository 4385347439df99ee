package models

import "time"

type CountryProfile struct {
	Code                   string   `yaml:"code" json:"code"`
	CPM                    float64  `yaml:"cpm" json:"cpm"`
	AdClickRate            float64  `yaml:"ad_click_rate" json:"ad_click_rate"`
	AffiliateConversion    float64  `yaml:"affiliate_conversion" json:"affiliate_conversion"`
	PurchasingPower        float64  `yaml:"purchasing_power" json:"purchasing_power"`
	MarketSize             float64  `yaml:"market_size" json:"market_size"`
	Competition            float64  `yaml:"competition" json:"competition"`
	MonthlyPotential       float64  `yaml:"monthly_potential" json:"monthly_potential"`
	TopAffiliateCategories []string `yaml:"top_affiliate_categories" json:"top_affiliate_categories"`
	AdNetworks             []string `yaml:"ad_networks" json:"ad_networks"`
	PremiumKeywords        []string `yaml:"premium_keywords" json:"premium_keywords"`

	Locale  Locale  `yaml:"locale" json:"locale"`
	Writing Writing `yaml:"writing" json:"writing"`
	Design  Design  `yaml:"design" json:"design"`
}

// IsZero reports whether the profile carries no economic data at all.
func (p CountryProfile) IsZero() bool {
	return p.Code == "" && p.CPM == 0 && p.AdClickRate == 0 && p.AffiliateConversion == 0
}

type Locale struct {
	Language         string   `yaml:"language" json:"language"`
	Currency         string   `yaml:"currency" json:"currency"`
	MaxTitleLength   int      `yaml:"max_title_length" json:"max_title_length"`
	MaxMetaLength    int      `yaml:"max_meta_length" json:"max_meta_length"`
	KeywordDensity   float64  `yaml:"keyword_density" json:"keyword_density"`
	LocalSearchTerms []string `yaml:"local_search_terms" json:"local_search_terms"`
}

type Writing struct {
	CulturalTone       string   `yaml:"cultural_tone" json:"cultural_tone"`
	Style              string   `yaml:"style" json:"style"`
	PreferredStructure string   `yaml:"preferred_structure" json:"preferred_structure"`
	AvgWordCount       int      `yaml:"avg_word_count" json:"avg_word_count"`
	HighValueKeywords  []string `yaml:"high_value_keywords" json:"high_value_keywords"`
	EngagementTriggers []string `yaml:"engagement_triggers" json:"engagement_triggers"`
	LocalReferences    []string `yaml:"local_references" json:"local_references"`
	AvoidTopics        []string `yaml:"avoid_topics" json:"avoid_topics"`
}

type Design struct {
	ThemeName     string   `yaml:"theme_name" json:"theme_name"`
	PrimaryColors []string `yaml:"primary_colors" json:"primary_colors"`
	FontFamily    string   `yaml:"font_family" json:"font_family"`
	Layout        string   `yaml:"layout" json:"layout"`
	CTAStyle      string   `yaml:"cta_style" json:"cta_style"`
}

type MonetizationLevel string

const (
	LevelLow     MonetizationLevel = "low"
	LevelMedium  MonetizationLevel = "medium"
	LevelHigh    MonetizationLevel = "high"
	LevelMaximum MonetizationLevel = "maximum"
)

func (l MonetizationLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelMaximum:
		return true
	}
	return false
}

type ContentUnit struct {
	Keyword           string            `json:"keyword"`
	Country           string            `json:"country"`
	ContentType       string            `json:"content_type"`
	MonetizationLevel MonetizationLevel `json:"monetization_level"`
}

type SpotType string

const (
	SpotAffiliateLink   SpotType = "affiliate_link"
	SpotDisplayAd       SpotType = "display_ad"
	SpotComparisonTable SpotType = "comparison_table"
)

type RevenuePotential string

const (
	PotentialLow      RevenuePotential = "low"
	PotentialMedium   RevenuePotential = "medium"
	PotentialHigh     RevenuePotential = "high"
	PotentialVeryHigh RevenuePotential = "very_high"
)

type Placement string

const (
	PlacementAboveFold     Placement = "above_fold"
	PlacementWithinContent Placement = "within_content"
)

type AdSize string

const (
	AdPremiumBanner  AdSize = "premium_banner"
	AdStandardBanner AdSize = "standard_banner"
	AdText           AdSize = "text_ad"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	ContextProductMention    = "product_mention"
	ContextSectionBreak      = "section_break"
	ContextComparisonSection = "comparison_section"
)

// MonetizationSpot is a placement candidate. Position indexes the body
// version the spot was detected against; later reflows make it advisory.
// The optimized fields stay zero until the spot passes through Optimize.
type MonetizationSpot struct {
	Type             SpotType         `json:"type"`
	Position         int              `json:"position"`
	Context          string           `json:"context"`
	RevenuePotential RevenuePotential `json:"revenue_potential"`

	AdSize                AdSize    `json:"ad_size,omitempty"`
	Priority              Priority  `json:"priority,omitempty"`
	RecommendedCategories []string  `json:"recommended_categories,omitempty"`
	ConversionRate        float64   `json:"conversion_rate,omitempty"`
	Placement             Placement `json:"placement,omitempty"`
}

type RevenuePrediction struct {
	MonthlyAdRevenue        float64   `json:"monthly_ad_revenue"`
	MonthlyAffiliateRevenue float64   `json:"monthly_affiliate_revenue"`
	TotalMonthlyRevenue     float64   `json:"total_monthly_revenue"`
	EstimatedViews          int       `json:"estimated_views"`
	CPM                     float64   `json:"cpm"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type ContentMetadata struct {
	Keyword           string            `json:"keyword"`
	Country           string            `json:"country"`
	ContentType       string            `json:"content_type"`
	MonetizationLevel MonetizationLevel `json:"monetization_level"`
	GeneratedAt       time.Time         `json:"generated_at"`
	Language          string            `json:"language"`
	EstimatedRevenue  float64           `json:"estimated_revenue"`
	WordCount         int               `json:"word_count"`
	Fallback          bool              `json:"fallback,omitempty"`
}

// GeneratedContent is owned by a single unit traversal and never shared.
type GeneratedContent struct {
	Title           string             `json:"title"`
	Body            []string           `json:"body"`
	MetaDescription string             `json:"meta_description"`
	Tags            []string           `json:"tags"`
	Spots           []MonetizationSpot `json:"monetization_spots"`
	SEOScore        int                `json:"seo_score"`
	Metadata        ContentMetadata    `json:"metadata"`

	OptimizedKeywords     []string           `json:"optimized_keywords,omitempty"`
	SchemaMarkup          map[string]any     `json:"schema_markup,omitempty"`
	PremiumKeywords       []string           `json:"premium_keywords,omitempty"`
	RecommendedAdNetworks []string           `json:"recommended_ad_networks,omitempty"`
	Prediction            *RevenuePrediction `json:"revenue_prediction,omitempty"`
}

type DesignConfig struct {
	Country  string `json:"country"`
	Profile  Design `json:"profile"`
	CSS      string `json:"css"`
	Language string `json:"language"`
}

type DeployStatus string

const (
	DeploySuccess DeployStatus = "success"
	DeployFailed  DeployStatus = "failed"
)

type Deployment struct {
	Country      string       `json:"country"`
	Domain       string       `json:"domain,omitempty"`
	DeploymentID string       `json:"deployment_id,omitempty"`
	Status       DeployStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
	DeployedAt   time.Time    `json:"deployed_at"`
}

type ContentRecord struct {
	ID        string           `json:"id"`
	Unit      ContentUnit      `json:"unit"`
	Content   GeneratedContent `json:"content"`
	HTML      string           `json:"html"`
	CreatedAt time.Time        `json:"created_at"`
}

type StoreStatus struct {
	TotalPosts       int            `json:"total_posts"`
	PerCountryCounts map[string]int `json:"per_country_counts"`
}

type UnitResult struct {
	Unit       ContentUnit        `json:"unit"`
	RecordID   string             `json:"record_id,omitempty"`
	Deployment *Deployment        `json:"deployment,omitempty"`
	Prediction *RevenuePrediction `json:"prediction,omitempty"`
	Stage      string             `json:"stage,omitempty"`
	Error      string             `json:"error,omitempty"`
	Err        error              `json:"-"`
	Duration   time.Duration      `json:"duration"`
}

func (r UnitResult) OK() bool { return r.Err == nil }

type Summary struct {
	TotalGenerated   int            `json:"total_generated"`
	PerCountryCounts map[string]int `json:"per_country_counts"`
	Countries        []string       `json:"countries"`
}

type KeywordStrategy struct {
	Country                string            `json:"country"`
	IsPremiumKeyword       bool              `json:"is_premium_keyword"`
	RecommendedContentType string            `json:"recommended_content_type"`
	MonetizationLevel      MonetizationLevel `json:"monetization_level"`
	ExpectedCompetition    float64           `json:"expected_competition"`
	RevenueMultiplier      float64           `json:"revenue_multiplier"`
	RecommendedAdNetworks  []string          `json:"recommended_ad_networks"`
}

type CountryOverview struct {
	Country          string  `json:"country"`
	MonthlyPotential float64 `json:"monthly_potential"`
	CPM              float64 `json:"cpm"`
	PurchasingPower  float64 `json:"purchasing_power"`
	MarketSize       float64 `json:"market_size"`
	Competition      float64 `json:"competition"`
}

type RevenueInsights struct {
	TotalMarketPotential      float64  `json:"total_market_potential"`
	TopRevenueCountry         string   `json:"top_revenue_country"`
	RecommendedFocusCountries []string `json:"recommended_focus_countries"`
	HighCPMCountries          []string `json:"high_cpm_countries"`
	LowCompetitionCountries   []string `json:"low_competition_countries"`
}

type Trend struct {
	Keyword          string         `json:"keyword"`
	Score            int            `json:"score"`
	CountryRelevance map[string]int `json:"country_relevance"`
	RevenuePotential float64        `json:"revenue_potential"`
	Category         string         `json:"category"`
}
