package monetize

import (
	"slices"

	"github.com/AngelCh415/revpipe/internal/models"
)

// Engine is the add-monetization stage of the pipeline.
type Engine struct {
	AssumedViews int
}

func NewEngine(assumedViews int) *Engine {
	if assumedViews <= 0 {
		assumedViews = DefaultAssumedViews
	}
	return &Engine{AssumedViews: assumedViews}
}

// Apply optimizes the content's spots for p and attaches the premium
// keywords, ad networks and a fresh revenue prediction. c is not modified.
func (e *Engine) Apply(c models.GeneratedContent, p models.CountryProfile) models.GeneratedContent {
	p = effective(p)
	c.Spots = Optimize(c.Spots, p)
	c.PremiumKeywords = slices.Clone(p.PremiumKeywords)
	c.RecommendedAdNetworks = slices.Clone(p.AdNetworks)
	pred := Predict(p, e.AssumedViews)
	c.Prediction = &pred
	return c
}
