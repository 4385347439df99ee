// Package generate produces draft content for one work unit, either from the
// Gemini REST API or from a local simulator when no API key is configured.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/utils"
)

// Generator drafts the content of one unit. Any error fails the unit.
type Generator interface {
	Generate(ctx context.Context, u models.ContentUnit, p models.CountryProfile) (models.GeneratedContent, error)
}

const DefaultGeminiURL = "https://generativelanguage.googleapis.com"

var ErrNoAPIKey = errors.New("gemini api key is required")

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiGenerator struct {
	cfg     GeminiConfig
	client  HTTPClient
	backoff utils.Backoff
	now     func() time.Time
}

func NewGemini(cfg GeminiConfig, client HTTPClient) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiGenerator{
		cfg:     cfg,
		client:  client,
		backoff: utils.NewBackoff(200*time.Millisecond, 2),
		now:     time.Now,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r geminiResponse) text() string {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

func (g *GeminiGenerator) Generate(ctx context.Context, u models.ContentUnit, p models.CountryProfile) (models.GeneratedContent, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(u, p)}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 2048,
		},
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	h := http.Header{}
	h.Set("x-goog-api-key", g.cfg.APIKey)

	var resp geminiResponse
	if err := postJSONWithRetry(ctx, g.client, g.backoff, url, h, req, &resp); err != nil {
		return models.GeneratedContent{}, fmt.Errorf("gemini generate %s/%s: %w", u.Country, u.Keyword, err)
	}
	text := resp.text()
	if strings.TrimSpace(text) == "" {
		return Fallback(u, p, g.now()), nil
	}
	return Parse(text, u, p, g.now()), nil
}
