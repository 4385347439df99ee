package design

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/AngelCh415/revpipe/internal/models"
)

const fallbackAccent = "#059669"

const page = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="{{.Description}}">
<meta name="theme-color" content="{{.ThemeColor}}">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
{{with .Schema}}<script type="application/ld+json">{{.}}</script>{{end}}
</head>
<body class="layout-{{.Layout}}">
<header class="header"><h1>{{.Title}}</h1></header>
<main class="content">
<article>
{{range .Blocks}}{{if eq .Kind "h1"}}<h1>{{.Text}}</h1>
{{else if eq .Kind "h2"}}<h2>{{.Text}}</h2>
{{else if eq .Kind "h3"}}<h3>{{.Text}}</h3>
{{else if eq .Kind "li"}}<li>{{.Text}}</li>
{{else if eq .Kind "p"}}<p>{{.Text}}</p>
{{end}}{{range .Slots}}<div class="ad-slot" data-type="{{.Type}}" data-position="{{.Position}}" data-placement="{{.Placement}}"{{with .AdSize}} data-ad-size="{{.}}"{{end}}></div>
{{end}}{{end}}</article>
</main>
<footer class="footer"><a class="cta-button" href="#">{{.CTA}}</a></footer>
</body>
</html>
`

type block struct {
	Kind  string
	Text  string
	Slots []models.MonetizationSpot
}

type view struct {
	Lang        string
	Title       string
	Description string
	ThemeColor  string
	CSS         template.CSS
	Schema      map[string]any
	Layout      string
	Blocks      []block
	CTA         string
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("page").Parse(page))}
}

// Config resolves the design of one country. It is computed once per
// country and reused for all of its units.
func Config(country string, p models.CountryProfile) models.DesignConfig {
	return models.DesignConfig{
		Country:  country,
		Profile:  p.Design,
		CSS:      stylesheet(p.Design),
		Language: p.Locale.Language,
	}
}

func stylesheet(d models.Design) string {
	primary, accent := "#1E3A8A", fallbackAccent
	if len(d.PrimaryColors) > 0 {
		primary = d.PrimaryColors[0]
	}
	if len(d.PrimaryColors) > 1 {
		accent = d.PrimaryColors[1]
	}
	radius, shadow := "4px", "0 2px 4px rgba(0,0,0,0.05)"
	if d.CTAStyle == "professional_understated" {
		radius, shadow = "8px", "0 4px 6px rgba(0,0,0,0.1)"
	}
	font := d.FontFamily
	if font == "" {
		font = "sans-serif"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "body { font-family: %s; color: #1F2937; background: #FFFFFF; margin: 0; }\n", font)
	fmt.Fprintf(&b, ".header { background: %s; color: #FFFFFF; padding: 2rem; }\n", primary)
	b.WriteString(".content { padding: 2rem; max-width: 960px; margin: 0 auto; }\n")
	fmt.Fprintf(&b, ".ad-slot { background: %s; min-height: 90px; margin: 1rem 0; border-radius: %s; }\n", accent, radius)
	fmt.Fprintf(&b, ".cta-button { background: %s; color: #FFFFFF; padding: 12px 24px; border-radius: %s; box-shadow: %s; }\n", primary, radius, shadow)
	return b.String()
}

var ctaText = map[string]string{
	"aggressive_bright":        "Get Started Now!",
	"professional_understated": "Learn More",
	"subtle_elegant":           "Discover More",
	"friendly_rounded":         "Let's Get Started",
	"premium_solid":            "Explore Premium Options",
}

// Render merges content into the country page. Spots become ad-slot markers
// after the line they were detected at.
func (r *Renderer) Render(c models.GeneratedContent, cfg models.DesignConfig) (string, error) {
	slots := make(map[int][]models.MonetizationSpot)
	for _, s := range c.Spots {
		slots[s.Position] = append(slots[s.Position], s)
	}
	blocks := make([]block, 0, len(c.Body))
	for i, line := range c.Body {
		kind, text := classify(line)
		blocks = append(blocks, block{Kind: kind, Text: text, Slots: slots[i]})
	}

	cta, ok := ctaText[cfg.Profile.CTAStyle]
	if !ok {
		cta = ctaText["professional_understated"]
	}
	theme := "#1E3A8A"
	if len(cfg.Profile.PrimaryColors) > 0 {
		theme = cfg.Profile.PrimaryColors[0]
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	v := view{
		Lang:        lang,
		Title:       c.Title,
		Description: c.MetaDescription,
		ThemeColor:  theme,
		CSS:         template.CSS(cfg.CSS),
		Schema:      c.SchemaMarkup,
		Layout:      cfg.Profile.Layout,
		Blocks:      blocks,
		CTA:         cta,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render %s: %w", cfg.Country, err)
	}
	return buf.String(), nil
}

func classify(line string) (kind, text string) {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return "", ""
	case strings.HasPrefix(t, "### "):
		return "h3", strings.TrimSpace(t[4:])
	case strings.HasPrefix(t, "## "):
		return "h2", strings.TrimSpace(t[3:])
	case strings.HasPrefix(t, "# "):
		return "h1", strings.TrimSpace(t[2:])
	case strings.HasPrefix(t, "- "), strings.HasPrefix(t, "* "):
		return "li", strings.TrimSpace(t[2:])
	}
	return "p", t
}
