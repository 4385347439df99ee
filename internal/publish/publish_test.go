package publish

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
)

const page = `<!DOCTYPE html><html lang="en-US"><head><title>Hello</title></head><body><article><h2>x</h2></article></body></html>`

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSimulatedPublish(t *testing.T) {
	reg := NewMemoryRegistry()
	p := NewVercel(VercelConfig{}, http.DefaultClient, reg, quietLogger())
	d := p.Publish(context.Background(), page, "United Kingdom")
	if d.Status != models.DeploySuccess || d.Domain != "united-kingdom-blog.vercel.app" || !strings.HasPrefix(d.DeploymentID, "dpl_") {
		t.Fatalf("deployment = %+v", d)
	}
	sites, _ := p.Sites(context.Background())
	if sites["United Kingdom"].DeploymentID != d.DeploymentID {
		t.Fatalf("registry = %+v", sites)
	}
}

func TestPublishRejectsInvalidBundle(t *testing.T) {
	reg := NewMemoryRegistry()
	d := NewVercel(VercelConfig{}, http.DefaultClient, reg, quietLogger()).Publish(context.Background(), "<p>no title</p>", "USA")
	if d.Status != models.DeployFailed || d.Error == "" {
		t.Fatalf("deployment = %+v", d)
	}
	if sites, _ := reg.Sites(context.Background()); len(sites) != 0 {
		t.Fatalf("failed deploy was registered: %+v", sites)
	}
}

func TestHTTPPublish(t *testing.T) {
	var got deployRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v13/deployments" || r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]string{"id": "dpl_123", "url": "x.vercel.app"})
	}))
	defer srv.Close()

	p := NewVercel(VercelConfig{Token: "tok", APIURL: srv.URL}, &http.Client{Timeout: time.Second}, nil, quietLogger())
	d := p.Publish(context.Background(), page, "Japan")
	if d.Status != models.DeploySuccess || d.DeploymentID != "dpl_123" || d.Domain != "japan-blog.vercel.app" {
		t.Fatalf("deployment = %+v", d)
	}
	if got.Name != "global-blog-japan" || len(got.Files) != 2 || got.Files[1].File != "vercel.json" {
		t.Fatalf("request = %+v", got)
	}
	var cfg VercelJSON
	if err := json.Unmarshal([]byte(got.Files[1].Data), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Version != 2 || cfg.Routes[0].Dest != "/index.html" || cfg.Headers[0].Headers[0].Value != "DENY" {
		t.Fatalf("vercel.json = %+v", cfg)
	}
}

func TestHTTPPublishFailureIsRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	d := NewVercel(VercelConfig{Token: "tok", APIURL: srv.URL}, http.DefaultClient, nil, quietLogger()).Publish(context.Background(), page, "Korea")
	if d.Status != models.DeployFailed || !strings.Contains(d.Error, "402") {
		t.Fatalf("deployment = %+v", d)
	}
}

func TestDecodeSites(t *testing.T) {
	raw, _ := json.Marshal(models.Deployment{Country: "USA", Domain: "usa-blog.vercel.app", Status: models.DeploySuccess})
	got, err := decodeSites(map[string]string{"USA": string(raw)})
	if err != nil || got["USA"].Domain != "usa-blog.vercel.app" {
		t.Fatalf("got %+v err %v", got, err)
	}
	if _, err := decodeSites(map[string]string{"USA": "{"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisRegistry(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	reg := NewRedisRegistry(client)
	reg.key = "revpipe:test:sites"
	defer client.Del(ctx, reg.key)

	if err := reg.Record(ctx, models.Deployment{Country: "Canada", Domain: Domain("Canada"), Status: models.DeploySuccess}); err != nil {
		t.Fatal(err)
	}
	sites, err := reg.Sites(ctx)
	if err != nil || sites["Canada"].Domain != "canada-blog.vercel.app" {
		t.Fatalf("sites = %+v err %v", sites, err)
	}
}
