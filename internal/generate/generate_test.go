package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/utils"
)

var unit = models.ContentUnit{Keyword: "investment apps", Country: "USA", ContentType: "guide", MonetizationLevel: models.LevelHigh}

func usa(t *testing.T) models.CountryProfile {
	t.Helper()
	p, ok := profiles.Embedded().Get("USA")
	if !ok {
		t.Fatal("missing USA profile")
	}
	return p
}

func newTestGemini(t *testing.T, url string, timeout time.Duration) *GeminiGenerator {
	t.Helper()
	g, err := NewGemini(GeminiConfig{APIKey: "k", BaseURL: url + "/"}, NewHTTPClient(timeout))
	if err != nil {
		t.Fatal(err)
	}
	g.backoff = utils.NewBackoff(time.Millisecond, 2)
	g.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return g
}

func reply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}}},
	})
}

func TestGeminiGenerateParsesReply(t *testing.T) {
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-pro:generateContent" || r.Header.Get("x-goog-api-key") != "k" {
			http.Error(w, "bad route", http.StatusBadRequest)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		reply(w, "# Best Investment Apps\n## Top product picks\nA great tool for you\n")
	}))
	defer srv.Close()

	c, err := newTestGemini(t, srv.URL, time.Second).Generate(context.Background(), unit, usa(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if c.Title != "Best Investment Apps" || len(c.Body) != 3 {
		t.Fatalf("unexpected content: %+v", c)
	}
	if len(c.Spots) != 2 {
		t.Fatalf("spots = %+v", c.Spots)
	}
	if c.Metadata.Country != "USA" || c.Metadata.Language != "en-US" || c.Metadata.GeneratedAt.Year() != 2024 {
		t.Fatalf("metadata = %+v", c.Metadata)
	}
	if gotReq.GenerationConfig.TopK != 40 || gotReq.GenerationConfig.MaxOutputTokens != 2048 {
		t.Fatalf("generation config = %+v", gotReq.GenerationConfig)
	}
	if !strings.Contains(gotReq.Contents[0].Parts[0].Text, "5-6 monetization opportunities") {
		t.Fatal("prompt missing level instruction")
	}
}

func TestGeminiRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		reply(w, "# Title\nbody")
	}))
	defer srv.Close()

	if _, err := newTestGemini(t, srv.URL, time.Second).Generate(context.Background(), unit, usa(t)); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestGeminiDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL, time.Second).Generate(context.Background(), unit, usa(t))
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestGeminiTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		reply(w, "late")
	}))
	defer srv.Close()

	if _, err := newTestGemini(t, srv.URL, 20*time.Millisecond).Generate(context.Background(), unit, usa(t)); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGeminiEmptyReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reply(w, "  ") }))
	defer srv.Close()

	c, err := newTestGemini(t, srv.URL, time.Second).Generate(context.Background(), unit, usa(t))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Metadata.Fallback || c.Title != "Guide to Investment Apps in USA" || c.SEOScore != 60 {
		t.Fatalf("fallback = %+v", c)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(GeminiConfig{}, NewHTTPClient(time.Second)); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseMetaAndTags(t *testing.T) {
	lines := []string{"## How to pick the best broker"}
	for i := 0; i < 9; i++ {
		lines = append(lines, "filler line")
	}
	lines = append(lines, "This closing paragraph is a review of the top tips", "for every reader who wants a clear guide", "# to investing well")
	c := Parse(strings.Join(lines, "\n"), unit, usa(t), time.Now())

	if c.Title != "How to pick the best broker" {
		t.Fatalf("title = %q", c.Title)
	}
	if !strings.HasSuffix(c.MetaDescription, "...") || strings.Contains(c.MetaDescription, "#") {
		t.Fatalf("meta = %q", c.MetaDescription)
	}
	want := []string{"guide", "review", "tips", "best", "top", "how"}
	if strings.Join(c.Tags, ",") != strings.Join(want, ",") {
		t.Fatalf("tags = %v", c.Tags)
	}

	short := Parse("Plain title\nbody", unit, usa(t), time.Now())
	if short.MetaDescription != "Expert guide about plain title" {
		t.Fatalf("short meta = %q", short.MetaDescription)
	}
}

func TestSEOScore(t *testing.T) {
	p := models.CountryProfile{Writing: models.Writing{AvgWordCount: 10, HighValueKeywords: []string{"best", "top", "review", "guide"}}}
	// 10 words, three '#', best+top+review present; guide is past the first three
	text := "# a ## b best top review guide x y"
	if got := SEOScore(text, p); got != 50+15+10+15 {
		t.Fatalf("score = %d", got)
	}
	if got := SEOScore("nothing", p); got != 65 {
		t.Fatalf("score = %d", got)
	}
}

func TestEstimatedRevenue(t *testing.T) {
	p := models.CountryProfile{CPM: 10, Writing: models.Writing{HighValueKeywords: []string{"best", "money"}}}
	if got := EstimatedRevenue("Best money apps", p); got != 16 {
		t.Fatalf("revenue = %v, want 16", got)
	}
	if got := EstimatedRevenue("plain", p); got != 10 {
		t.Fatalf("revenue = %v, want 10", got)
	}
}

func TestSimulatorProducesDetectableContent(t *testing.T) {
	s := NewSimulator(7)
	c, err := s.Generate(context.Background(), unit, usa(t))
	if err != nil {
		t.Fatal(err)
	}
	if c.SEOScore < 75 || c.SEOScore > 95 {
		t.Fatalf("seo score = %d", c.SEOScore)
	}
	if !strings.HasPrefix(c.Body[0], "# ") || strings.TrimPrefix(c.Body[0], "# ") != c.Title {
		t.Fatalf("title/body mismatch: %q vs %q", c.Title, c.Body[0])
	}
	var display, affiliate, comparison int
	for _, sp := range c.Spots {
		switch sp.Type {
		case models.SpotDisplayAd:
			display++
		case models.SpotAffiliateLink:
			affiliate++
		case models.SpotComparisonTable:
			comparison++
		}
		if sp.Position < 0 || sp.Position >= len(c.Body) {
			t.Fatalf("spot out of range: %+v", sp)
		}
	}
	if display == 0 || affiliate == 0 || comparison == 0 {
		t.Fatalf("spots = %+v", c.Spots)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Generate(ctx, unit, usa(t)); err == nil {
		t.Fatal("expected context error")
	}
}

func TestBuildPromptFallbacks(t *testing.T) {
	u := models.ContentUnit{Keyword: "k", Country: "X", ContentType: "poem", MonetizationLevel: "weird"}
	got := BuildPrompt(u, profiles.Default())
	if !strings.Contains(got, "engaging article specifically for X") || !strings.Contains(got, "5-6 monetization") {
		t.Fatalf("prompt = %s", got)
	}
}
