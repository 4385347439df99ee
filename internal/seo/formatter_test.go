package seo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abcdefghijk", 10); got != "abcdefg..." {
		t.Fatalf("got %q", got)
	}
	jp := strings.Repeat("日本", 20)
	got := Truncate(jp, 30)
	if r := []rune(got); len(r) != 30 || !strings.HasSuffix(got, "...") {
		t.Fatalf("rune-safe truncate failed: %q", got)
	}
}

func TestFormatAppliesLocale(t *testing.T) {
	f := NewFormatter()
	f.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	jp, _ := profiles.Embedded().Get("Japan")

	in := models.GeneratedContent{
		Title:           strings.Repeat("x", 40),
		MetaDescription: "short meta",
		Body:            []string{"a"},
		Metadata:        models.ContentMetadata{Keyword: "投資"},
	}
	out, err := f.Format(in, "Japan", jp)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Title) != 30 || !strings.HasSuffix(out.Title, "...") {
		t.Fatalf("title = %q", out.Title)
	}
	if out.MetaDescription != "short meta" {
		t.Fatalf("meta = %q", out.MetaDescription)
	}
	if strings.Join(out.OptimizedKeywords, ",") != "投資,日本,ジャパン" {
		t.Fatalf("keywords = %v", out.OptimizedKeywords)
	}
	if out.SchemaMarkup["inLanguage"] != "ja" || out.SchemaMarkup["headline"] != out.Title || out.SchemaMarkup["datePublished"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("schema = %+v", out.SchemaMarkup)
	}
	author := out.SchemaMarkup["author"].(map[string]any)
	if author["name"] != "Global Blog Japan" {
		t.Fatalf("author = %+v", author)
	}
	if in.OptimizedKeywords != nil || len(in.Title) != 40 {
		t.Fatal("input mutated")
	}
}

func TestFormatFallsBackOnBadLimits(t *testing.T) {
	in := models.GeneratedContent{Title: "keep me"}
	out, err := NewFormatter().Format(in, "X", models.CountryProfile{})
	if !errors.Is(err, ErrInvalidLimits) {
		t.Fatalf("err = %v", err)
	}
	if out.Title != "keep me" || out.SchemaMarkup != nil {
		t.Fatalf("expected untouched input, got %+v", out)
	}
}

func TestInLanguage(t *testing.T) {
	cases := map[string]string{"en-US": "en", "de-DE": "de", "ko-KR": "ko", "": "auto", "!!": "auto"}
	for in, want := range cases {
		if got := InLanguage(in); got != want {
			t.Errorf("InLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
