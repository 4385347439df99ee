package design

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoTitle = errors.New("document has no title")

// Inspection is what a rendered page exposes to crawlers and ad tags.
type Inspection struct {
	Title       string
	Description string
	Lang        string
	Headings    int
	AdSlots     int
	AdTypes     map[string]int
}

// Inspect reads a rendered page back.
func Inspect(html string) (Inspection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Inspection{}, fmt.Errorf("parse html: %w", err)
	}
	in := Inspection{
		Title:       strings.TrimSpace(doc.Find("head title").First().Text()),
		Description: doc.Find(`meta[name="description"]`).AttrOr("content", ""),
		Lang:        doc.Find("html").AttrOr("lang", ""),
		Headings:    doc.Find("article h1, article h2, article h3").Length(),
		AdTypes:     map[string]int{},
	}
	doc.Find("div.ad-slot").Each(func(_ int, s *goquery.Selection) {
		in.AdSlots++
		in.AdTypes[s.AttrOr("data-type", "unknown")]++
	})
	if in.Title == "" {
		return in, ErrNoTitle
	}
	return in, nil
}
