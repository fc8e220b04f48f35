package omnibox

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/omnibar-app/omnibar/backend/internal/models"
)

const (
	maxContentChars = 5000
	maxHeadings     = 20
	maxLinks        = 50
)

// Preferred containers for the main page content, tried in order.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	".post",
	".article-body",
	".entry-content",
	"#content",
	".main-content",
}

// Regions stripped from the body when no content container matches.
var excludeSelectors = []string{
	"nav", "header", "footer", "aside",
	".nav", ".header", ".footer", ".sidebar",
	".navigation", ".menu", ".ads", ".advertisement",
}

// ContextAnalyzer builds a PageContext snapshot from a raw HTML page.
// It is pure given a snapshot: no state is kept between calls.
type ContextAnalyzer struct{}

func NewContextAnalyzer() *ContextAnalyzer {
	return &ContextAnalyzer{}
}

// EmptyContext is the all-empty snapshot used when no page is
// available. Returned instead of failing in non-interactive contexts.
func (a *ContextAnalyzer) EmptyContext() models.PageContext {
	return models.PageContext{
		URL:       "",
		Title:     "",
		Content:   "",
		Headings:  []string{},
		Links:     []string{},
		Timestamp: time.Now(),
	}
}

// AnalyzeHTML extracts a PageContext from an HTML snapshot. Malformed
// markup degrades to the empty context rather than an error.
func (a *ContextAnalyzer) AnalyzeHTML(pageURL, html string) models.PageContext {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		ctx := a.EmptyContext()
		ctx.URL = pageURL
		return ctx
	}

	return models.PageContext{
		URL:       pageURL,
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Content:   a.extractMainContent(doc),
		Headings:  a.extractHeadings(doc),
		Links:     a.extractLinks(doc),
		Timestamp: time.Now(),
	}
}

// extractMainContent tries the preferred content selectors first, then
// falls back to the body with navigation regions removed.
func (a *ContextAnalyzer) extractMainContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return truncateRunes(text, maxContentChars)
			}
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	clone := body.Clone()
	for _, selector := range excludeSelectors {
		clone.Find(selector).Remove()
	}

	return truncateRunes(strings.TrimSpace(clone.Text()), maxContentChars)
}

func (a *ContextAnalyzer) extractHeadings(doc *goquery.Document) []string {
	headings := []string{}
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			headings = append(headings, text)
		}
		return len(headings) < maxHeadings
	})
	return headings
}

func (a *ContextAnalyzer) extractLinks(doc *goquery.Document) []string {
	links := []string{}
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if ok && (strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")) {
			links = append(links, href)
		}
		return len(links) < maxLinks
	})
	return links
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
