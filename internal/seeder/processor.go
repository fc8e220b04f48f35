package seeder

import (
	"regexp"
	"strings"
	"unicode"
)

// ContentProcessor handles text cleanup for crawled pages
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	scriptBlocks    *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`[ \t]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		scriptBlocks:    regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>`),
	}
}

// CleanContent strips leftover markup and normalizes whitespace so the
// stored text is usable for history search matching.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.scriptBlocks.ReplaceAllString(content, "")
	content = cp.htmlTags.ReplaceAllString(content, "")
	content = cp.multiWhitespace.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var cleaned []string
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			emptyLines++
			if emptyLines <= 1 {
				cleaned = append(cleaned, "")
			}
		} else {
			emptyLines = 0
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// CountWords counts space-separated words plus individual CJK
// characters, so Chinese pages report sensible sizes.
func (cp *ContentProcessor) CountWords(content string) int {
	count := 0
	inWord := false

	for _, r := range content {
		switch {
		case unicode.Is(unicode.Han, r):
			count++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}
