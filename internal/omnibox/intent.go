package omnibox

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

// intentRule binds an action name to its ordered pattern list. Rules are
// evaluated in table order and the first matching pattern wins, so the
// precedence between actions lives entirely in this table.
type intentRule struct {
	action   string
	patterns []*regexp.Regexp
}

var intentRules = []intentRule{
	{"history_search", compileAll(
		`帮我找.*昨天.*的`,
		`找.*之前.*看过的`,
		`上次.*浏览的`,
		`搜索.*历史`,
		`昨天.*访问`,
		`前天.*打开`,
		`最近.*看过`,
	)},
	{"summarize", compileAll(
		`总结.*这个页面`,
		`这篇文章.*要点`,
		`概括.*内容`,
		`摘要`,
		`总结当前页面`,
		`页面摘要`,
	)},
	{"translate", compileAll(
		`翻译.*这个`,
		`把.*翻译成`,
		`.*的中文是什么`,
		`.*用英文怎么说`,
		`翻译成.*语`,
	)},
	{"navigate", compileAll(
		`打开.*`,
		`跳转到.*`,
		`访问.*`,
		`去.*网站`,
		`进入.*`,
	)},
	{"explain", compileAll(
		`解释.*`,
		`什么是.*`,
		`.*是什么意思`,
		`.*怎么理解`,
		`说明.*`,
		`为什么.*`,
		`怎么.*`,
		`如何.*`,
		`哪里.*`,
		`哪个.*`,
		`.*？$`,
		`.*\?$`,
	)},
	{"search", compileAll(
		`搜索.*`,
		`查找.*`,
		`找.*`,
		`.*在哪里`,
		`.*怎么.*`,
	)},
}

var (
	timeModifiers  = []string{"昨天", "今天", "前天", "上周", "最近", "刚才", "之前"}
	topicModifiers = []string{"关于", "有关", "涉及", "相关"}

	bareURLPatterns = compileAll(
		`^https?://`,
		`^[a-zA-Z0-9-]+\.[a-zA-Z]{2,}`,
		`^www\.`,
		`\.com$|\.org$|\.net$|\.cn$|\.io$`,
	)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// IntentClassifier maps raw omnibox input to a typed intent. It is a
// pure function of its input; classifying the same string twice yields
// identical results.
type IntentClassifier struct{}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// Classify applies the classification rules in strict priority order:
// URL detection, the intent rule table, question-mark fallback, default
// search.
func (c *IntentClassifier) Classify(input string) models.QueryIntent {
	normalized := strings.ToLower(strings.TrimSpace(input))

	// 1. URL detection
	if c.isURL(input) {
		return models.QueryIntent{
			Action:     "navigate",
			Target:     input,
			Modifiers:  []string{},
			Confidence: 0.95,
		}
	}

	// 2. Rule table, first match wins
	for _, rule := range intentRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(normalized) {
				return models.QueryIntent{
					Action:     rule.action,
					Target:     c.extractTarget(input, pattern),
					Modifiers:  c.extractModifiers(input),
					Confidence: 0.8,
				}
			}
		}
	}

	// 3. Question mark fallback
	if strings.Contains(input, "？") || strings.Contains(input, "?") {
		return models.QueryIntent{
			Action:     "question",
			Target:     input,
			Modifiers:  c.extractModifiers(input),
			Confidence: 0.7,
		}
	}

	// 4. Default search intent. Deliberately no modifier extraction
	// here: modifiers only accompany a matched rule or the question
	// fallback, never the plain-search default.
	return models.QueryIntent{
		Action:     "search",
		Target:     input,
		Modifiers:  []string{},
		Confidence: 0.5,
	}
}

// isURL reports whether the input is an absolute URL or looks like a
// bare domain. Inputs containing whitespace never qualify for the bare
// domain heuristics.
func (c *IntentClassifier) isURL(input string) bool {
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		return true
	}

	if strings.ContainsAny(input, " \t\n") {
		return false
	}
	for _, pattern := range bareURLPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// extractTarget removes the matched pattern span from the input. If
// nothing remains, the full input is the target.
func (c *IntentClassifier) extractTarget(input string, pattern *regexp.Regexp) string {
	cleaned := strings.TrimSpace(pattern.ReplaceAllString(input, ""))
	if cleaned == "" {
		return input
	}
	return cleaned
}

// extractModifiers scans the input for time and topic markers. Encounter
// order follows the fixed word lists; duplicates are not suppressed.
func (c *IntentClassifier) extractModifiers(input string) []string {
	modifiers := []string{}

	for _, mod := range timeModifiers {
		if strings.Contains(input, mod) {
			modifiers = append(modifiers, "time:"+mod)
		}
	}

	for _, mod := range topicModifiers {
		if strings.Contains(input, mod) {
			modifiers = append(modifiers, "topic:"+mod)
		}
	}

	if strings.Contains(input, "AI") || strings.Contains(input, "人工智能") {
		modifiers = append(modifiers, "topic:AI")
	}

	return modifiers
}

// DetermineQueryType maps an intent's action to the query type. Unknown
// actions fall back to search.
func (c *IntentClassifier) DetermineQueryType(intent models.QueryIntent) models.QueryType {
	switch intent.Action {
	case "navigate":
		return models.QueryTypeURL
	case "history_search":
		return models.QueryTypeHistorySearch
	case "summarize", "translate":
		return models.QueryTypeCommand
	case "explain", "question":
		return models.QueryTypeQuestion
	default:
		return models.QueryTypeSearch
	}
}
