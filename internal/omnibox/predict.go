package omnibox

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

var techKeywords = []string{
	"API", "JavaScript", "Python", "React", "Vue", "Node.js",
	"Docker", "Kubernetes", "AWS", "算法", "数据结构", "机器学习",
	"AI", "人工智能", "深度学习", "神经网络",
}

var actionTitles = map[string]string{
	"search:github":  "搜索 GitHub",
	"open:email":     "打开邮箱",
	"search:news":    "查看新闻",
	"open:calendar":  "打开日历",
	"search:weather": "查看天气",
}

var actionIcons = map[string]string{
	"search:github":  "📂",
	"open:email":     "📧",
	"search:news":    "📰",
	"open:calendar":  "📅",
	"search:weather": "🌤️",
}

// PredictionEngine produces candidate suggestions from a bound user
// behavior model. The clock is injectable so the time-of-day generator
// is testable; it defaults to the wall clock.
type PredictionEngine struct {
	userModel models.UserBehaviorModel
	now       func() time.Time
}

func NewPredictionEngine(userModel models.UserBehaviorModel) *PredictionEngine {
	return &PredictionEngine{
		userModel: userModel,
		now:       time.Now,
	}
}

// PredictNext runs the four generators and merges their output:
// dedupe by title, sort by confidence descending, cap at 6.
func (e *PredictionEngine) PredictNext(input string, ctx models.PageContext) []models.Suggestion {
	predictions := []models.Suggestion{}

	predictions = append(predictions, e.predictByPrefix(input)...)
	predictions = append(predictions, e.predictByTime()...)
	predictions = append(predictions, e.predictByContext(ctx)...)
	predictions = append(predictions, e.predictByFrequency(input)...)

	return e.rankAndDedupe(predictions)
}

// predictByPrefix matches frequent queries by case-insensitive prefix,
// preserving model order.
func (e *PredictionEngine) predictByPrefix(input string) []models.Suggestion {
	if utf8.RuneCountInString(input) < 2 {
		return nil
	}

	inputLower := strings.ToLower(input)
	suggestions := []models.Suggestion{}
	for _, query := range e.userModel.FrequentQueries {
		if !strings.HasPrefix(strings.ToLower(query), inputLower) {
			continue
		}
		index := len(suggestions)
		suggestions = append(suggestions, models.Suggestion{
			ID:          fmt.Sprintf("prefix-%s-%d", query, index),
			Type:        models.SuggestionSearch,
			Title:       query,
			Description: "基于历史查询",
			Action:      "search:" + query,
			Icon:        "🔍",
			Confidence:  0.7 - float64(index)*0.1,
		})
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

// predictByTime picks the first habit whose inclusive hour range
// contains the current hour and emits up to two of its actions.
func (e *PredictionEngine) predictByTime() []models.Suggestion {
	currentHour := e.now().Hour()

	var habit *models.TimeBasedHabit
	for i := range e.userModel.TimeBasedHabits {
		h := &e.userModel.TimeBasedHabits[i]
		if currentHour >= h.TimeRange[0] && currentHour <= h.TimeRange[1] {
			habit = h
			break
		}
	}
	if habit == nil {
		return nil
	}

	actions := habit.CommonActions
	if len(actions) > 2 {
		actions = actions[:2]
	}

	suggestions := make([]models.Suggestion, 0, len(actions))
	for index, action := range actions {
		suggestions = append(suggestions, models.Suggestion{
			ID:          fmt.Sprintf("time-%s-%d", action, index),
			Type:        models.SuggestionCommand,
			Title:       e.formatActionTitle(action),
			Description: fmt.Sprintf("%d点常用操作", currentHour),
			Action:      action,
			Icon:        e.actionIcon(action),
			Confidence:  0.6 - float64(index)*0.1,
		})
	}
	return suggestions
}

// predictByContext inspects the current page: long pages suggest a
// summary, technical pages an explanation, foreign-language pages a
// translation.
func (e *PredictionEngine) predictByContext(ctx models.PageContext) []models.Suggestion {
	suggestions := []models.Suggestion{}

	if utf8.RuneCountInString(ctx.Content) > 1000 {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "context-summarize",
			Type:        models.SuggestionAIAnswer,
			Title:       "总结这个页面",
			Description: "使用 AI 生成页面摘要",
			Action:      "summarize:current_page",
			Icon:        "📝",
			Confidence:  0.8,
		})
	}

	if e.isTechnicalContent(ctx) {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "context-explain",
			Type:        models.SuggestionAIAnswer,
			Title:       "解释技术概念",
			Description: "用简单语言解释页面中的技术内容",
			Action:      "explain:current_page",
			Icon:        "💡",
			Confidence:  0.75,
		})
	}

	if e.isForeignLanguage(ctx) {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "context-translate",
			Type:        models.SuggestionAIAnswer,
			Title:       "翻译页面内容",
			Description: "将页面翻译成中文",
			Action:      "translate:current_page:zh",
			Icon:        "🌐",
			Confidence:  0.7,
		})
	}

	return suggestions
}

// predictByFrequency matches patterns whose text and the input are
// mutual case-insensitive substrings, most frequent first.
func (e *PredictionEngine) predictByFrequency(input string) []models.Suggestion {
	if input == "" {
		return nil
	}

	inputLower := strings.ToLower(input)
	matched := []models.QueryPattern{}
	for _, pattern := range e.userModel.CommonPatterns {
		patternLower := strings.ToLower(pattern.Pattern)
		if strings.Contains(patternLower, inputLower) || strings.Contains(inputLower, patternLower) {
			matched = append(matched, pattern)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Frequency > matched[j].Frequency
	})
	if len(matched) > 2 {
		matched = matched[:2]
	}

	suggestions := make([]models.Suggestion, 0, len(matched))
	for index, pattern := range matched {
		confidence := pattern.SuccessRate + 0.1
		if confidence > 0.9 {
			confidence = 0.9
		}
		suggestions = append(suggestions, models.Suggestion{
			ID:          fmt.Sprintf("frequency-%s-%d", pattern.Pattern, index),
			Type:        models.SuggestionSearch,
			Title:       pattern.Pattern,
			Description: fmt.Sprintf("使用频率 %d 次", pattern.Frequency),
			Action:      "search:" + pattern.Pattern,
			Icon:        "📊",
			Confidence:  confidence,
		})
	}
	return suggestions
}

// rankAndDedupe keeps the first occurrence per title, sorts by
// confidence descending with insertion order as the tie break, and
// caps the result at 6.
func (e *PredictionEngine) rankAndDedupe(suggestions []models.Suggestion) []models.Suggestion {
	seen := make(map[string]bool, len(suggestions))
	unique := []models.Suggestion{}
	for _, s := range suggestions {
		if seen[s.Title] {
			continue
		}
		seen[s.Title] = true
		unique = append(unique, s)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})

	if len(unique) > 6 {
		unique = unique[:6]
	}
	return unique
}

func (e *PredictionEngine) isTechnicalContent(ctx models.PageContext) bool {
	content := strings.ToLower(ctx.Content)
	title := strings.ToLower(ctx.Title)

	for _, keyword := range techKeywords {
		kw := strings.ToLower(keyword)
		if strings.Contains(content, kw) || strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// isForeignLanguage treats content with a Chinese-character ratio below
// 30% as foreign. Pages under 100 chars are too short to judge.
func (e *PredictionEngine) isForeignLanguage(ctx models.PageContext) bool {
	totalChars := utf8.RuneCountInString(ctx.Content)
	if totalChars < 100 {
		return false
	}

	chineseChars := 0
	for _, r := range ctx.Content {
		if r >= 0x4e00 && r <= 0x9fa5 {
			chineseChars++
		}
	}

	return float64(chineseChars)/float64(totalChars) < 0.3
}

func (e *PredictionEngine) formatActionTitle(action string) string {
	if title, ok := actionTitles[action]; ok {
		return title
	}
	return action
}

func (e *PredictionEngine) actionIcon(action string) string {
	if icon, ok := actionIcons[action]; ok {
		return icon
	}
	return "⚡"
}
