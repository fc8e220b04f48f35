package omnibox

import (
	"strings"
	"unicode/utf8"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

var (
	videoSites    = []string{"youtube.com", "bilibili.com", "youku.com"}
	shoppingSites = []string{"taobao.com", "jd.com", "tmall.com", "amazon.com"}
	shoppingWords = []string{"购买", "价格", "商品", "添加到购物车", "立即购买", "¥", "$"}
	questionWords = []string{"什么", "为什么", "怎么", "如何", "哪里", "哪个", "谁", "何时", "多少"}
	codeTokens    = []string{"function", "class"}
)

// ContextAwareSuggestionProvider derives suggestions from page-type
// heuristics and from how the input relates to the current page.
type ContextAwareSuggestionProvider struct{}

func NewContextAwareSuggestionProvider() *ContextAwareSuggestionProvider {
	return &ContextAwareSuggestionProvider{}
}

// GenerateContextSuggestions branches on input length: short inputs get
// page-type suggestions, longer inputs get input-relevance suggestions.
// GitHub and related-content extras apply regardless of the branch.
func (p *ContextAwareSuggestionProvider) GenerateContextSuggestions(ctx models.PageContext, input string) []models.Suggestion {
	suggestions := []models.Suggestion{}

	if utf8.RuneCountInString(strings.TrimSpace(input)) < 3 {
		if p.isArticlePage(ctx) {
			suggestions = append(suggestions, p.articleSuggestions(ctx)...)
		}
		if p.isVideoPage(ctx) {
			suggestions = append(suggestions, p.videoSuggestions(ctx)...)
		}
		if p.isShoppingPage(ctx) {
			suggestions = append(suggestions, p.shoppingSuggestions(ctx)...)
		}
	} else {
		suggestions = append(suggestions, p.inputRelatedSuggestions(input, ctx)...)
	}

	if p.isGitHubPage(ctx) {
		suggestions = append(suggestions, p.gitHubSuggestions(ctx)...)
	}

	if input != "" && p.hasRelatedContent(input, ctx) {
		suggestions = append(suggestions, p.relatedContentSuggestions(input)...)
	}

	return suggestions
}

func (p *ContextAwareSuggestionProvider) isArticlePage(ctx models.PageContext) bool {
	return utf8.RuneCountInString(ctx.Content) > 1000 &&
		len(ctx.Headings) > 0 &&
		!p.isVideoPage(ctx)
}

func (p *ContextAwareSuggestionProvider) isVideoPage(ctx models.PageContext) bool {
	for _, site := range videoSites {
		if strings.Contains(ctx.URL, site) {
			return true
		}
	}
	return strings.Contains(ctx.Title, "视频") ||
		strings.Contains(ctx.Content, "播放") ||
		strings.Contains(ctx.Content, "video")
}

func (p *ContextAwareSuggestionProvider) isShoppingPage(ctx models.PageContext) bool {
	for _, site := range shoppingSites {
		if strings.Contains(ctx.URL, site) {
			return true
		}
	}
	for _, word := range shoppingWords {
		if strings.Contains(ctx.Content, word) || strings.Contains(ctx.Title, word) {
			return true
		}
	}
	return false
}

func (p *ContextAwareSuggestionProvider) isGitHubPage(ctx models.PageContext) bool {
	return strings.Contains(ctx.URL, "github.com")
}

// hasRelatedContent is a case-insensitive substring test of the input
// against the page title, content and headings.
func (p *ContextAwareSuggestionProvider) hasRelatedContent(input string, ctx models.PageContext) bool {
	inputLower := strings.ToLower(input)
	if strings.Contains(strings.ToLower(ctx.Content), inputLower) ||
		strings.Contains(strings.ToLower(ctx.Title), inputLower) {
		return true
	}
	for _, h := range ctx.Headings {
		if strings.Contains(strings.ToLower(h), inputLower) {
			return true
		}
	}
	return false
}

func (p *ContextAwareSuggestionProvider) articleSuggestions(ctx models.PageContext) []models.Suggestion {
	return []models.Suggestion{
		{
			ID:          "article-summarize",
			Type:        models.SuggestionAIAnswer,
			Title:       "总结这篇文章",
			Description: "生成文章要点摘要",
			Action:      "summarize:current_page",
			Icon:        "📄",
			Confidence:  0.85,
		},
		{
			ID:          "article-keypoints",
			Type:        models.SuggestionAIAnswer,
			Title:       "提取关键观点",
			Description: "识别文章中的核心观点",
			Action:      "extract_keypoints:current_page",
			Icon:        "🎯",
			Confidence:  0.8,
		},
		{
			ID:          "article-related",
			Type:        models.SuggestionSearch,
			Title:       "搜索相关内容：" + truncateRunes(ctx.Title, 20),
			Description: "查找相关文章和资源",
			Action:      "search:" + ctx.Title,
			Icon:        "🔗",
			Confidence:  0.75,
		},
	}
}

func (p *ContextAwareSuggestionProvider) videoSuggestions(ctx models.PageContext) []models.Suggestion {
	return []models.Suggestion{
		{
			ID:          "video-summarize",
			Type:        models.SuggestionAIAnswer,
			Title:       "总结视频内容",
			Description: "基于视频标题和描述生成摘要",
			Action:      "summarize:current_video",
			Icon:        "🎬",
			Confidence:  0.8,
		},
		{
			ID:          "video-transcript",
			Type:        models.SuggestionCommand,
			Title:       "获取视频字幕",
			Description: "尝试提取视频字幕内容",
			Action:      "get_transcript:current_video",
			Icon:        "📝",
			Confidence:  0.7,
		},
	}
}

func (p *ContextAwareSuggestionProvider) shoppingSuggestions(ctx models.PageContext) []models.Suggestion {
	return []models.Suggestion{
		{
			ID:          "price-compare",
			Type:        models.SuggestionSearch,
			Title:       "比较商品价格",
			Description: "在其他平台查找相同商品",
			Action:      "price_compare:" + ctx.Title,
			Icon:        "💰",
			Confidence:  0.8,
		},
		{
			ID:          "product-reviews",
			Type:        models.SuggestionSearch,
			Title:       "查看商品评价",
			Description: "搜索用户评价和使用体验",
			Action:      "search:" + ctx.Title + " 评价 评测",
			Icon:        "⭐",
			Confidence:  0.75,
		},
	}
}

// inputRelatedSuggestions classifies the input as a question via the
// fixed question-word list or a trailing question mark.
func (p *ContextAwareSuggestionProvider) inputRelatedSuggestions(input string, ctx models.PageContext) []models.Suggestion {
	suggestions := []models.Suggestion{}
	inputLower := strings.ToLower(input)

	isQuestion := strings.Contains(inputLower, "?") || strings.Contains(inputLower, "？")
	if !isQuestion {
		for _, word := range questionWords {
			if strings.Contains(inputLower, word) {
				isQuestion = true
				break
			}
		}
	}

	if isQuestion {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "explain-topic",
			Type:        models.SuggestionAIAnswer,
			Title:       "详细解释：" + input,
			Description: "获得深入的解答和分析",
			Action:      "explain:" + input,
			Icon:        "🧠",
			Confidence:  0.9,
		})

		if p.hasRelatedContent(input, ctx) {
			suggestions = append(suggestions, models.Suggestion{
				ID:          "relate-to-page",
				Type:        models.SuggestionAIAnswer,
				Title:       "结合当前页面回答：" + input,
				Description: "基于页面内容提供相关答案",
				Action:      "ask_with_context:" + input,
				Icon:        "📖",
				Confidence:  0.8,
			})
		}
	} else {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "learn-about",
			Type:        models.SuggestionAIAnswer,
			Title:       "了解更多：" + input,
			Description: "获取相关知识和信息",
			Action:      "learn:" + input,
			Icon:        "📚",
			Confidence:  0.8,
		})
	}

	return suggestions
}

func (p *ContextAwareSuggestionProvider) gitHubSuggestions(ctx models.PageContext) []models.Suggestion {
	suggestions := []models.Suggestion{
		{
			ID:          "github-readme",
			Type:        models.SuggestionAIAnswer,
			Title:       "总结项目说明",
			Description: "解释项目用途和特点",
			Action:      "explain:github_project",
			Icon:        "📚",
			Confidence:  0.8,
		},
	}

	isCodePage := strings.Contains(ctx.URL, "/blob/")
	if !isCodePage {
		for _, token := range codeTokens {
			if strings.Contains(ctx.Content, token) {
				isCodePage = true
				break
			}
		}
	}
	if isCodePage {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "code-explain",
			Type:        models.SuggestionAIAnswer,
			Title:       "解释代码功能",
			Description: "分析代码逻辑和功能",
			Action:      "explain:code",
			Icon:        "💻",
			Confidence:  0.85,
		})
	}

	return suggestions
}

func (p *ContextAwareSuggestionProvider) relatedContentSuggestions(input string) []models.Suggestion {
	return []models.Suggestion{
		{
			ID:          "explain-in-context",
			Type:        models.SuggestionAIAnswer,
			Title:       "在当前页面中解释\"" + input + "\"",
			Description: "基于页面内容解释概念",
			Action:      "explain:" + input + ":current_page",
			Icon:        "💡",
			Confidence:  0.8,
		},
		{
			ID:          "find-in-page",
			Type:        models.SuggestionCommand,
			Title:       "在页面中查找\"" + input + "\"",
			Description: "高亮显示相关内容",
			Action:      "find_in_page:" + input,
			Icon:        "🔍",
			Confidence:  0.75,
		},
	}
}
