package omnibox

import (
	"strings"
	"testing"
	"time"

	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleContext() models.PageContext {
	return models.PageContext{
		URL:       "https://blog.example.com/post",
		Title:     "深入理解 JavaScript 闭包",
		Content:   strings.Repeat("闭包是函数和其词法环境的组合。", 100),
		Headings:  []string{"什么是闭包", "闭包的应用"},
		Links:     []string{},
		Timestamp: time.Now(),
	}
}

func findSuggestion(suggestions []models.Suggestion, id string) *models.Suggestion {
	for i := range suggestions {
		if suggestions[i].ID == id {
			return &suggestions[i]
		}
	}
	return nil
}

func TestGenerateContextSuggestions_ArticlePageShortInput(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	suggestions := provider.GenerateContextSuggestions(articleContext(), "")

	summarize := findSuggestion(suggestions, "article-summarize")
	require.NotNil(t, summarize)
	assert.Equal(t, models.SuggestionAIAnswer, summarize.Type)
	assert.Equal(t, 0.85, summarize.Confidence)

	keypoints := findSuggestion(suggestions, "article-keypoints")
	require.NotNil(t, keypoints)
	assert.Equal(t, 0.8, keypoints.Confidence)

	related := findSuggestion(suggestions, "article-related")
	require.NotNil(t, related)
	assert.Equal(t, models.SuggestionSearch, related.Type)
	assert.Equal(t, 0.75, related.Confidence)
}

func TestGenerateContextSuggestions_VideoPageIsNotArticle(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	ctx := articleContext()
	ctx.URL = "https://www.youtube.com/watch?v=abc"

	suggestions := provider.GenerateContextSuggestions(ctx, "")

	assert.Nil(t, findSuggestion(suggestions, "article-summarize"))
	require.NotNil(t, findSuggestion(suggestions, "video-summarize"))
	require.NotNil(t, findSuggestion(suggestions, "video-transcript"))
}

func TestGenerateContextSuggestions_ShoppingPage(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	ctx := models.PageContext{
		URL:     "https://item.jd.com/12345.html",
		Title:   "某商品",
		Content: "立即购买",
	}

	suggestions := provider.GenerateContextSuggestions(ctx, "")

	require.NotNil(t, findSuggestion(suggestions, "price-compare"))
	require.NotNil(t, findSuggestion(suggestions, "product-reviews"))
}

func TestGenerateContextSuggestions_QuestionInput(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	suggestions := provider.GenerateContextSuggestions(articleContext(), "什么是闭包？")

	explain := findSuggestion(suggestions, "explain-topic")
	require.NotNil(t, explain)
	assert.Equal(t, "详细解释：什么是闭包？", explain.Title)
	assert.Equal(t, 0.9, explain.Confidence)

	// relate-to-page needs the whole input as a substring of the page
	// content; the trailing question mark breaks the overlap here
	assert.Nil(t, findSuggestion(suggestions, "relate-to-page"))
}

func TestGenerateContextSuggestions_QuestionWithPageOverlap(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	suggestions := provider.GenerateContextSuggestions(articleContext(), "什么是闭包")

	relate := findSuggestion(suggestions, "relate-to-page")
	require.NotNil(t, relate)
	assert.Equal(t, 0.8, relate.Confidence)
	assert.Equal(t, "ask_with_context:什么是闭包", relate.Action)
}

func TestGenerateContextSuggestions_NonQuestionInput(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	suggestions := provider.GenerateContextSuggestions(models.PageContext{}, "golang")

	learn := findSuggestion(suggestions, "learn-about")
	require.NotNil(t, learn)
	assert.Equal(t, "了解更多：golang", learn.Title)
	assert.Equal(t, 0.8, learn.Confidence)
}

func TestGenerateContextSuggestions_GitHubPage(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	ctx := models.PageContext{
		URL:     "https://github.com/owner/repo",
		Title:   "owner/repo",
		Content: "A project readme",
	}

	suggestions := provider.GenerateContextSuggestions(ctx, "")

	require.NotNil(t, findSuggestion(suggestions, "github-readme"))
	assert.Nil(t, findSuggestion(suggestions, "code-explain"))
}

func TestGenerateContextSuggestions_GitHubCodePage(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	ctx := models.PageContext{
		URL:     "https://github.com/owner/repo/blob/main/index.js",
		Content: "export default thing",
	}

	suggestions := provider.GenerateContextSuggestions(ctx, "")

	codeExplain := findSuggestion(suggestions, "code-explain")
	require.NotNil(t, codeExplain)
	assert.Equal(t, 0.85, codeExplain.Confidence)
}

func TestGenerateContextSuggestions_RelatedContentExtras(t *testing.T) {
	provider := NewContextAwareSuggestionProvider()

	suggestions := provider.GenerateContextSuggestions(articleContext(), "闭包")

	inContext := findSuggestion(suggestions, "explain-in-context")
	require.NotNil(t, inContext)
	assert.Equal(t, 0.8, inContext.Confidence)

	findInPage := findSuggestion(suggestions, "find-in-page")
	require.NotNil(t, findInPage)
	assert.Equal(t, models.SuggestionCommand, findInPage.Type)
	assert.Equal(t, 0.75, findInPage.Confidence)
}
