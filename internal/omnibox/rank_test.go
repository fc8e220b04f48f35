package omnibox

import (
	"fmt"
	"testing"

	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchEngineCandidates() []models.Suggestion {
	return []models.Suggestion{
		{ID: "search-google", Type: models.SuggestionSearch, Title: "在 Google 搜索", Action: "open:google", Confidence: 0.6},
		{ID: "search-bing", Type: models.SuggestionSearch, Title: "在 Bing 搜索", Action: "open:bing", Confidence: 0.55},
		{ID: "search-baidu", Type: models.SuggestionSearch, Title: "在 百度 搜索", Action: "open:baidu", Confidence: 0.5},
	}
}

func TestRankAndLimit_DedupesByTitleAndAction(t *testing.T) {
	candidates := []models.Suggestion{
		{ID: "a", Type: models.SuggestionCommand, Title: "same", Action: "do:x", Confidence: 0.9},
		{ID: "b", Type: models.SuggestionCommand, Title: "same", Action: "do:x", Confidence: 0.5},
		{ID: "c", Type: models.SuggestionCommand, Title: "same", Action: "do:y", Confidence: 0.4},
	}

	result := RankAndLimit(candidates)

	require.Len(t, result, 2)
	assert.Equal(t, "a", result[0].ID) // first occurrence wins
	assert.Equal(t, "c", result[1].ID)
}

func TestRankAndLimit_AIAnswerLeads(t *testing.T) {
	candidates := append(searchEngineCandidates(),
		models.Suggestion{ID: "ai-1", Type: models.SuggestionAIAnswer, Title: "AI 回答：x", Action: "ask:x", Confidence: 0.9},
		models.Suggestion{ID: "ai-2", Type: models.SuggestionAIAnswer, Title: "详细解释：x", Action: "explain:x", Confidence: 0.95},
	)

	result := RankAndLimit(candidates)

	// The highest-confidence AI answer leads; the spare one lands after
	// the fixed buckets.
	assert.Equal(t, "ai-2", result[0].ID)
	last := result[len(result)-1]
	assert.Equal(t, "ai-1", last.ID)
}

func TestRankAndLimit_SearchEngineDiversity(t *testing.T) {
	// Flood with higher-confidence candidates of other types; Google and
	// Bing must still survive.
	candidates := searchEngineCandidates()
	for i := 0; i < 6; i++ {
		candidates = append(candidates, models.Suggestion{
			ID:         fmt.Sprintf("hist-%d", i),
			Type:       models.SuggestionHistory,
			Title:      fmt.Sprintf("history %d", i),
			Action:     fmt.Sprintf("open:h%d", i),
			Confidence: 0.99,
		})
	}

	result := RankAndLimit(candidates)

	assert.LessOrEqual(t, len(result), MaxSuggestions)
	assert.NotNil(t, findSuggestionByTitle(result, "在 Google 搜索"))
	assert.NotNil(t, findSuggestionByTitle(result, "在 Bing 搜索"))

	// History is a two-item bucket regardless of confidence.
	histCount := 0
	for _, s := range result {
		if s.Type == models.SuggestionHistory {
			histCount++
		}
	}
	assert.Equal(t, 2, histCount)
}

func TestRankAndLimit_BaiduOnlyWhileShort(t *testing.T) {
	// One AI answer plus Google/Bing leaves the list at 3, so Baidu
	// still fits.
	candidates := append(searchEngineCandidates(),
		models.Suggestion{ID: "ai-1", Type: models.SuggestionAIAnswer, Title: "AI 回答：x", Action: "ask:x", Confidence: 0.9},
	)

	result := RankAndLimit(candidates)
	assert.NotNil(t, findSuggestionByTitle(result, "在 百度 搜索"))
}

func TestRankAndLimit_CapAndUniqueness(t *testing.T) {
	candidates := searchEngineCandidates()
	for i := 0; i < 5; i++ {
		candidates = append(candidates,
			models.Suggestion{ID: fmt.Sprintf("h-%d", i), Type: models.SuggestionHistory, Title: fmt.Sprintf("h%d", i), Action: fmt.Sprintf("open:h%d", i), Confidence: 0.8},
			models.Suggestion{ID: fmt.Sprintf("c-%d", i), Type: models.SuggestionCommand, Title: fmt.Sprintf("c%d", i), Action: fmt.Sprintf("run:c%d", i), Confidence: 0.7},
			models.Suggestion{ID: fmt.Sprintf("u-%d", i), Type: models.SuggestionURL, Title: fmt.Sprintf("u%d", i), Action: fmt.Sprintf("open:u%d", i), Confidence: 0.6},
			models.Suggestion{ID: fmt.Sprintf("ai-%d", i), Type: models.SuggestionAIAnswer, Title: fmt.Sprintf("ai%d", i), Action: fmt.Sprintf("ask:ai%d", i), Confidence: 0.9},
		)
	}

	result := RankAndLimit(candidates)

	assert.Len(t, result, MaxSuggestions)

	type key struct{ title, action string }
	seen := make(map[key]bool)
	for _, s := range result {
		k := key{s.Title, s.Action}
		assert.False(t, seen[k], "duplicate pair %v", k)
		seen[k] = true
	}
}

func TestRankAndLimit_Deterministic(t *testing.T) {
	candidates := append(searchEngineCandidates(),
		models.Suggestion{ID: "h-1", Type: models.SuggestionHistory, Title: "h1", Action: "open:h1", Confidence: 0.8},
		models.Suggestion{ID: "h-2", Type: models.SuggestionHistory, Title: "h2", Action: "open:h2", Confidence: 0.8},
		models.Suggestion{ID: "ai-1", Type: models.SuggestionAIAnswer, Title: "ai1", Action: "ask:1", Confidence: 0.9},
	)

	first := RankAndLimit(candidates)
	second := RankAndLimit(candidates)

	require.Equal(t, first, second)

	// Equal confidence keeps insertion order.
	h1 := indexOf(first, "h-1")
	h2 := indexOf(first, "h-2")
	require.GreaterOrEqual(t, h1, 0)
	require.GreaterOrEqual(t, h2, 0)
	assert.Less(t, h1, h2)
}

func indexOf(suggestions []models.Suggestion, id string) int {
	for i, s := range suggestions {
		if s.ID == id {
			return i
		}
	}
	return -1
}
