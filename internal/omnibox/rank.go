package omnibox

import (
	"sort"
	"strings"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

// MaxSuggestions caps the final ranked list.
const MaxSuggestions = 8

// typeBuckets is the fixed append order for the non-search buckets,
// each limited to two items while room remains.
var typeBuckets = []struct {
	suggestionType models.SuggestionType
	max            int
}{
	{models.SuggestionHistory, 2},
	{models.SuggestionCommand, 2},
	{models.SuggestionURL, 2},
	{models.SuggestionBookmark, 2},
}

// RankAndLimit merges the unordered candidate pool into the final
// ordered list. Deterministic: equal confidences keep insertion order.
//
// Assembly order: one ai_answer, forced Google and Bing search entries
// (Baidu only while under 6), then the type buckets, then any spare
// ai_answer candidates, truncated to 8.
func RankAndLimit(suggestions []models.Suggestion) []models.Suggestion {
	unique := dedupeByTitleAction(suggestions)

	byType := make(map[models.SuggestionType][]models.Suggestion)
	for _, s := range unique {
		byType[s.Type] = append(byType[s.Type], s)
	}
	for t := range byType {
		group := byType[t]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
		byType[t] = group
	}

	result := []models.Suggestion{}

	// 1. At most one AI answer leads the list.
	if aiAnswers := byType[models.SuggestionAIAnswer]; len(aiAnswers) > 0 {
		result = append(result, aiAnswers[0])
	}

	// 2. Search engine diversity: Google and Bing are never dropped for
	// capacity; Baidu only joins while the list is short.
	searches := byType[models.SuggestionSearch]
	if google := findByTitle(searches, "Google"); google != nil {
		result = append(result, *google)
	}
	if bing := findByTitle(searches, "Bing"); bing != nil {
		result = append(result, *bing)
	}
	if baidu := findByTitle(searches, "百度"); baidu != nil && len(result) < 6 {
		result = append(result, *baidu)
	}

	// 3. Remaining buckets in fixed order while room remains.
	for _, bucket := range typeBuckets {
		group := byType[bucket.suggestionType]
		if len(group) == 0 || len(result) >= MaxSuggestions {
			continue
		}
		limit := bucket.max
		if room := MaxSuggestions - len(result); room < limit {
			limit = room
		}
		if len(group) < limit {
			limit = len(group)
		}
		result = append(result, group[:limit]...)
	}

	// 4. Spare AI answers fill whatever room is left.
	if aiAnswers := byType[models.SuggestionAIAnswer]; len(aiAnswers) > 1 && len(result) < MaxSuggestions {
		for _, s := range aiAnswers[1:] {
			if len(result) >= MaxSuggestions {
				break
			}
			result = append(result, s)
		}
	}

	if len(result) > MaxSuggestions {
		result = result[:MaxSuggestions]
	}
	return result
}

// dedupeByTitleAction keeps the first occurrence per (title, action)
// pair.
func dedupeByTitleAction(suggestions []models.Suggestion) []models.Suggestion {
	type key struct{ title, action string }
	seen := make(map[key]bool, len(suggestions))
	unique := []models.Suggestion{}
	for _, s := range suggestions {
		k := key{s.Title, s.Action}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, s)
	}
	return unique
}

func findByTitle(group []models.Suggestion, substr string) *models.Suggestion {
	for i := range group {
		if strings.Contains(group[i].Title, substr) {
			return &group[i]
		}
	}
	return nil
}
