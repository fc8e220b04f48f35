package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/internal/omnibox"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

type searchEngine struct {
	name      string
	display   string
	searchURL string
}

var searchEngines = []searchEngine{
	{name: "google", display: "Google", searchURL: "https://www.google.com/search?q=%s"},
	{name: "bing", display: "Bing", searchURL: "https://www.bing.com/search?q=%s"},
	{name: "baidu", display: "百度", searchURL: "https://www.baidu.com/s?wd=%s"},
}

// SuggestionService runs the full pipeline for one omnibox query:
// classify, load the user model, gather candidates from every source,
// then rank and cap the result.
type SuggestionService struct {
	classifier   *omnibox.IntentClassifier
	provider     *omnibox.ContextAwareSuggestionProvider
	userModelSvc *UserModelService
	historySvc   *HistoryService
	queryRepo    models.QueryHistoryRepository
	cache        *database.Cache
	logger       *logrus.Logger
}

func NewSuggestionService(
	userModelSvc *UserModelService,
	historySvc *HistoryService,
	queryRepo models.QueryHistoryRepository,
	cache *database.Cache,
	logger *logrus.Logger,
) *SuggestionService {
	return &SuggestionService{
		classifier:   omnibox.NewIntentClassifier(),
		provider:     omnibox.NewContextAwareSuggestionProvider(),
		userModelSvc: userModelSvc,
		historySvc:   historySvc,
		queryRepo:    queryRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Suggest never fails: any panic or downstream error degrades to the
// default search + AI pair so the omnibox always has something to show.
func (s *SuggestionService) Suggest(ctx context.Context, input, userID string, pageCtx models.PageContext) (query models.SmartQuery) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Suggestion pipeline panicked, returning defaults")
			query = s.defaultQuery(input, pageCtx)
		}
	}()

	intent := s.classifier.Classify(input)
	queryType := s.classifier.DetermineQueryType(intent)

	userModel := s.userModelSvc.LoadUserModel(ctx, userID)
	engine := omnibox.NewPredictionEngine(userModel)

	// the direct AI answer goes in first so it wins confidence ties
	// against context-derived ai_answer suggestions
	candidates := make([]models.Suggestion, 0, 24)
	if queryType == models.QueryTypeQuestion {
		candidates = append(candidates, s.aiAnswerSuggestion(input))
	}
	if intent.Action == "navigate" {
		candidates = append(candidates, s.navigationSuggestion(intent))
	}
	if intent.Action == "history_search" {
		candidates = append(candidates, s.historySvc.SearchHistory(ctx, userID, intent)...)
	}
	candidates = append(candidates, engine.PredictNext(input, pageCtx)...)
	candidates = append(candidates, s.provider.GenerateContextSuggestions(pageCtx, input)...)
	candidates = append(candidates, s.searchEngineSuggestions(input)...)

	return models.SmartQuery{
		ID:          utils.NewQueryID(),
		Input:       input,
		Type:        queryType,
		Intent:      intent,
		Context:     pageCtx,
		Suggestions: omnibox.RankAndLimit(candidates),
		Confidence:  intent.Confidence,
		Timestamp:   time.Now(),
	}
}

// RecordQuery persists one classified query best-effort. Meant to run
// in a goroutine after the response is sent.
func (s *SuggestionService) RecordQuery(query models.SmartQuery, userID, userAgent, ipAddress string) {
	if userID == "" {
		userID = "anonymous"
	}

	entry := &models.QueryHistory{
		UserID:    userID,
		QueryText: query.Input,
		QueryType: string(query.Type),
		Action:    query.Intent.Action,
		Target:    query.Intent.Target,
		Modifiers: models.StringArray(query.Intent.Modifiers),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.queryRepo.Create(entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record query")
		return
	}

	if s.cache != nil && userID != "anonymous" {
		s.cache.InvalidateUserModel(context.Background(), userID)
	}
}

func (s *SuggestionService) navigationSuggestion(intent models.QueryIntent) models.Suggestion {
	target := intent.Target
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	return models.Suggestion{
		ID:          "open-url",
		Type:        models.SuggestionURL,
		Title:       "打开 " + intent.Target,
		Description: target,
		Action:      "open:" + target,
		Icon:        "🌐",
		Confidence:  0.95,
	}
}

func (s *SuggestionService) aiAnswerSuggestion(input string) models.Suggestion {
	return models.Suggestion{
		ID:          "ai-answer",
		Type:        models.SuggestionAIAnswer,
		Title:       "AI 回答：" + input,
		Description: "使用 DeepSeek 直接回答你的问题",
		Action:      "ask:" + url.QueryEscape(input),
		Icon:        "🤖",
		Confidence:  0.9,
	}
}

func (s *SuggestionService) searchEngineSuggestions(input string) []models.Suggestion {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	escaped := url.QueryEscape(input)
	suggestions := make([]models.Suggestion, 0, len(searchEngines))
	for i, engine := range searchEngines {
		suggestions = append(suggestions, models.Suggestion{
			ID:          "search-" + engine.name,
			Type:        models.SuggestionSearch,
			Title:       "在 " + engine.display + " 搜索",
			Description: fmt.Sprintf("%q", input),
			Action:      "open:" + fmt.Sprintf(engine.searchURL, escaped),
			Icon:        "🔍",
			Confidence:  0.6 - float64(i)*0.05,
		})
	}
	return suggestions
}

func (s *SuggestionService) defaultQuery(input string, pageCtx models.PageContext) models.SmartQuery {
	escaped := url.QueryEscape(input)
	return models.SmartQuery{
		ID:      utils.NewQueryID(),
		Input:   input,
		Type:    models.QueryTypeSearch,
		Intent:  models.QueryIntent{Action: "search", Target: input, Modifiers: []string{}, Confidence: 0.5},
		Context: pageCtx,
		Suggestions: []models.Suggestion{
			{
				ID:          "default-search",
				Type:        models.SuggestionSearch,
				Title:       fmt.Sprintf("搜索 %q", input),
				Description: "在 Google 中搜索",
				Action:      "open:https://www.google.com/search?q=" + escaped,
				Icon:        "🔍",
				Confidence:  0.7,
			},
			{
				ID:          "default-ai",
				Type:        models.SuggestionAIAnswer,
				Title:       "AI 回答：" + input,
				Description: "使用 DeepSeek 直接回答你的问题",
				Action:      "ask:" + escaped,
				Icon:        "🤖",
				Confidence:  0.8,
			},
		},
		Confidence: 0.5,
		Timestamp:  time.Now(),
	}
}
