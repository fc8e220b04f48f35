package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

type fakeQueryRepo struct {
	entries []models.QueryHistory
	created []*models.QueryHistory
}

func (f *fakeQueryRepo) Create(entry *models.QueryHistory) error {
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeQueryRepo) GetRecentByUser(userID string, limit int) ([]models.QueryHistory, error) {
	var out []models.QueryHistory
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeQueryRepo) GetRecent(limit int) ([]models.QueryHistory, error) {
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type fakeVisitRepo struct {
	visits    []models.PageVisit
	lastSince *time.Time
	lastQuery string
}

func (f *fakeVisitRepo) Upsert(visit *models.PageVisit) error { return nil }

func (f *fakeVisitRepo) Search(userID, target string, since *time.Time, limit int) ([]models.PageVisit, error) {
	f.lastSince = since
	f.lastQuery = target
	if len(f.visits) > limit {
		return f.visits[:limit], nil
	}
	return f.visits, nil
}

func (f *fakeVisitRepo) GetByURL(userID, url string) (*models.PageVisit, error) { return nil, nil }

func (f *fakeVisitRepo) GetStale(olderThan time.Time, limit int) ([]models.PageVisit, error) {
	return nil, nil
}

func (f *fakeVisitRepo) UpdateCrawlStatus(id uint, status string) error { return nil }

func newTestService(queryRepo *fakeQueryRepo, visitRepo *fakeVisitRepo) *SuggestionService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	userModelSvc := NewUserModelService(queryRepo, nil, logger)
	historySvc := NewHistoryService(visitRepo, logger)
	return NewSuggestionService(userModelSvc, historySvc, queryRepo, nil, logger)
}

func TestSuggest_QuestionLeadsWithAIAnswer(t *testing.T) {
	svc := newTestService(&fakeQueryRepo{}, &fakeVisitRepo{})

	query := svc.Suggest(context.Background(), "真的吗？我不信", "", emptyContext())

	assert.Equal(t, models.QueryTypeQuestion, query.Type)
	require.NotEmpty(t, query.Suggestions)
	assert.Equal(t, "ai-answer", query.Suggestions[0].ID)
	assert.Equal(t, models.SuggestionAIAnswer, query.Suggestions[0].Type)
	assert.Contains(t, query.Suggestions[0].Title, "真的吗")

	assert.NotNil(t, findByID(query.Suggestions, "search-google"))
	assert.NotNil(t, findByID(query.Suggestions, "search-bing"))
}

func TestSuggest_BareDomainOffersDirectOpen(t *testing.T) {
	svc := newTestService(&fakeQueryRepo{}, &fakeVisitRepo{})

	query := svc.Suggest(context.Background(), "github.com", "", emptyContext())

	assert.Equal(t, models.QueryTypeURL, query.Type)
	open := findByID(query.Suggestions, "open-url")
	require.NotNil(t, open)
	assert.Equal(t, "open:https://github.com", open.Action)
	assert.Equal(t, "打开 github.com", open.Title)
}

func TestSuggest_HistorySearchUsesStoredVisits(t *testing.T) {
	visitRepo := &fakeVisitRepo{
		visits: []models.PageVisit{
			{
				BaseModel: models.BaseModel{ID: 7},
				URL:       "https://example.com/ai",
				Title:     "AI 文章",
				LastVisit: time.Now().Add(-20 * time.Hour),
			},
		},
	}
	svc := newTestService(&fakeQueryRepo{}, visitRepo)

	query := svc.Suggest(context.Background(), "帮我找昨天看过的AI文章", "user-1", emptyContext())

	assert.Equal(t, "AI文章", visitRepo.lastQuery)
	require.NotNil(t, visitRepo.lastSince, "time modifier should constrain the search window")

	history := findByID(query.Suggestions, "history-7")
	require.NotNil(t, history)
	assert.Equal(t, models.SuggestionHistory, history.Type)
	assert.Equal(t, "open:https://example.com/ai", history.Action)
	assert.Equal(t, "📚", history.Icon)
}

func TestSuggest_QueryIDAndTimestampSet(t *testing.T) {
	svc := newTestService(&fakeQueryRepo{}, &fakeVisitRepo{})

	query := svc.Suggest(context.Background(), "hello", "", emptyContext())

	assert.Regexp(t, `^query-\d+-`, query.ID)
	assert.WithinDuration(t, time.Now(), query.Timestamp, 5*time.Second)
	assert.LessOrEqual(t, len(query.Suggestions), 8)
}

func TestRecordQuery_DefaultsToAnonymous(t *testing.T) {
	queryRepo := &fakeQueryRepo{}
	svc := newTestService(queryRepo, &fakeVisitRepo{})

	query := svc.Suggest(context.Background(), "天气怎么样", "", emptyContext())
	svc.RecordQuery(query, "", "test-agent", "127.0.0.1")

	require.Len(t, queryRepo.created, 1)
	entry := queryRepo.created[0]
	assert.Equal(t, "anonymous", entry.UserID)
	assert.Equal(t, "天气怎么样", entry.QueryText)
	assert.Equal(t, "test-agent", entry.UserAgent)
}

func TestSearchEngineSuggestions_SkipsEmptyInput(t *testing.T) {
	svc := newTestService(&fakeQueryRepo{}, &fakeVisitRepo{})

	assert.Empty(t, svc.searchEngineSuggestions("   "))

	suggestions := svc.searchEngineSuggestions("golang")
	require.Len(t, suggestions, 3)
	assert.Equal(t, "在 Google 搜索", suggestions[0].Title)
	assert.Equal(t, "open:https://www.google.com/search?q=golang", suggestions[0].Action)
	assert.InDelta(t, 0.6, suggestions[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, suggestions[2].Confidence, 1e-9)
}

func findByID(suggestions []models.Suggestion, id string) *models.Suggestion {
	for i := range suggestions {
		if suggestions[i].ID == id {
			return &suggestions[i]
		}
	}
	return nil
}

func emptyContext() models.PageContext {
	return models.PageContext{
		Headings:  []string{},
		Links:     []string{},
		Timestamp: time.Now(),
	}
}
