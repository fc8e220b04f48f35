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

func TestLoadUserModel_AnonymousGetsDefault(t *testing.T) {
	svc := NewUserModelService(&fakeQueryRepo{}, nil, logrus.New())

	model := svc.LoadUserModel(context.Background(), "anonymous")

	assert.Equal(t, "anonymous", model.UserID)
	assert.Contains(t, model.FrequentQueries, "GitHub")
	require.NotEmpty(t, model.CommonPatterns)
	assert.Equal(t, "search:github", model.CommonPatterns[0].Pattern)
}

func TestLoadUserModel_EmptyHistoryFallsBack(t *testing.T) {
	svc := NewUserModelService(&fakeQueryRepo{}, nil, logrus.New())

	model := svc.LoadUserModel(context.Background(), "user-1")

	assert.Equal(t, "anonymous", model.UserID)
}

func TestBuildModelFromHistory(t *testing.T) {
	entries := []models.QueryHistory{}
	for i := 0; i < 4; i++ {
		entries = append(entries, models.QueryHistory{
			BaseModel: models.BaseModel{CreatedAt: time.Now()},
			UserID:    "user-1",
			QueryText: "golang tutorial",
			Action:    "search",
		})
	}
	entries = append(entries, models.QueryHistory{
		BaseModel: models.BaseModel{CreatedAt: time.Now()},
		UserID:    "user-1",
		QueryText: "weather",
		Action:    "search",
	})

	model := buildModelFromHistory("user-1", entries)

	assert.Equal(t, "user-1", model.UserID)
	require.NotEmpty(t, model.FrequentQueries)
	assert.Equal(t, "golang tutorial", model.FrequentQueries[0])

	require.NotEmpty(t, model.CommonPatterns)
	assert.Equal(t, "search:golang tutorial", model.CommonPatterns[0].Pattern)
	assert.Equal(t, 4, model.CommonPatterns[0].Frequency)

	// one-off queries never become patterns
	for _, pattern := range model.CommonPatterns {
		assert.NotEqual(t, "search:weather", pattern.Pattern)
	}
}

func TestMineTimeHabits_GroupsActionsByDayPart(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, 6, 16, hour, 30, 0, 0, time.Local)
	}

	entries := []models.QueryHistory{
		{BaseModel: models.BaseModel{CreatedAt: at(9)}, UserID: "user-1", QueryText: "github", Action: "search"},
		{BaseModel: models.BaseModel{CreatedAt: at(10)}, UserID: "user-1", QueryText: "github", Action: "search"},
		{BaseModel: models.BaseModel{CreatedAt: at(11)}, UserID: "user-1", QueryText: "github", Action: "search"},
		{BaseModel: models.BaseModel{CreatedAt: at(15)}, UserID: "user-1", QueryText: "打开邮箱", Action: "navigate"},
		{BaseModel: models.BaseModel{CreatedAt: at(16)}, UserID: "user-1", QueryText: "打开邮箱", Action: "navigate"},
		{BaseModel: models.BaseModel{CreatedAt: at(20)}, UserID: "user-1", QueryText: "翻译这个", Action: "translate"},
	}

	model := buildModelFromHistory("user-1", entries)

	require.Len(t, model.TimeBasedHabits, 2)

	morning := model.TimeBasedHabits[0]
	assert.Equal(t, [2]int{6, 11}, morning.TimeRange)
	assert.Equal(t, []string{"search"}, morning.CommonActions)

	afternoon := model.TimeBasedHabits[1]
	assert.Equal(t, [2]int{12, 17}, afternoon.TimeRange)
	assert.Equal(t, []string{"navigate"}, afternoon.CommonActions)
}

func TestMineTimeHabits_FallsBackToDefaults(t *testing.T) {
	// single occurrences never form a habit
	entries := []models.QueryHistory{
		{BaseModel: models.BaseModel{CreatedAt: time.Now()}, UserID: "user-1", QueryText: "github", Action: "search"},
	}

	model := buildModelFromHistory("user-1", entries)

	assert.Equal(t, DefaultUserModel().TimeBasedHabits, model.TimeBasedHabits)
}

func TestLoadUserModel_BuildsFromStoredHistory(t *testing.T) {
	repo := &fakeQueryRepo{}
	for i := 0; i < 3; i++ {
		repo.entries = append(repo.entries, models.QueryHistory{
			BaseModel: models.BaseModel{CreatedAt: time.Now()},
			UserID:    "user-2",
			QueryText: "kubernetes docs",
			Action:    "search",
		})
	}
	svc := NewUserModelService(repo, nil, logrus.New())

	model := svc.LoadUserModel(context.Background(), "user-2")

	assert.Equal(t, "user-2", model.UserID)
	assert.Contains(t, model.FrequentQueries, "kubernetes docs")
}
