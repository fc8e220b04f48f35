package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/models"
)

const (
	historyWindowSize  = 100
	maxFrequentQueries = 20
)

// UserModelService builds per-user behavior models from recorded query
// history. Anonymous users get a canned default model so predictions
// still have something to work with.
type UserModelService struct {
	queryRepo models.QueryHistoryRepository
	cache     *database.Cache
	logger    *logrus.Logger
}

func NewUserModelService(queryRepo models.QueryHistoryRepository, cache *database.Cache, logger *logrus.Logger) *UserModelService {
	return &UserModelService{
		queryRepo: queryRepo,
		cache:     cache,
		logger:    logger,
	}
}

func (s *UserModelService) LoadUserModel(ctx context.Context, userID string) models.UserBehaviorModel {
	if userID == "" || userID == "anonymous" {
		return DefaultUserModel()
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetCachedUserModel(ctx, userID); ok {
			return *cached
		}
	}

	entries, err := s.queryRepo.GetRecentByUser(userID, historyWindowSize)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load query history, using default model")
		return DefaultUserModel()
	}
	if len(entries) == 0 {
		return DefaultUserModel()
	}

	model := buildModelFromHistory(userID, entries)

	if s.cache != nil {
		s.cache.CacheUserModel(ctx, userID, &model)
	}
	return model
}

func buildModelFromHistory(userID string, entries []models.QueryHistory) models.UserBehaviorModel {
	frequency := make(map[string]int)
	actionHours := make(map[string]map[int]int)

	for _, entry := range entries {
		frequency[entry.QueryText]++

		if entry.Action != "" {
			hour := entry.CreatedAt.Hour()
			if actionHours[entry.Action] == nil {
				actionHours[entry.Action] = make(map[int]int)
			}
			actionHours[entry.Action][hour]++
		}
	}

	type counted struct {
		text  string
		count int
	}
	ranked := make([]counted, 0, len(frequency))
	for text, count := range frequency {
		ranked = append(ranked, counted{text, count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	frequent := make([]string, 0, maxFrequentQueries)
	patterns := make([]models.QueryPattern, 0)
	for i, item := range ranked {
		if i >= maxFrequentQueries {
			break
		}
		frequent = append(frequent, item.text)
		if item.count >= 3 {
			patterns = append(patterns, models.QueryPattern{
				Pattern:     "search:" + item.text,
				Frequency:   item.count,
				SuccessRate: 0.8,
				TimeOfDay:   []int{9, 18},
				DayOfWeek:   []int{1, 2, 3, 4, 5},
			})
		}
	}

	habits := mineTimeHabits(actionHours)
	if len(habits) == 0 {
		habits = DefaultUserModel().TimeBasedHabits
	}

	return models.UserBehaviorModel{
		UserID:           userID,
		FrequentQueries:  frequent,
		CommonPatterns:   patterns,
		PreferredSources: DefaultUserModel().PreferredSources,
		TimeBasedHabits:  habits,
		LastUpdated:      time.Now(),
	}
}

// habitWindows are the fixed day parts habits are mined into.
var habitWindows = [][2]int{{6, 11}, {12, 17}, {18, 23}, {0, 5}}

// mineTimeHabits turns per-action hour counts into at most one habit per
// day part, keeping the two most repeated actions in each window. An
// action needs at least two occurrences inside a window to count.
func mineTimeHabits(actionHours map[string]map[int]int) []models.TimeBasedHabit {
	habits := []models.TimeBasedHabit{}

	for _, window := range habitWindows {
		type counted struct {
			action string
			count  int
		}
		inWindow := []counted{}
		for action, hours := range actionHours {
			total := 0
			for hour, n := range hours {
				if hour >= window[0] && hour <= window[1] {
					total += n
				}
			}
			if total >= 2 {
				inWindow = append(inWindow, counted{action, total})
			}
		}
		if len(inWindow) == 0 {
			continue
		}

		sort.SliceStable(inWindow, func(i, j int) bool {
			if inWindow[i].count != inWindow[j].count {
				return inWindow[i].count > inWindow[j].count
			}
			return inWindow[i].action < inWindow[j].action
		})
		if len(inWindow) > 2 {
			inWindow = inWindow[:2]
		}

		actions := make([]string, 0, len(inWindow))
		for _, item := range inWindow {
			actions = append(actions, item.action)
		}
		habits = append(habits, models.TimeBasedHabit{
			TimeRange:     window,
			CommonActions: actions,
		})
	}
	return habits
}

// DefaultUserModel is the profile used for anonymous users and as the
// fallback when history cannot be loaded.
func DefaultUserModel() models.UserBehaviorModel {
	return models.UserBehaviorModel{
		UserID:          "anonymous",
		FrequentQueries: []string{"GitHub", "天气", "AI 新闻", "JavaScript 教程", "React 文档"},
		CommonPatterns: []models.QueryPattern{
			{
				Pattern:     "search:github",
				Frequency:   10,
				SuccessRate: 0.9,
				TimeOfDay:   []int{9, 18},
				DayOfWeek:   []int{1, 2, 3, 4, 5},
			},
		},
		PreferredSources: []string{"github.com", "stackoverflow.com", "developer.mozilla.org"},
		TimeBasedHabits: []models.TimeBasedHabit{
			{
				TimeRange:      [2]int{9, 12},
				CommonActions:  []string{"search:github", "open:email"},
				PreferredSites: []string{"github.com", "gmail.com"},
			},
			{
				TimeRange:      [2]int{14, 18},
				CommonActions:  []string{"search:news", "search:weather"},
				PreferredSites: []string{"news.ycombinator.com"},
			},
		},
		LastUpdated: time.Now(),
	}
}
