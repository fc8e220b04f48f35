package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

const maxHistoryResults = 5

// HistoryService turns "帮我找昨天看过的..." style intents into
// suggestions backed by stored page visits.
type HistoryService struct {
	visitRepo models.PageVisitRepository
	logger    *logrus.Logger
	now       func() time.Time
}

func NewHistoryService(visitRepo models.PageVisitRepository, logger *logrus.Logger) *HistoryService {
	return &HistoryService{
		visitRepo: visitRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *HistoryService) SearchHistory(ctx context.Context, userID string, intent models.QueryIntent) []models.Suggestion {
	since := s.timeFilter(intent.Modifiers)

	visits, err := s.visitRepo.Search(userID, intent.Target, since, maxHistoryResults)
	if err != nil {
		s.logger.WithError(err).Warn("History search failed")
		return nil
	}

	suggestions := make([]models.Suggestion, 0, len(visits))
	for i, visit := range visits {
		title := visit.Title
		if title == "" {
			title = visit.URL
		}
		suggestions = append(suggestions, models.Suggestion{
			ID:          fmt.Sprintf("history-%d", visit.ID),
			Type:        models.SuggestionHistory,
			Title:       title,
			Description: fmt.Sprintf("%s 访问", s.formatDate(visit.LastVisit)),
			Action:      "open:" + visit.URL,
			Icon:        "📚",
			Confidence:  0.8 - float64(i)*0.1,
		})
	}
	return suggestions
}

// timeFilter maps time modifiers to the earliest visit time to include.
// Returns nil when the intent has no time constraint.
func (s *HistoryService) timeFilter(modifiers []string) *time.Time {
	for _, modifier := range modifiers {
		if !strings.HasPrefix(modifier, "time:") {
			continue
		}
		now := s.now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var since time.Time
		switch strings.TrimPrefix(modifier, "time:") {
		case "今天":
			since = midnight
		case "昨天", "前天":
			since = midnight.AddDate(0, 0, -1)
		case "上周":
			since = now.AddDate(0, 0, -7)
		case "最近", "刚才", "之前":
			since = now.AddDate(0, 0, -3)
		default:
			continue
		}
		return &since
	}
	return nil
}

func (s *HistoryService) formatDate(visited time.Time) string {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case !visited.Before(midnight):
		return "今天"
	case !visited.Before(midnight.AddDate(0, 0, -1)):
		return "昨天"
	default:
		days := int(midnight.Sub(visited).Hours()/24) + 1
		return fmt.Sprintf("%d天前", days)
	}
}
