package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omnibar-app/omnibar/backend/internal/models"
)

// QueryHistoryRepositoryImpl implements QueryHistoryRepository
type QueryHistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewQueryHistoryRepository(db *gorm.DB) models.QueryHistoryRepository {
	return &QueryHistoryRepositoryImpl{db: db}
}

func (r *QueryHistoryRepositoryImpl) Create(entry *models.QueryHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create query history entry: %w", err)
	}
	return nil
}

func (r *QueryHistoryRepositoryImpl) GetRecentByUser(userID string, limit int) ([]models.QueryHistory, error) {
	var entries []models.QueryHistory
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent queries for user: %w", err)
	}
	return entries, nil
}

func (r *QueryHistoryRepositoryImpl) GetRecent(limit int) ([]models.QueryHistory, error) {
	var entries []models.QueryHistory
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent queries: %w", err)
	}
	return entries, nil
}

// PageVisitRepositoryImpl implements PageVisitRepository
type PageVisitRepositoryImpl struct {
	db *gorm.DB
}

func NewPageVisitRepository(db *gorm.DB) models.PageVisitRepository {
	return &PageVisitRepositoryImpl{db: db}
}

// Upsert inserts the visit or, on URL conflict, refreshes the stored
// content and bumps the visit counter.
func (r *PageVisitRepositoryImpl) Upsert(visit *models.PageVisit) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"title":         visit.Title,
			"content":       visit.Content,
			"headings":      visit.Headings,
			"visit_count":   gorm.Expr("page_visits.visit_count + 1"),
			"last_visit":    time.Now(),
			"word_count":    visit.WordCount,
			"heading_count": visit.HeadingCount,
			"updated_at":    time.Now(),
		}),
	}).Create(visit).Error
	if err != nil {
		return fmt.Errorf("failed to upsert page visit: %w", err)
	}
	return nil
}

func (r *PageVisitRepositoryImpl) Search(userID, target string, since *time.Time, limit int) ([]models.PageVisit, error) {
	var visits []models.PageVisit
	query := r.db.Where("user_id = ?", userID)

	if target != "" {
		pattern := "%" + target + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}
	if since != nil {
		query = query.Where("last_visit >= ?", *since)
	}

	err := query.Order("last_visit DESC").
		Limit(limit).
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search page visits: %w", err)
	}
	return visits, nil
}

func (r *PageVisitRepositoryImpl) GetByURL(userID, url string) (*models.PageVisit, error) {
	var visit models.PageVisit
	err := r.db.Where("user_id = ? AND url = ?", userID, url).First(&visit).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get page visit: %w", err)
	}
	return &visit, nil
}

func (r *PageVisitRepositoryImpl) GetStale(olderThan time.Time, limit int) ([]models.PageVisit, error) {
	var visits []models.PageVisit
	err := r.db.Where("last_crawled IS NULL OR last_crawled < ?", olderThan).
		Where("crawl_status != ?", "crawling").
		Order("last_visit DESC").
		Limit(limit).
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stale page visits: %w", err)
	}
	return visits, nil
}

func (r *PageVisitRepositoryImpl) UpdateCrawlStatus(id uint, status string) error {
	updates := map[string]interface{}{"crawl_status": status}
	if status == "completed" || status == "failed" {
		now := time.Now()
		updates["last_crawled"] = &now
	}
	err := r.db.Model(&models.PageVisit{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update crawl status: %w", err)
	}
	return nil
}

// SavedLinkRepositoryImpl implements SavedLinkRepository
type SavedLinkRepositoryImpl struct {
	db *gorm.DB
}

func NewSavedLinkRepository(db *gorm.DB) models.SavedLinkRepository {
	return &SavedLinkRepositoryImpl{db: db}
}

func (r *SavedLinkRepositoryImpl) Create(link *models.SavedLink) error {
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to create saved link: %w", err)
	}
	return nil
}

// GetAll returns a user's saved links, or every saved link when userID
// is empty. The crawler uses the unscoped form.
func (r *SavedLinkRepositoryImpl) GetAll(userID string) ([]models.SavedLink, error) {
	var links []models.SavedLink
	query := r.db
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get saved links: %w", err)
	}
	return links, nil
}

// RepositoryManager bundles the repositories for dependency injection.
type RepositoryManager struct {
	QueryHistory models.QueryHistoryRepository
	PageVisit    models.PageVisitRepository
	SavedLink    models.SavedLinkRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		QueryHistory: NewQueryHistoryRepository(db),
		PageVisit:    NewPageVisitRepository(db),
		SavedLink:    NewSavedLinkRepository(db),
	}
}
