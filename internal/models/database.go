package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "{}" {
			*s = StringArray{}
			return nil
		}
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryHistory is one recorded omnibox query. It feeds the user
// behavior model and is written best-effort after each request.
type QueryHistory struct {
	BaseModel
	UserID    string      `json:"user_id" gorm:"index;not null"`
	QueryText string      `json:"query_text" gorm:"not null"`
	QueryType string      `json:"query_type"`
	Action    string      `json:"action"`
	Target    string      `json:"target"`
	Modifiers StringArray `json:"modifiers" gorm:"type:text[]"`
	UserAgent string      `json:"user_agent"`
	IPAddress string      `json:"ip_address" gorm:"type:inet"`
}

// PageVisit caches the extracted content of a visited page. History
// search reads these rows; the seed command refreshes them.
type PageVisit struct {
	BaseModel
	UserID       string      `json:"user_id" gorm:"uniqueIndex:idx_page_visits_user_url"`
	URL          string      `json:"url" gorm:"uniqueIndex:idx_page_visits_user_url;not null"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Headings     StringArray `json:"headings" gorm:"type:text[]"`
	VisitCount   int         `json:"visit_count" gorm:"default:1"`
	LastVisit    time.Time   `json:"last_visit" gorm:"index;default:NOW()"`
	CrawlStatus  string      `json:"crawl_status" gorm:"default:'pending';check:crawl_status IN ('pending','crawling','completed','failed')"`
	LastCrawled  *time.Time  `json:"last_crawled"`
	WordCount    int         `json:"word_count"`
	HeadingCount int         `json:"heading_count"`
}

// SavedLink is a URL stored via the /save omnibox command.
type SavedLink struct {
	BaseModel
	UserID string `json:"user_id" gorm:"index"`
	URL    string `json:"url" gorm:"not null"`
	Title  string `json:"title"`
}

// Repository interfaces

type QueryHistoryRepository interface {
	Create(entry *QueryHistory) error
	GetRecentByUser(userID string, limit int) ([]QueryHistory, error)
	GetRecent(limit int) ([]QueryHistory, error)
}

type PageVisitRepository interface {
	Upsert(visit *PageVisit) error
	Search(userID, target string, since *time.Time, limit int) ([]PageVisit, error)
	GetByURL(userID, url string) (*PageVisit, error)
	GetStale(olderThan time.Time, limit int) ([]PageVisit, error)
	UpdateCrawlStatus(id uint, status string) error
}

type SavedLinkRepository interface {
	Create(link *SavedLink) error
	GetAll(userID string) ([]SavedLink, error)
}

// TableName methods for custom table names
func (QueryHistory) TableName() string { return "query_history" }
func (PageVisit) TableName() string    { return "page_visits" }
func (SavedLink) TableName() string    { return "saved_links" }

// Model validation methods
func (qh *QueryHistory) Validate() error {
	if qh.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if qh.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	return nil
}

func (pv *PageVisit) Validate() error {
	if pv.URL == "" {
		return fmt.Errorf("page URL is required")
	}
	validStatuses := map[string]bool{
		"pending":   true,
		"crawling":  true,
		"completed": true,
		"failed":    true,
	}
	if pv.CrawlStatus != "" && !validStatuses[pv.CrawlStatus] {
		return fmt.Errorf("invalid crawl status: %s", pv.CrawlStatus)
	}
	return nil
}

func (sl *SavedLink) Validate() error {
	if sl.URL == "" {
		return fmt.Errorf("link URL is required")
	}
	return nil
}

// GORM hooks
func (qh *QueryHistory) BeforeCreate(tx *gorm.DB) error {
	return qh.Validate()
}

func (pv *PageVisit) BeforeCreate(tx *gorm.DB) error {
	return pv.Validate()
}

func (pv *PageVisit) BeforeUpdate(tx *gorm.DB) error {
	return pv.Validate()
}

func (sl *SavedLink) BeforeCreate(tx *gorm.DB) error {
	return sl.Validate()
}
