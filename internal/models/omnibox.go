package models

import "time"

// QueryType classifies one omnibox query as a whole.
type QueryType string

const (
	QueryTypeURL           QueryType = "url"
	QueryTypeSearch        QueryType = "search"
	QueryTypeCommand       QueryType = "command"
	QueryTypeQuestion      QueryType = "question"
	QueryTypeHistorySearch QueryType = "history_search"
)

// SuggestionType is the category a suggestion is ranked under.
type SuggestionType string

const (
	SuggestionURL      SuggestionType = "url"
	SuggestionSearch   SuggestionType = "search"
	SuggestionHistory  SuggestionType = "history"
	SuggestionCommand  SuggestionType = "command"
	SuggestionAIAnswer SuggestionType = "ai_answer"
	SuggestionBookmark SuggestionType = "bookmark"
)

// QueryIntent is the structured interpretation of raw omnibox input.
// Immutable once produced by the classifier.
type QueryIntent struct {
	Action     string   `json:"action"`
	Target     string   `json:"target"`
	Modifiers  []string `json:"modifiers"`
	Confidence float64  `json:"confidence"`
}

// PageContext is a snapshot of the page the user is currently viewing.
// Content is capped at 5000 chars, headings at 20, links at 50.
type PageContext struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Headings  []string  `json:"headings"`
	Links     []string  `json:"links"`
	Timestamp time.Time `json:"timestamp"`
}

// Suggestion is one candidate action offered to the user. Within one
// ranked response the (Title, Action) pair is unique.
type Suggestion struct {
	ID          string                 `json:"id"`
	Type        SuggestionType         `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Action      string                 `json:"action"`
	Icon        string                 `json:"icon"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// SmartQuery aggregates one classify+suggest cycle. Transient; not
// persisted by the suggestion core itself.
type SmartQuery struct {
	ID          string       `json:"id"`
	Input       string       `json:"input"`
	Type        QueryType    `json:"type"`
	Intent      QueryIntent  `json:"intent"`
	Context     PageContext  `json:"context"`
	Suggestions []Suggestion `json:"suggestions"`
	Confidence  float64      `json:"confidence"`
	Timestamp   time.Time    `json:"timestamp"`
}

// QueryPattern is a recurring query shape mined from a user's history.
type QueryPattern struct {
	Pattern     string  `json:"pattern"`
	Frequency   int     `json:"frequency"`
	SuccessRate float64 `json:"success_rate"`
	TimeOfDay   []int   `json:"time_of_day"`
	DayOfWeek   []int   `json:"day_of_week"`
}

// TimeBasedHabit maps an inclusive hour range to the actions a user
// tends to take during it.
type TimeBasedHabit struct {
	TimeRange      [2]int   `json:"time_range"`
	CommonActions  []string `json:"common_actions"`
	PreferredSites []string `json:"preferred_sites"`
}

// UserBehaviorModel is the per-user profile the prediction engine reads.
// It is loaded fresh per request and never mutated by the core.
type UserBehaviorModel struct {
	UserID           string           `json:"user_id"`
	FrequentQueries  []string         `json:"frequent_queries"`
	CommonPatterns   []QueryPattern   `json:"common_patterns"`
	PreferredSources []string         `json:"preferred_sources"`
	TimeBasedHabits  []TimeBasedHabit `json:"time_based_habits"`
	LastUpdated      time.Time        `json:"last_updated"`
}
