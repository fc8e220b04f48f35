package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/internal/omnibox"
	"github.com/omnibar-app/omnibar/backend/internal/services"
)

type SuggestHandler struct {
	service  *services.SuggestionService
	analyzer *omnibox.ContextAnalyzer
	cache    *database.Cache
	logger   *logrus.Logger
}

func NewSuggestHandler(service *services.SuggestionService, cache *database.Cache, logger *logrus.Logger) *SuggestHandler {
	return &SuggestHandler{
		service:  service,
		analyzer: omnibox.NewContextAnalyzer(),
		cache:    cache,
		logger:   logger,
	}
}

// Suggest handles POST /api/suggestions.
func (h *SuggestHandler) Suggest(c *gin.Context) {
	var req models.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is required"})
		return
	}

	pageCtx := h.resolveContext(req)

	if h.cache != nil {
		if cached, ok := h.cache.GetCachedQuery(c.Request.Context(), req.UserID, req.Input, pageCtx.URL); ok {
			h.logger.WithFields(logrus.Fields{
				"input": req.Input,
				"count": len(cached.Suggestions),
			}).Debug("Serving suggestions from cache")
			h.respond(c, *cached)
			return
		}
	}

	query := h.service.Suggest(c.Request.Context(), req.Input, req.UserID, pageCtx)

	if h.cache != nil {
		h.cache.CacheQuery(c.Request.Context(), req.UserID, &query)
	}

	// recorded after the response; gin context values are captured first
	userAgent := c.GetHeader("User-Agent")
	clientIP := c.ClientIP()
	go h.service.RecordQuery(query, req.UserID, userAgent, clientIP)

	h.respond(c, query)
}

func (h *SuggestHandler) respond(c *gin.Context, query models.SmartQuery) {
	c.JSON(http.StatusOK, models.SuggestResponse{
		Query:       query,
		Suggestions: query.Suggestions,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *SuggestHandler) resolveContext(req models.SuggestRequest) models.PageContext {
	if req.ContextHTML != "" {
		return h.analyzer.AnalyzeHTML(req.Context.URL, req.ContextHTML)
	}
	if req.Context.URL == "" && req.Context.Content == "" && req.Context.Title == "" {
		return h.analyzer.EmptyContext()
	}

	pageCtx := req.Context
	if pageCtx.Headings == nil {
		pageCtx.Headings = []string{}
	}
	if pageCtx.Links == nil {
		pageCtx.Links = []string{}
	}
	if pageCtx.Timestamp.IsZero() {
		pageCtx.Timestamp = time.Now()
	}
	return pageCtx
}
