package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/internal/omnibox"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

var errNotAURL = errors.New("not a valid url")

// OmniboxHandler resolves raw omnibox input into one concrete action:
// open a URL, run a search, summarize the current page, or save a link.
type OmniboxHandler struct {
	classifier *omnibox.IntentClassifier
	savedLinks models.SavedLinkRepository
	logger     *logrus.Logger
}

func NewOmniboxHandler(savedLinks models.SavedLinkRepository, logger *logrus.Logger) *OmniboxHandler {
	return &OmniboxHandler{
		classifier: omnibox.NewIntentClassifier(),
		savedLinks: savedLinks,
		logger:     logger,
	}
}

// Resolve handles POST /api/omnibox.
func (h *OmniboxHandler) Resolve(c *gin.Context) {
	var req models.OmniboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		utils.BadRequestResponse(c, "Input is required")
		return
	}

	resp, err := h.resolve(input, req.UserID)
	if err != nil {
		if errors.Is(err, errNotAURL) {
			utils.BadRequestResponse(c, "not a valid url")
			return
		}
		h.logger.WithError(err).Error("Failed to resolve omnibox input")
		utils.InternalErrorResponse(c, "Failed to process input")
		return
	}
	utils.SuccessResponse(c, resp)
}

// Redirect handles GET /api/omnibox?q=. Browsers can register this as a
// custom search engine; the resolved URL is returned as a 302.
func (h *OmniboxHandler) Redirect(c *gin.Context) {
	input := strings.TrimSpace(c.Query("q"))
	if input == "" {
		utils.BadRequestResponse(c, "Query parameter q is required")
		return
	}

	resp, err := h.resolve(input, "")
	if err != nil || resp.URL == "" {
		c.Redirect(http.StatusFound, "https://www.google.com/search?q="+url.QueryEscape(input))
		return
	}
	c.Redirect(http.StatusFound, resp.URL)
}

func (h *OmniboxHandler) resolve(input, userID string) (models.OmniboxResponse, error) {
	switch {
	case strings.HasPrefix(input, "/open "):
		return h.openTarget(strings.TrimSpace(strings.TrimPrefix(input, "/open "))), nil
	case input == "/sum":
		return models.OmniboxResponse{Action: "summarize"}, nil
	case strings.HasPrefix(input, "/save "):
		return h.saveLink(strings.TrimSpace(strings.TrimPrefix(input, "/save ")), userID)
	default:
		return h.openTarget(input), nil
	}
}

func (h *OmniboxHandler) openTarget(target string) models.OmniboxResponse {
	intent := h.classifier.Classify(target)
	if intent.Action == "navigate" {
		return models.OmniboxResponse{
			Action: "open",
			Target: target,
			URL:    normalizeURL(intent.Target),
		}
	}
	return models.OmniboxResponse{
		Action: "search",
		Target: target,
		URL:    "https://www.google.com/search?q=" + url.QueryEscape(target),
	}
}

// saveLink persists a /save argument. The argument must classify as
// URL-like; arbitrary text is rejected instead of being normalized
// into a bogus https:// address.
func (h *OmniboxHandler) saveLink(rest, userID string) (models.OmniboxResponse, error) {
	if userID == "" {
		userID = "anonymous"
	}

	parts := strings.SplitN(rest, " ", 2)
	if intent := h.classifier.Classify(parts[0]); intent.Action != "navigate" {
		return models.OmniboxResponse{}, errNotAURL
	}

	link := &models.SavedLink{
		UserID: userID,
		URL:    normalizeURL(parts[0]),
	}
	if len(parts) == 2 {
		link.Title = strings.TrimSpace(parts[1])
	}

	if err := h.savedLinks.Create(link); err != nil {
		return models.OmniboxResponse{}, err
	}
	return models.OmniboxResponse{Action: "saved", URL: link.URL}, nil
}

func normalizeURL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "https://" + target
}
