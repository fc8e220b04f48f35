package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/deepseek"
	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

// AskHandler proxies chat requests to the DeepSeek backend.
type AskHandler struct {
	client *deepseek.Client
	logger *logrus.Logger
}

func NewAskHandler(client *deepseek.Client, logger *logrus.Logger) *AskHandler {
	return &AskHandler{client: client, logger: logger}
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		utils.BadRequestResponse(c, "Missing messages")
		return
	}

	messages := make([]deepseek.ChatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, deepseek.ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	answer, err := h.client.AskWithAttachmentsRetry(c.Request.Context(), messages, req.Attachments)
	if err != nil {
		h.logger.WithError(err).Error("DeepSeek request failed")
		utils.ErrorResponse(c, http.StatusBadGateway, "Upstream model request failed")
		return
	}

	utils.SuccessResponse(c, models.AskResponse{
		Text:  answer.Text,
		Model: answer.Model,
	})
}
