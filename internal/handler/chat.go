package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mira/internal/model"
	"mira/internal/service"
)

// ChatProcessor runs one conversational turn
type ChatProcessor interface {
	Process(ctx context.Context, message string, history []model.ConversationTurn) service.ChatResult
}

// ChatHandler handles conversational search requests
type ChatHandler struct {
	chat ChatProcessor
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatProcessor) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	result := h.chat.Process(c.Request.Context(), req.Message, req.ConversationHistory)

	response := model.ChatResponse{
		Message:     result.ResponseText,
		Properties:  result.Listings,
		Suggestions: result.Suggestions,
	}
	if response.Properties == nil {
		response.Properties = []model.ListingSearchResult{}
	}
	if response.Suggestions == nil {
		response.Suggestions = []string{}
	}
	if result.Preferences != nil {
		response.Preferences = *result.Preferences
	}

	c.JSON(http.StatusOK, response)
}
