package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// HandleChat answers a wellness question from the Ayurvedic knowledge base
// and the language model.
func (h *Handler) HandleChat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, BadRequest(`Invalid request format, expecting {"message": "..."}`, err))
		return
	}

	resp, err := h.chatbot.Chat(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *Handler) ChatbotHealth(c *gin.Context) {
	respondOK(c, h.chatbot.Health())
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
