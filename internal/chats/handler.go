package chats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes. mw runs in front of the model-backed route only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/chat", append(mw, h.reply)...)
	rg.POST("/chat/save", h.save)
	rg.GET("/chat/history", h.history)
}

type historyRequest struct {
	History []Message `json:"history"`
}

func (h *Handler) reply(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.History) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "History must be a non-empty array", nil)
		return
	}
	answer, err := h.Svc.Reply(c.Request.Context(), req.History)
	if err != nil {
		telemetry.Error("chat.failed", map[string]any{"user_id": middleware.UserIDFromContext(c), "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "chat_failed", "Failed to process chat request", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"response": answer})
}

func (h *Handler) save(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.History == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "History must be an array", nil)
		return
	}
	if err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req.History); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to save chat", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "Chat saved successfully"})
}

func (h *Handler) history(c *gin.Context) {
	history, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch chat history", nil)
		return
	}
	if history == nil {
		history = []Message{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"history": history})
}
