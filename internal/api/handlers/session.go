package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/gin-gonic/gin"
)

// HandleCreateSession hands out a fresh session id. The session itself is
// created lazily on first use.
func (h *AnswerHandler) HandleCreateSession(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusCreated, "Session created", models.SessionResponse{
		SessionID: utils.NewSessionID(),
	})
}

func (h *AnswerHandler) HandleClearSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.service.ClearSession(sessionID); err != nil {
		utils.DomainErrorResponse(c, "Failed to clear session", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session cleared", models.SessionResponse{SessionID: sessionID})
}

func (h *AnswerHandler) HandleHistory(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	messages, err := h.service.History(sessionID)
	if err != nil {
		utils.DomainErrorResponse(c, "Failed to load history", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "History retrieved", models.HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}
