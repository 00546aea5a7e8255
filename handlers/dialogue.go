package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voicecal/models"
	"voicecal/services/calendar"
	"voicecal/services/dialogue"
	"voicecal/services/ratelimit"
	"voicecal/utils"
)

// DialogueHandler exposes the dialogue engine over HTTP.
type DialogueHandler struct {
	Svc    dialogue.DialogueService
	Logger *zap.Logger
}

func NewDialogueHandler(svc dialogue.DialogueService, logger *zap.Logger) *DialogueHandler {
	return &DialogueHandler{Svc: svc, Logger: logger}
}

// StartSession opens (or returns) the identity's dialogue session.
func (h *DialogueHandler) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	state, err := h.Svc.StartSession(c.Request.Context(), req.Identity)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to start session", err.Error())
		return
	}
	c.JSON(http.StatusOK, state)
}

// SubmitUtterance runs one dialogue turn for the session.
func (h *DialogueHandler) SubmitUtterance(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var req models.UtteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Svc.SubmitUtterance(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrRateLimitExceeded):
			utils.JSONError(c, http.StatusTooManyRequests, "rate limit exceeded", "slow down and try again")
		case errors.Is(err, dialogue.ErrSessionExpired):
			// A timed-out id is treated as a fresh start: tell the caller to
			// reopen rather than pretending the old session survived.
			utils.JSONError(c, http.StatusGone, "session expired", "start a new session and try again")
		case errors.Is(err, calendar.ErrCommitFailed):
			utils.JSONError(c, http.StatusBadGateway, "booking could not be saved", "the calendar rejected the event; the session was reset")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to process utterance", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// EndSession terminates a session explicitly.
func (h *DialogueHandler) EndSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Svc.EndSession(c.Request.Context(), sessionID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to end session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}
