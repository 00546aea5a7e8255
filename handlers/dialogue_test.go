package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicecal/models"
	"voicecal/services/calendar"
	"voicecal/services/dialogue"
	"voicecal/services/ratelimit"
)

type stubDialogue struct {
	startResult *models.SessionStateResult
	turnResult  *models.TurnResult
	submitErr   error
}

func (s *stubDialogue) StartSession(context.Context, string) (*models.SessionStateResult, error) {
	return s.startResult, nil
}

func (s *stubDialogue) SubmitUtterance(context.Context, string, string) (*models.TurnResult, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.turnResult, nil
}

func (s *stubDialogue) EndSession(context.Context, string) error { return nil }

func (s *stubDialogue) SweepExpired(context.Context) (int, error) { return 0, nil }

func newTestRouter(svc dialogue.DialogueService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDialogueHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/api/dialogue/session", h.StartSession)
	r.POST("/api/dialogue/session/:sessionID/utterance", h.SubmitUtterance)
	r.DELETE("/api/dialogue/session/:sessionID", h.EndSession)
	return r
}

func TestStartSessionEndpoint(t *testing.T) {
	r := newTestRouter(&stubDialogue{startResult: &models.SessionStateResult{
		SessionID: "s1", Identity: "alice", State: models.StateIdle, SilenceWindowMS: 2000,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dialogue/session",
		strings.NewReader(`{"identity":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessionId":"s1"`)
	assert.Contains(t, w.Body.String(), `"silenceWindowMs":2000`)
}

func TestStartSessionRequiresIdentity(t *testing.T) {
	r := newTestRouter(&stubDialogue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dialogue/session", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitUtteranceStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"rate limited", ratelimit.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"expired", dialogue.ErrSessionExpired, http.StatusGone},
		{"commit failed", calendar.ErrCommitFailed, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubDialogue{submitErr: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/dialogue/session/s1/utterance",
				strings.NewReader(`{"text":"hello"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestSubmitUtteranceSuccess(t *testing.T) {
	r := newTestRouter(&stubDialogue{turnResult: &models.TurnResult{
		SessionID: "s1", State: models.StateAwaitingField, Prompt: "What day would you like it?",
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dialogue/session/s1/utterance",
		strings.NewReader(`{"text":"EL25 book a meeting"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"AWAITING_FIELD"`)
}

func TestEndSessionEndpoint(t *testing.T) {
	r := newTestRouter(&stubDialogue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/dialogue/session/s1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ended"`)
}
