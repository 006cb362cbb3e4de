package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farsightlab/arv-backend/internal/platform/apierr"
	"github.com/farsightlab/arv-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.PredictionSessionService
}

func NewSessionHandler(sessionService services.PredictionSessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type createSessionRequest struct {
	LabelA string `json:"label_a"`
	LabelB string `json:"label_b"`
}

type predictRequest struct {
	Text      string `json:"text"`
	SketchURL string `json:"sketch_url"`
}

type revealRequest struct {
	WinningLabel string `json:"winning_label"`
}

func (sh *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}

	session, err := sh.sessionService.Create(c.Request.Context(), req.LabelA, req.LabelB)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	view, err := services.Project(session, false)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (sh *SessionHandler) Get(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	inspect := strings.EqualFold(c.Query("inspect"), "true")

	session, err := sh.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	view, err := services.Project(session, inspect)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, view)
}

func (sh *SessionHandler) List(c *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			RespondAPIError(c, apierr.Validation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	sessions, err := sh.sessionService.List(c.Request.Context(), limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	views := make([]services.SessionView, 0, len(sessions))
	for _, session := range sessions {
		view, err := services.Project(session, false)
		if err != nil {
			RespondAPIError(c, err)
			return
		}
		views = append(views, view)
	}
	RespondOK(c, gin.H{"sessions": views})
}

func (sh *SessionHandler) Predict(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}

	session, err := sh.sessionService.Predict(c.Request.Context(), id, req.Text, req.SketchURL)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	view, err := services.Project(session, false)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, view)
}

func (sh *SessionHandler) PreviewPrediction(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}

	verdict, err := sh.sessionService.PreviewPrediction(c.Request.Context(), id, req.Text, req.SketchURL)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"verdict": verdict})
}

func (sh *SessionHandler) Reveal(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}

	session, err := sh.sessionService.Reveal(c.Request.Context(), id, req.WinningLabel)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	view, err := services.Project(session, false)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, view)
}

func (sh *SessionHandler) Delete(c *gin.Context) {
	id, err := sessionID(c)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	if err := sh.sessionService.Delete(c.Request.Context(), id); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func sessionID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid session id")
	}
	return id, nil
}
