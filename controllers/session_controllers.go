package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/events"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/services"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
)

type SessionController struct {
	Service *services.SessionService
}

func NewSessionController(svc *services.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

// CreateSession -> open a new ordering window for a table
func (sc *SessionController) CreateSession(c *gin.Context) {
	type reqBody struct {
		TableNumber     int `json:"table_number" binding:"required"`
		DurationMinutes int `json:"duration_minutes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Service.CreateSession(req.TableNumber, req.DurationMinutes)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	events.BroadcastSessionUpdate(*session)

	// end_time goes out as RFC3339 with offset so clients never reinterpret
	// it in their own zone
	utils.RespondJSON(c, http.StatusCreated, "Order session created", gin.H{
		"session_id":   session.SessionID,
		"table_number": session.TableNumber,
		"end_time":     session.EndTime.Format(time.RFC3339),
	})
}

// ApplyAction -> pause / resume / stop a session
func (sc *SessionController) ApplyAction(c *gin.Context) {
	sessionID := c.Param("session_id")

	type reqBody struct {
		Action string `json:"action" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Service.ApplyAction(sessionID, req.Action)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	events.BroadcastSessionUpdate(*session)

	utils.RespondJSON(c, http.StatusOK, "Session "+req.Action+" successful", gin.H{
		"session_id": sessionID,
		"action":     req.Action,
	})
}

// ResetSession -> give the session a fresh 30 minute window from now
func (sc *SessionController) ResetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := sc.Service.ResetSession(sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	events.BroadcastSessionUpdate(*session)

	utils.RespondJSON(c, http.StatusOK, "Session reset to 30 minutes", gin.H{
		"session_id":   sessionID,
		"new_end_time": session.EndTime.Format(time.RFC3339),
	})
}

// GetSession -> session status, polled by the ordering UI countdown
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := sc.Service.GetSession(sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	now := time.Now()
	utils.RespondJSON(c, http.StatusOK, "Session detail", gin.H{
		"session":           session,
		"is_active":         session.IsActive(now),
		"remaining_seconds": int(session.RemainingAt(now).Seconds()),
	})
}

// RepairBrokenSessions -> batch sweep that rewrites implausibly long windows
func (sc *SessionController) RepairBrokenSessions(c *gin.Context) {
	fixed, err := sc.Service.RepairBrokenSessions()
	if err != nil {
		respondSessionError(c, err)
		return
	}

	events.BroadcastSessionsRepaired(fixed)

	utils.RespondJSON(c, http.StatusOK, "Broken sessions repaired", gin.H{
		"fixed_count": fixed,
	})
}

// respondSessionError maps service errors onto HTTP statuses so handlers do
// not re-derive the cause.
func respondSessionError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		actionErr     *services.InvalidActionError
		storeErr      *services.StoreUnavailableError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &actionErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrSessionFinished):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &storeErr):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
