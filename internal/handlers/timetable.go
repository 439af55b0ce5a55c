package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/planboard-backend/internal/services"
)

type TimetableHandler struct {
	svc services.TimetableService
}

func NewTimetableHandler(svc services.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// GET /api/timetable
func (h *TimetableHandler) List(c *gin.Context) {
	slots, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"slots": slots})
}

// PUT /api/timetable
func (h *TimetableHandler) Replace(c *gin.Context) {
	var body struct {
		Slots []services.TimetableSlotInput `json:"slots"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	slots, err := h.svc.Replace(c.Request.Context(), body.Slots)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"slots": slots})
}
