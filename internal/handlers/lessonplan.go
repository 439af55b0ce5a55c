package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/planboard-backend/internal/services"
)

type LessonPlanHandler struct {
	plans services.LessonPlanService
}

func NewLessonPlanHandler(plans services.LessonPlanService) *LessonPlanHandler {
	return &LessonPlanHandler{plans: plans}
}

// PUT /api/lesson-plans/:weekStart fetches the week's plan, creating it
// on first touch.
func (h *LessonPlanHandler) GetWeek(c *gin.Context) {
	weekStart, err := time.Parse("2006-01-02", c.Param("weekStart"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_week_start", err)
		return
	}

	week, err := h.plans.GetWeek(c.Request.Context(), weekStart)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, week)
}
