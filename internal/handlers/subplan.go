package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/planboard-backend/internal/services"
)

type SubPlanHandler struct {
	subplans services.SubPlanService
}

func NewSubPlanHandler(subplans services.SubPlanService) *SubPlanHandler {
	return &SubPlanHandler{subplans: subplans}
}

// POST /api/sub-plan/generate?date=2025-12-22
// Returns the rendered document as a PDF attachment. Pass format=json to get
// the composed document without rendering.
func (h *SubPlanHandler) Generate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}

	doc, err := h.subplans.ComposeForDate(c.Request.Context(), date)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	if c.Query("format") == "json" {
		RespondOK(c, doc)
		return
	}

	pdf, err := h.subplans.RenderPDF(doc)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("sub-plan-%s.pdf", date.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
