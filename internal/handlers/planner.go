package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/planboard-backend/internal/services"
)

// PlannerHandler fronts the scheduling engine: suggestions, interactive
// assignment, reorder, and auto-fill.
type PlannerHandler struct {
	suggestions services.SuggestionService
	assignments services.AssignmentService
	sequence    services.SequenceService
	autofill    services.AutoFillService
}

func NewPlannerHandler(
	suggestions services.SuggestionService,
	assignments services.AssignmentService,
	sequence services.SequenceService,
	autofill services.AutoFillService,
) *PlannerHandler {
	return &PlannerHandler{
		suggestions: suggestions,
		assignments: assignments,
		sequence:    sequence,
		autofill:    autofill,
	}
}

// GET /api/planner/suggestions?milestoneId=&filters=Worksheet,Video&limit=10
func (h *PlannerHandler) Suggestions(c *gin.Context) {
	milestoneID, err := uuid.Parse(c.Query("milestoneId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_milestone_id", err)
		return
	}

	var tagFilter []string
	if raw := c.Query("filters"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tagFilter = append(tagFilter, tag)
			}
		}
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = parsed
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), milestoneID, tagFilter, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

// POST /api/planner/assign  body {activityId, slotId, date}
func (h *PlannerHandler) Assign(c *gin.Context) {
	var body struct {
		ActivityID uuid.UUID `json:"activityId" binding:"required"`
		SlotID     uuid.UUID `json:"slotId" binding:"required"`
		Date       string    `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}

	entry, err := h.assignments.Assign(c.Request.Context(), body.ActivityID, body.SlotID, date)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"entry": entry})
}

// DELETE /api/planner/assign/:entryId
func (h *PlannerHandler) Unassign(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
		return
	}

	if err := h.assignments.Unassign(c.Request.Context(), entryID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "unassigned"})
}

// POST /api/activities/reorder  body {milestoneId, fromIndex, toIndex}
func (h *PlannerHandler) Reorder(c *gin.Context) {
	var body struct {
		MilestoneID uuid.UUID `json:"milestoneId" binding:"required"`
		FromIndex   *int      `json:"fromIndex" binding:"required"`
		ToIndex     *int      `json:"toIndex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	ordered, err := h.sequence.Reorder(c.Request.Context(), body.MilestoneID, *body.FromIndex, *body.ToIndex)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"order": ordered})
}

// POST /api/planner/auto-fill?weekStart=2025-12-22
func (h *PlannerHandler) AutoFill(c *gin.Context) {
	weekStart, err := time.Parse("2006-01-02", c.Query("weekStart"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_week_start", err)
		return
	}

	result, err := h.autofill.AutoFill(c.Request.Context(), weekStart)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
