package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/planboard-backend/internal/services"
	"github.com/yungbote/planboard-backend/internal/types"
)

type CalendarHandler struct {
	svc     services.CalendarEventService
	syncSvc services.FeedSyncService
}

func NewCalendarHandler(svc services.CalendarEventService, syncSvc services.FeedSyncService) *CalendarHandler {
	return &CalendarHandler{svc: svc, syncSvc: syncSvc}
}

// GET /api/calendar-events?from=2025-01-01&to=2025-02-01
// from/to default to a one-year window around today.
func (h *CalendarHandler) List(c *gin.Context) {
	now := types.DateOnly(time.Now())
	from := now.AddDate(0, -6, 0)
	to := now.AddDate(0, 6, 0)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_from", err)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_to", err)
			return
		}
		to = parsed
	}
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		from = types.DateOnly(parsed)
		to = from.AddDate(0, 0, 1)
	}

	events, err := h.svc.List(c.Request.Context(), from, to)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

// POST /api/calendar-events
func (h *CalendarHandler) Create(c *gin.Context) {
	var body services.CalendarEventInput
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	event, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"event": event})
}

// PUT /api/calendar-events/:id
func (h *CalendarHandler) Update(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_event_id", err)
		return
	}

	var body services.CalendarEventInput
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	event, err := h.svc.Update(c.Request.Context(), eventID, body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"event": event})
}

// DELETE /api/calendar-events/:id
func (h *CalendarHandler) Delete(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_event_id", err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), eventID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// POST /api/calendar-events/sync/:feedType  body {feedUrl}
func (h *CalendarHandler) Sync(c *gin.Context) {
	feedType := c.Param("feedType")
	if feedType != "json" {
		RespondError(c, http.StatusBadRequest, "unsupported_feed_type", nil)
		return
	}

	var body struct {
		FeedURL string `json:"feedUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.syncSvc.ImportFeed(c.Request.Context(), body.FeedURL)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/calendar-events/sync imports every feed in the registry.
func (h *CalendarHandler) SyncAll(c *gin.Context) {
	results, err := h.syncSvc.SyncAll(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}
