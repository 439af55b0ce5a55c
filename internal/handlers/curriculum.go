package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/planboard-backend/internal/services"
)

// CurriculumHandler covers the subject / milestone / activity CRUD surface.
type CurriculumHandler struct {
	subjects   services.SubjectService
	milestones services.MilestoneService
	activities services.ActivityService
}

func NewCurriculumHandler(
	subjects services.SubjectService,
	milestones services.MilestoneService,
	activities services.ActivityService,
) *CurriculumHandler {
	return &CurriculumHandler{
		subjects:   subjects,
		milestones: milestones,
		activities: activities,
	}
}

// GET /api/subjects
func (h *CurriculumHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjects.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subjects": subjects})
}

// POST /api/subjects
func (h *CurriculumHandler) CreateSubject(c *gin.Context) {
	var input services.SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	subject, err := h.subjects.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subject": subject})
}

// PUT /api/subjects/:id
func (h *CurriculumHandler) UpdateSubject(c *gin.Context) {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_subject_id", err)
		return
	}
	var input services.SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	subject, err := h.subjects.Update(c.Request.Context(), subjectID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subject": subject})
}

// DELETE /api/subjects/:id
func (h *CurriculumHandler) DeleteSubject(c *gin.Context) {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_subject_id", err)
		return
	}
	if err := h.subjects.Delete(c.Request.Context(), subjectID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// GET /api/subjects/:id/milestones
func (h *CurriculumHandler) ListMilestones(c *gin.Context) {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_subject_id", err)
		return
	}
	milestones, err := h.milestones.ListForSubject(c.Request.Context(), subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"milestones": milestones})
}

// POST /api/milestones
func (h *CurriculumHandler) CreateMilestone(c *gin.Context) {
	var input services.MilestoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	milestone, err := h.milestones.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"milestone": milestone})
}

// PUT /api/milestones/:id
func (h *CurriculumHandler) UpdateMilestone(c *gin.Context) {
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_milestone_id", err)
		return
	}
	var input services.MilestoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	milestone, err := h.milestones.Update(c.Request.Context(), milestoneID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"milestone": milestone})
}

// DELETE /api/milestones/:id
func (h *CurriculumHandler) DeleteMilestone(c *gin.Context) {
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_milestone_id", err)
		return
	}
	if err := h.milestones.Delete(c.Request.Context(), milestoneID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// GET /api/milestones/:id/activities
func (h *CurriculumHandler) ListActivities(c *gin.Context) {
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_milestone_id", err)
		return
	}
	activities, err := h.activities.ListForMilestone(c.Request.Context(), milestoneID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activities": activities})
}

// POST /api/activities
func (h *CurriculumHandler) CreateActivity(c *gin.Context) {
	var input services.ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	activity, err := h.activities.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activity": activity})
}

// PUT /api/activities/:id
func (h *CurriculumHandler) UpdateActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", err)
		return
	}
	var input services.ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	activity, err := h.activities.Update(c.Request.Context(), activityID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activity": activity})
}

// DELETE /api/activities/:id
func (h *CurriculumHandler) DeleteActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", err)
		return
	}
	if err := h.activities.Delete(c.Request.Context(), activityID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}
