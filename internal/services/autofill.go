package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type AutoFillResult struct {
	Created      int      `json:"created"`
	SkippedDates []string `json:"skipped_dates"`
}

// AutoFillService batch-assigns backlog activities across one week. It only
// fills empty slot-dates, so running it twice on an unchanged week creates
// nothing on the second pass.
type AutoFillService interface {
	AutoFill(ctx context.Context, weekStart time.Time) (*AutoFillResult, error)
}

type autoFillService struct {
	db            *gorm.DB
	log           *logger.Logger
	overlay       OverlayService
	assignments   AssignmentService
	slotRepo      repos.TimetableSlotRepo
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
	entryRepo     repos.ScheduledEntryRepo
}

func NewAutoFillService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overlay OverlayService,
	assignments AssignmentService,
	slotRepo repos.TimetableSlotRepo,
	milestoneRepo repos.MilestoneRepo,
	activityRepo repos.ActivityRepo,
	entryRepo repos.ScheduledEntryRepo,
) AutoFillService {
	return &autoFillService{
		db:            db,
		log:           baseLog.With("service", "AutoFillService"),
		overlay:       overlay,
		assignments:   assignments,
		slotRepo:      slotRepo,
		milestoneRepo: milestoneRepo,
		activityRepo:  activityRepo,
		entryRepo:     entryRepo,
	}
}

func (s *autoFillService) AutoFill(ctx context.Context, weekStart time.Time) (*AutoFillResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	week := types.DateOnly(weekStart)
	if week.Weekday() != time.Monday {
		return nil, apierr.Validation("week_start_not_monday", nil)
	}

	slots, err := s.slotRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		s.log.Error("AutoFill: load slots failed", "error", err)
		return nil, err
	}

	result := &AutoFillResult{SkippedDates: []string{}}
	skippedSet := make(map[string]bool)
	// Activities placed during this run; one run never offers the same
	// activity twice.
	claimed := make(map[uuid.UUID]bool)
	backlogs := make(map[uuid.UUID][]*types.Activity)
	scheduledKnown := make(map[uuid.UUID]bool)

	for _, slot := range slots {
		for offset := 0; offset < 7; offset++ {
			date := week.AddDate(0, 0, offset)
			if int(date.Weekday()) != slot.DayOfWeek {
				continue
			}

			availability, err := s.overlay.Resolve(ctx, nil, slot, date)
			if err != nil {
				return nil, err
			}
			if availability.Blocked {
				key := date.Format("2006-01-02")
				if !skippedSet[key] {
					skippedSet[key] = true
					result.SkippedDates = append(result.SkippedDates, key)
				}
				continue
			}

			// Auto-fill never overwrites an existing entry.
			occupied, err := s.entryRepo.ExistsForSlotDate(ctx, nil, slot.ID, date)
			if err != nil {
				return nil, err
			}
			if occupied {
				continue
			}

			candidate, err := s.pickCandidate(ctx, slot.SubjectID, date, availability.AvailableMins, claimed, backlogs, scheduledKnown)
			if err != nil {
				return nil, err
			}
			if candidate == nil {
				// Nothing in the backlog fits; the slot stays open.
				continue
			}

			if _, err := s.assignments.Assign(ctx, candidate.ID, slot.ID, date); err != nil {
				if ae := apierr.From(err); ae != nil && ae.Status == http.StatusConflict {
					// Lost a race since the availability read; leave the slot
					// alone and move on.
					s.log.Warn("AutoFill: assign rejected", "code", ae.Code, "activity_id", candidate.ID, "date", date)
					continue
				}
				return nil, err
			}
			claimed[candidate.ID] = true
			result.Created++
		}
	}

	return result, nil
}

// pickCandidate selects the unscheduled backlog activity with the lowest
// (milestone start date, order index) tuple whose duration fits, among the
// milestones active for the subject on date.
func (s *autoFillService) pickCandidate(
	ctx context.Context,
	subjectID uuid.UUID,
	date time.Time,
	availableMins int,
	claimed map[uuid.UUID]bool,
	backlogs map[uuid.UUID][]*types.Activity,
	scheduledKnown map[uuid.UUID]bool,
) (*types.Activity, error) {
	milestones, err := s.milestoneRepo.GetActiveForSubject(ctx, nil, subjectID, date)
	if err != nil {
		return nil, err
	}

	for _, m := range milestones {
		backlog, ok := backlogs[m.ID]
		if !ok {
			activities, err := s.activityRepo.GetByMilestoneID(ctx, nil, m.ID)
			if err != nil {
				return nil, err
			}
			activityIDs := make([]uuid.UUID, 0, len(activities))
			for _, a := range activities {
				activityIDs = append(activityIDs, a.ID)
			}
			entries, err := s.entryRepo.GetByActivityIDs(ctx, nil, activityIDs)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				scheduledKnown[e.ActivityID] = true
			}
			backlog = activities
			backlogs[m.ID] = backlog
		}

		for _, a := range backlog {
			if claimed[a.ID] || scheduledKnown[a.ID] {
				continue
			}
			if a.DurationMins <= availableMins {
				return a, nil
			}
		}
	}
	return nil, nil
}
