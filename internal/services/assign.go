package services

import (
	"context"
	"fmt"
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

// AssignmentService is the single choke point for placing an activity into a
// slot on a date. Interactive placement and auto-fill both land here; all
// conflict policy lives in Assign and nowhere else.
type AssignmentService interface {
	Assign(ctx context.Context, activityID, slotID uuid.UUID, date time.Time) (*types.ScheduledEntry, error)
	Unassign(ctx context.Context, entryID uuid.UUID) error
}

type assignmentService struct {
	db           *gorm.DB
	log          *logger.Logger
	overlay      OverlayService
	activityRepo repos.ActivityRepo
	slotRepo     repos.TimetableSlotRepo
	planRepo     repos.WeeklyLessonPlanRepo
	entryRepo    repos.ScheduledEntryRepo
}

func NewAssignmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overlay OverlayService,
	activityRepo repos.ActivityRepo,
	slotRepo repos.TimetableSlotRepo,
	planRepo repos.WeeklyLessonPlanRepo,
	entryRepo repos.ScheduledEntryRepo,
) AssignmentService {
	return &assignmentService{
		db:           db,
		log:          baseLog.With("service", "AssignmentService"),
		overlay:      overlay,
		activityRepo: activityRepo,
		slotRepo:     slotRepo,
		planRepo:     planRepo,
		entryRepo:    entryRepo,
	}
}

// Assign validates and commits one placement. Rejections (blocked_slot,
// duration_conflict) leave no partial state. Assigning an activity to a
// second window on a date it already occupies is treated as a move, not an
// error: the prior entry is removed and the new one created atomically.
func (s *assignmentService) Assign(ctx context.Context, activityID, slotID uuid.UUID, date time.Time) (*types.ScheduledEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	day := types.DateOnly(date)

	activities, err := s.activityRepo.GetByIDs(ctx, nil, []uuid.UUID{activityID})
	if err != nil {
		s.log.Error("Assign: load activity failed", "error", err, "activity_id", activityID)
		return nil, err
	}
	if len(activities) == 0 || activities[0].UserID != rd.UserID {
		return nil, apierr.NotFound("activity_not_found", nil)
	}
	activity := activities[0]

	slots, err := s.slotRepo.GetByIDs(ctx, nil, []uuid.UUID{slotID})
	if err != nil {
		s.log.Error("Assign: load slot failed", "error", err, "slot_id", slotID)
		return nil, err
	}
	if len(slots) == 0 || slots[0].UserID != rd.UserID {
		return nil, apierr.NotFound("slot_not_found", nil)
	}
	slot := slots[0]

	if int(day.Weekday()) != slot.DayOfWeek {
		return nil, apierr.Validation("day_of_week_mismatch",
			fmt.Errorf("slot recurs on weekday %d, date falls on %d", slot.DayOfWeek, int(day.Weekday())))
	}

	availability, err := s.overlay.Resolve(ctx, nil, slot, day)
	if err != nil {
		return nil, err
	}
	if availability.Blocked {
		return nil, apierr.Conflict("blocked_slot",
			fmt.Errorf("slot is blocked by an all-day event on %s", day.Format("2006-01-02")))
	}
	if activity.DurationMins > availability.AvailableMins {
		return nil, apierr.Conflict("duration_conflict",
			fmt.Errorf("activity needs %d mins, slot has %d", activity.DurationMins, availability.AvailableMins))
	}

	var entry *types.ScheduledEntry
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prior, err := s.entryRepo.GetByActivityDate(ctx, tx, activityID, day)
		if err != nil {
			return err
		}
		if prior != nil {
			if err := s.entryRepo.DeleteByIDs(ctx, tx, []uuid.UUID{prior.ID}); err != nil {
				return fmt.Errorf("remove prior entry: %w", err)
			}
		}

		plan, err := s.planRepo.GetOrCreate(ctx, tx, rd.UserID, weekStartOf(day))
		if err != nil {
			return fmt.Errorf("resolve weekly plan: %w", err)
		}

		created, err := s.entryRepo.Create(ctx, tx, []*types.ScheduledEntry{{
			PlanID:     plan.ID,
			UserID:     rd.UserID,
			ActivityID: activityID,
			SlotID:     slotID,
			Date:       day,
			StartMin:   slot.StartMin,
			EndMin:     slot.EndMin,
		}})
		if err != nil {
			return err
		}
		entry = created[0]
		return nil
	}); err != nil {
		s.log.Error("Assign: commit failed", "error", err, "activity_id", activityID, "slot_id", slotID, "date", day)
		return nil, err
	}

	return entry, nil
}

func (s *assignmentService) Unassign(ctx context.Context, entryID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	entries, err := s.entryRepo.GetByIDs(ctx, nil, []uuid.UUID{entryID})
	if err != nil {
		s.log.Error("Unassign: load entry failed", "error", err, "entry_id", entryID)
		return err
	}
	if len(entries) == 0 || entries[0].UserID != rd.UserID {
		return apierr.NotFound("entry_not_found", nil)
	}
	return s.entryRepo.DeleteByIDs(ctx, nil, []uuid.UUID{entryID})
}

// weekStartOf returns the Monday of the week containing date.
func weekStartOf(date time.Time) time.Time {
	day := types.DateOnly(date)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
