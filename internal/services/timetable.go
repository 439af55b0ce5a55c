package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type TimetableSlotInput struct {
	SubjectID uuid.UUID `json:"subject_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
}

// TimetableService owns the recurring weekly template. A replace is
/// wholesale: the incoming slot list becomes the user's entire timetable.
type TimetableService interface {
	List(ctx context.Context) ([]*types.TimetableSlot, error)
	Replace(ctx context.Context, inputs []TimetableSlotInput) ([]*types.TimetableSlot, error)
}

type timetableService struct {
	db          *gorm.DB
	log         *logger.Logger
	slotRepo    repos.TimetableSlotRepo
	subjectRepo repos.SubjectRepo
}

func NewTimetableService(
	db *gorm.DB,
	baseLog *logger.Logger,
	slotRepo repos.TimetableSlotRepo,
	subjectRepo repos.SubjectRepo,
) TimetableService {
	return &timetableService{
		db:          db,
		log:         baseLog.With("service", "TimetableService"),
		slotRepo:    slotRepo,
		subjectRepo: subjectRepo,
	}
}

func (s *timetableService) List(ctx context.Context) ([]*types.TimetableSlot, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	return s.slotRepo.GetByUserID(ctx, nil, rd.UserID)
}

func (s *timetableService) Replace(ctx context.Context, inputs []TimetableSlotInput) ([]*types.TimetableSlot, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	subjectIDs := make([]uuid.UUID, 0, len(inputs))
	for i, in := range inputs {
		if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
			return nil, apierr.Validation("invalid_day_of_week",
				fmt.Errorf("slot %d: day_of_week %d out of range", i, in.DayOfWeek))
		}
		if in.StartMin < 0 || in.EndMin > 24*60 || in.EndMin <= in.StartMin {
			return nil, apierr.Validation("invalid_slot_window",
				fmt.Errorf("slot %d: window [%d,%d) invalid", i, in.StartMin, in.EndMin))
		}
		subjectIDs = append(subjectIDs, in.SubjectID)
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, subjectIDs)
	if err != nil {
		s.log.Error("Replace: load subjects failed", "error", err)
		return nil, err
	}
	owned := make(map[uuid.UUID]bool, len(subjects))
	for _, sub := range subjects {
		if sub.UserID == rd.UserID {
			owned[sub.ID] = true
		}
	}
	for i, in := range inputs {
		if !owned[in.SubjectID] {
			return nil, apierr.NotFound("subject_not_found",
				fmt.Errorf("slot %d references unknown subject", i))
		}
	}

	slots := make([]*types.TimetableSlot, 0, len(inputs))
	for _, in := range inputs {
		slots = append(slots, &types.TimetableSlot{
			SubjectID: in.SubjectID,
			UserID:    rd.UserID,
			DayOfWeek: in.DayOfWeek,
			StartMin:  in.StartMin,
			EndMin:    in.EndMin,
		})
	}
	return s.slotRepo.ReplaceForUser(ctx, nil, rd.UserID, slots)
}
