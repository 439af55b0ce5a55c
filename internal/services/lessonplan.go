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

type WeekSchedule struct {
	Plan     *types.WeeklyLessonPlan `json:"plan"`
	Schedule []*types.ScheduledEntry `json:"schedule"`
}

// LessonPlanService resolves one user-week: the plan row (created lazily on
// first interaction) plus its scheduled entries.
type LessonPlanService interface {
	GetWeek(ctx context.Context, weekStart time.Time) (*WeekSchedule, error)
}

type lessonPlanService struct {
	db        *gorm.DB
	log       *logger.Logger
	planRepo  repos.WeeklyLessonPlanRepo
	entryRepo repos.ScheduledEntryRepo
}

func NewLessonPlanService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo repos.WeeklyLessonPlanRepo,
	entryRepo repos.ScheduledEntryRepo,
) LessonPlanService {
	return &lessonPlanService{
		db:        db,
		log:       baseLog.With("service", "LessonPlanService"),
		planRepo:  planRepo,
		entryRepo: entryRepo,
	}
}

func (s *lessonPlanService) GetWeek(ctx context.Context, weekStart time.Time) (*WeekSchedule, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	week := types.DateOnly(weekStart)
	if week.Weekday() != time.Monday {
		return nil, apierr.Validation("week_start_not_monday", nil)
	}

	plan, err := s.planRepo.GetOrCreate(ctx, nil, rd.UserID, week)
	if err != nil {
		s.log.Error("GetWeek: resolve plan failed", "error", err, "week_start", week)
		return nil, err
	}

	entries, err := s.entryRepo.GetByPlanID(ctx, nil, plan.ID)
	if err != nil {
		s.log.Error("GetWeek: load entries failed", "error", err, "plan_id", plan.ID)
		return nil, err
	}
	if entries == nil {
		entries = []*types.ScheduledEntry{}
	}

	return &WeekSchedule{Plan: plan, Schedule: entries}, nil
}
