package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type WeeklyLessonPlanRepo interface {
	// GetOrCreate returns the user's plan for weekStart, creating it on first
	// interaction with that week.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, weekStart time.Time) (*types.WeeklyLessonPlan, error)
	GetByUserWeek(ctx context.Context, tx *gorm.DB, userID uuid.UUID, weekStart time.Time) (*types.WeeklyLessonPlan, error)
}

type weeklyLessonPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyLessonPlanRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyLessonPlanRepo {
	repoLog := baseLog.With("repo", "WeeklyLessonPlanRepo")
	return &weeklyLessonPlanRepo{db: db, log: repoLog}
}

func (r *weeklyLessonPlanRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, weekStart time.Time) (*types.WeeklyLessonPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	week := types.DateOnly(weekStart)
	existing, err := r.GetByUserWeek(ctx, transaction, userID, week)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	plan := &types.WeeklyLessonPlan{
		ID:        uuid.New(),
		UserID:    userID,
		WeekStart: week,
	}
	if err := transaction.WithContext(ctx).Create(plan).Error; err != nil {
		// Lost a create race; the winner's row is the plan.
		if won, getErr := r.GetByUserWeek(ctx, transaction, userID, week); getErr == nil && won != nil {
			return won, nil
		}
		return nil, err
	}
	return plan, nil
}

func (r *weeklyLessonPlanRepo) GetByUserWeek(ctx context.Context, tx *gorm.DB, userID uuid.UUID, weekStart time.Time) (*types.WeeklyLessonPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var plan types.WeeklyLessonPlan
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, types.DateOnly(weekStart)).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
