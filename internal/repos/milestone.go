package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type MilestoneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, milestones []*types.Milestone) ([]*types.Milestone, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) ([]*types.Milestone, error)
	GetBySubjectIDs(ctx context.Context, tx *gorm.DB, subjectIDs []uuid.UUID) ([]*types.Milestone, error)
	GetActiveForSubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, date time.Time) ([]*types.Milestone, error)
	Update(ctx context.Context, tx *gorm.DB, milestone *types.Milestone) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	repoLog := baseLog.With("repo", "MilestoneRepo")
	return &milestoneRepo{db: db, log: repoLog}
}

func (r *milestoneRepo) Create(ctx context.Context, tx *gorm.DB, milestones []*types.Milestone) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(milestones) == 0 {
		return []*types.Milestone{}, nil
	}
	for _, m := range milestones {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.StartDate = types.DateOnly(m.StartDate)
		m.EndDate = types.DateOnly(m.EndDate)
	}

	if err := transaction.WithContext(ctx).Create(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *milestoneRepo) GetByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Milestone
	if len(milestoneIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", milestoneIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *milestoneRepo) GetBySubjectIDs(ctx context.Context, tx *gorm.DB, subjectIDs []uuid.UUID) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Milestone
	if len(subjectIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subject_id IN ?", subjectIDs).
		Order("start_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetActiveForSubject returns milestones whose [start_date, end_date] window
// contains date, ordered by start_date so the earliest-starting unit wins
// ties during auto-fill.
func (r *milestoneRepo) GetActiveForSubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, date time.Time) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	day := types.DateOnly(date)
	var results []*types.Milestone
	if err := transaction.WithContext(ctx).
		Where("subject_id = ? AND start_date <= ? AND end_date >= ?", subjectID, day, day).
		Order("start_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *milestoneRepo) Update(ctx context.Context, tx *gorm.DB, milestone *types.Milestone) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	milestone.StartDate = types.DateOnly(milestone.StartDate)
	milestone.EndDate = types.DateOnly(milestone.EndDate)
	return transaction.WithContext(ctx).Save(milestone).Error
}

func (r *milestoneRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(milestoneIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", milestoneIDs).
		Delete(&types.Milestone{}).Error
}
