package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.Activity, error)
	GetByMilestoneID(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID) ([]*types.Activity, error)
	CountByMilestoneID(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, activity *types.Activity) error
	SetOrderIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, orderIndex int) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}
	for _, a := range activities {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if len(a.Tags) == 0 {
			a.SetTags(nil)
		}
		if len(a.OutcomeIDs) == 0 {
			a.SetOutcomes(nil)
		}
	}

	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if len(activityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", activityIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByMilestoneID returns the milestone's backlog in curriculum order.
func (r *activityRepo) GetByMilestoneID(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if err := transaction.WithContext(ctx).
		Where("milestone_id = ?", milestoneID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) CountByMilestoneID(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("milestone_id = ?", milestoneID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) Update(ctx context.Context, tx *gorm.DB, activity *types.Activity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(activity).Error
}

func (r *activityRepo) SetOrderIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ?", activityID).
		Update("order_index", orderIndex).Error
}

func (r *activityRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(activityIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", activityIDs).
		Delete(&types.Activity{}).Error
}
