package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type ScheduledEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.ScheduledEntry) ([]*types.ScheduledEntry, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.ScheduledEntry, error)
	GetByPlanID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.ScheduledEntry, error)
	GetByUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) ([]*types.ScheduledEntry, error)
	GetByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.ScheduledEntry, error)
	GetByActivityDate(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, date time.Time) (*types.ScheduledEntry, error)
	ExistsForSlotDate(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, date time.Time) (bool, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error
	DeleteByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error
}

type scheduledEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledEntryRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledEntryRepo {
	repoLog := baseLog.With("repo", "ScheduledEntryRepo")
	return &scheduledEntryRepo{db: db, log: repoLog}
}

func (r *scheduledEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.ScheduledEntry) ([]*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.ScheduledEntry{}, nil
	}
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.Date = types.DateOnly(e.Date)
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *scheduledEntryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledEntry
	if len(entryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", entryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scheduledEntryRepo) GetByPlanID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledEntry
	if err := transaction.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("date ASC, start_min ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scheduledEntryRepo) GetByUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) ([]*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, types.DateOnly(date)).
		Order("start_min ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByActivityIDs returns every entry over the whole planning horizon for
// the given activities; suggestion ranking and auto-fill treat any hit as
// "already scheduled".
func (r *scheduledEntryRepo) GetByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledEntry
	if len(activityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("activity_id IN ?", activityIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scheduledEntryRepo) GetByActivityDate(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, date time.Time) (*types.ScheduledEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledEntry
	if err := transaction.WithContext(ctx).
		Where("activity_id = ? AND date = ?", activityID, types.DateOnly(date)).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *scheduledEntryRepo) ExistsForSlotDate(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, date time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ScheduledEntry{}).
		Where("slot_id = ? AND date = ?", slotID, types.DateOnly(date)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *scheduledEntryRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entryIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", entryIDs).
		Delete(&types.ScheduledEntry{}).Error
}

func (r *scheduledEntryRepo) DeleteByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(activityIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("activity_id IN ?", activityIDs).
		Delete(&types.ScheduledEntry{}).Error
}
