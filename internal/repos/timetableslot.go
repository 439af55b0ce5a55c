package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type TimetableSlotRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, slotIDs []uuid.UUID) ([]*types.TimetableSlot, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TimetableSlot, error)
	// ReplaceForUser swaps the user's full weekly template in one shot; a PUT
	// of the timetable is wholesale, never a merge.
	ReplaceForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, slots []*types.TimetableSlot) ([]*types.TimetableSlot, error)
}

type timetableSlotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimetableSlotRepo(db *gorm.DB, baseLog *logger.Logger) TimetableSlotRepo {
	repoLog := baseLog.With("repo", "TimetableSlotRepo")
	return &timetableSlotRepo{db: db, log: repoLog}
}

func (r *timetableSlotRepo) GetByIDs(ctx context.Context, tx *gorm.DB, slotIDs []uuid.UUID) ([]*types.TimetableSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TimetableSlot
	if len(slotIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", slotIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *timetableSlotRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TimetableSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TimetableSlot
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week ASC, start_min ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *timetableSlotRepo) ReplaceForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, slots []*types.TimetableSlot) ([]*types.TimetableSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	run := func(inner *gorm.DB) error {
		if err := inner.WithContext(ctx).
			Where("user_id = ?", userID).
			Delete(&types.TimetableSlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for _, s := range slots {
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			s.UserID = userID
		}
		return inner.WithContext(ctx).Create(&slots).Error
	}

	if tx != nil {
		if err := run(transaction); err != nil {
			return nil, err
		}
		return slots, nil
	}
	if err := transaction.WithContext(ctx).Transaction(run); err != nil {
		return nil, err
	}
	return slots, nil
}
