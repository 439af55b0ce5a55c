package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

type CalendarEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.CalendarEvent) ([]*types.CalendarEvent, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) ([]*types.CalendarEvent, error)
	// GetOverlapping returns the user's events whose [start, end) intersects
	// the given window.
	GetOverlapping(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.CalendarEvent, error)
	GetExternalByUIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, externalUIDs []string) ([]*types.CalendarEvent, error)
	Update(ctx context.Context, tx *gorm.DB, event *types.CalendarEvent) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) error
}

type calendarEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalendarEventRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEventRepo {
	repoLog := baseLog.With("repo", "CalendarEventRepo")
	return &calendarEventRepo{db: db, log: repoLog}
}

func (r *calendarEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.CalendarEvent) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return []*types.CalendarEvent{}, nil
	}
	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *calendarEventRepo) GetByIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CalendarEvent
	if len(eventIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", eventIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *calendarEventRepo) GetOverlapping(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CalendarEvent
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND start < ? AND \"end\" > ?", userID, end, start).
		Order("start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *calendarEventRepo) GetExternalByUIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, externalUIDs []string) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CalendarEvent
	if len(externalUIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND source = ? AND external_uid IN ?", userID, types.EventSourceExternalSync, externalUIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *calendarEventRepo) Update(ctx context.Context, tx *gorm.DB, event *types.CalendarEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(event).Error
}

func (r *calendarEventRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(eventIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", eventIDs).
		Delete(&types.CalendarEvent{}).Error
}
