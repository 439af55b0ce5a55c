package types

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyLessonPlan anchors one user's schedule for one week. WeekStart is
// always a Monday; the plan is created lazily on first interaction with the
// week.
type WeeklyLessonPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_week,unique,priority:1" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	WeekStart time.Time `gorm:"column:week_start;type:date;not null;index:idx_plan_week,unique,priority:2" json:"week_start"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (WeeklyLessonPlan) TableName() string { return "weekly_lesson_plan" }

// ScheduledEntry joins one activity to one concrete date/time window. An
// activity appears at most once per date; it may recur across weeks.
type ScheduledEntry struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"plan_id"`
	Plan       *WeeklyLessonPlan `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityID uuid.UUID         `gorm:"type:uuid;not null;index:idx_entry_activity_date,unique,priority:1" json:"activity_id"`
	Activity   *Activity         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	SlotID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"slot_id"`
	Slot       *TimetableSlot    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SlotID;references:ID" json:"slot,omitempty"`
	Date       time.Time         `gorm:"column:date;type:date;not null;index:idx_entry_activity_date,unique,priority:2" json:"date"`
	StartMin   int               `gorm:"column:start_min;not null" json:"start_min"`
	EndMin     int               `gorm:"column:end_min;not null" json:"end_min"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updated_at"`
}

func (ScheduledEntry) TableName() string { return "scheduled_entry" }

// DateOnly truncates t to midnight UTC, the canonical form for all date
// columns.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekMonday reports whether date falls on a Monday.
func WeekMonday(date time.Time) bool {
	return date.Weekday() == time.Monday
}
