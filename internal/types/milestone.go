package types

import (
	"time"

	"github.com/google/uuid"
)

// Milestone is a date-bounded curriculum unit owning an ordered backlog of
// activities. Activities may only be scheduled on dates inside
// [StartDate, EndDate].
type Milestone struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null" json:"end_date"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Milestone) TableName() string { return "milestone" }

func (m *Milestone) ContainsDate(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(m.StartDate)) && !d.After(DateOnly(m.EndDate))
}
