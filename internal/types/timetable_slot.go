package types

import (
	"time"

	"github.com/google/uuid"
)

// TimetableSlot is a recurring weekly time window reserved for a subject.
// StartMin/EndMin are minutes since midnight; DayOfWeek follows time.Weekday
// (0 = Sunday). The full weekly template is replaced wholesale on edit.
type TimetableSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	DayOfWeek int       `gorm:"column:day_of_week;not null" json:"day_of_week"`
	StartMin  int       `gorm:"column:start_min;not null" json:"start_min"`
	EndMin    int       `gorm:"column:end_min;not null" json:"end_min"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TimetableSlot) TableName() string { return "timetable_slot" }

func (s *TimetableSlot) Length() int { return s.EndMin - s.StartMin }

// Window anchors the recurring slot onto a concrete date.
func (s *TimetableSlot) Window(date time.Time) (time.Time, time.Time) {
	day := DateOnly(date)
	start := day.Add(time.Duration(s.StartMin) * time.Minute)
	end := day.Add(time.Duration(s.EndMin) * time.Minute)
	return start, end
}
