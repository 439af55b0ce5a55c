package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeHoliday  = "HOLIDAY"
	EventTypeAssembly = "ASSEMBLY"
	EventTypeTrip     = "TRIP"
	EventTypePDDay    = "PD_DAY"
	EventTypeCustom   = "CUSTOM"

	EventSourceManual       = "MANUAL"
	EventSourceExternalSync = "EXTERNAL_SYNC"
)

// CalendarEvent is a concrete, date-anchored exception to the recurring
// timetable. Externally synced events carry a non-nil ExternalUID and are
// unique per (user, source, external_uid) so a re-sync never duplicates.
type CalendarEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_event_external,priority:1" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Start       time.Time `gorm:"column:start;not null;index" json:"start"`
	End         time.Time `gorm:"column:end;not null" json:"end"`
	AllDay      bool      `gorm:"column:all_day;not null" json:"all_day"`
	EventType   string    `gorm:"column:event_type;not null" json:"event_type"`
	Source      string    `gorm:"column:source;not null;index:idx_event_external,priority:2" json:"source"`
	ExternalUID *string   `gorm:"column:external_uid;index:idx_event_external,unique,priority:3" json:"external_uid,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (CalendarEvent) TableName() string { return "calendar_event" }

// Blocking reports whether the event takes out entire slots rather than just
// its own time range. Holidays and PD days block the whole day outright;
// any other type blocks the day only when marked all-day.
func (e *CalendarEvent) Blocking() bool {
	switch e.EventType {
	case EventTypeHoliday, EventTypePDDay:
		return true
	}
	return e.AllDay
}

// Overlaps reports whether [e.Start, e.End) intersects [start, end).
func (e *CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}
