package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/types"
)

// SlotAvailability is the resolved state of one recurring slot on one
// concrete date.
type SlotAvailability struct {
	Slot          *types.TimetableSlot `json:"slot"`
	Date          time.Time            `json:"date"`
	AvailableMins int                  `json:"available_mins"`
	Blocked       bool                 `json:"blocked"`
}

// OverlayService merges a date's recurring timetable slots with calendar
// exceptions to produce true open teaching time per slot.
type OverlayService interface {
	AvailableDuration(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (int, error)
	IsDateBlocked(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (bool, error)
	Resolve(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (*SlotAvailability, error)
}

type overlayService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.CalendarEventRepo
}

func NewOverlayService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.CalendarEventRepo) OverlayService {
	return &overlayService{
		db:        db,
		log:       baseLog.With("service", "OverlayService"),
		eventRepo: eventRepo,
	}
}

func (s *overlayService) AvailableDuration(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (int, error) {
	res, err := s.Resolve(ctx, tx, slot, date)
	if err != nil {
		return 0, err
	}
	return res.AvailableMins, nil
}

func (s *overlayService) IsDateBlocked(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (bool, error) {
	res, err := s.Resolve(ctx, tx, slot, date)
	if err != nil {
		return false, err
	}
	return res.Blocked, nil
}

func (s *overlayService) Resolve(ctx context.Context, tx *gorm.DB, slot *types.TimetableSlot, date time.Time) (*SlotAvailability, error) {
	windowStart, windowEnd := slot.Window(date)
	events, err := s.eventRepo.GetOverlapping(ctx, tx, slot.UserID, windowStart, windowEnd)
	if err != nil {
		s.log.Error("Resolve: load events failed", "error", err, "slot_id", slot.ID, "date", types.DateOnly(date))
		return nil, err
	}
	available, blocked := resolveSlot(slot, date, events)
	return &SlotAvailability{
		Slot:          slot,
		Date:          types.DateOnly(date),
		AvailableMins: available,
		Blocked:       blocked,
	}, nil
}

// resolveSlot computes the open minutes of slot on date given the events
// intersecting its window. Any blocking event (holiday, PD day, or anything
// marked all-day) zeroes the slot outright; partial events subtract the
// union of their clipped minute ranges so stacked exceptions never
// double-count. The result is never negative.
func resolveSlot(slot *types.TimetableSlot, date time.Time, events []*types.CalendarEvent) (int, bool) {
	windowStart, windowEnd := slot.Window(date)

	var intervals []minuteInterval
	for _, ev := range events {
		if !ev.Overlaps(windowStart, windowEnd) {
			continue
		}
		if ev.Blocking() {
			return 0, true
		}
		start := clampToWindow(ev.Start, windowStart, windowEnd)
		end := clampToWindow(ev.End, windowStart, windowEnd)
		if !end.After(start) {
			continue
		}
		intervals = append(intervals, minuteInterval{
			start: int(start.Sub(windowStart).Minutes()),
			end:   int(end.Sub(windowStart).Minutes()),
		})
	}

	blockedMins := unionLength(intervals)
	available := slot.Length() - blockedMins
	if available < 0 {
		available = 0
	}
	return available, false
}

type minuteInterval struct {
	start int
	end   int
}

// unionLength merges overlapping intervals and returns the total covered
// length.
func unionLength(intervals []minuteInterval) int {
	if len(intervals) == 0 {
		return 0
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	total := 0
	curStart, curEnd := intervals[0].start, intervals[0].end
	for _, iv := range intervals[1:] {
		if iv.start > curEnd {
			total += curEnd - curStart
			curStart, curEnd = iv.start, iv.end
			continue
		}
		if iv.end > curEnd {
			curEnd = iv.end
		}
	}
	total += curEnd - curStart
	return total
}

func clampToWindow(t, start, end time.Time) time.Time {
	if t.Before(start) {
		return start
	}
	if t.After(end) {
		return end
	}
	return t
}
