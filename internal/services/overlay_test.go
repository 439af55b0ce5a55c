package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/planboard-backend/internal/types"
)

func testSlot(startMin, endMin int) *types.TimetableSlot {
	return &types.TimetableSlot{
		ID:        uuid.New(),
		DayOfWeek: int(time.Monday),
		StartMin:  startMin,
		EndMin:    endMin,
	}
}

func timedEvent(eventType string, start, end time.Time) *types.CalendarEvent {
	return &types.CalendarEvent{Title: "event", EventType: eventType, Start: start, End: end}
}

func TestResolveSlotNoEvents(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	available, blocked := resolveSlot(slot, monday, nil)
	if blocked {
		t.Fatal("empty day should not be blocked")
	}
	if available != 60 {
		t.Fatalf("expected full 60 mins, got %d", available)
	}
}

func TestResolveSlotPartialOverlapSubtractsClippedRange(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	// 8:30-9:15 overlaps the window by 15 minutes.
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeAssembly, atClock(monday, 8, 30), atClock(monday, 9, 15)),
	}
	available, blocked := resolveSlot(slot, monday, events)
	if blocked {
		t.Fatal("partial event should not block the slot")
	}
	if available != 45 {
		t.Fatalf("expected 45 mins, got %d", available)
	}
}

func TestResolveSlotOverlappingEventsNeverDoubleCount(t *testing.T) {
	slot := testSlot(9*60, 11*60)
	// 9:00-10:00 and 9:30-10:30 overlap each other; their union is 90 mins.
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeAssembly, atClock(monday, 9, 0), atClock(monday, 10, 0)),
		timedEvent(types.EventTypeTrip, atClock(monday, 9, 30), atClock(monday, 10, 30)),
	}
	available, blocked := resolveSlot(slot, monday, events)
	if blocked {
		t.Fatal("timed events should not block the slot")
	}
	if available != 30 {
		t.Fatalf("expected 30 mins, got %d", available)
	}
}

func TestResolveSlotDisjointEventsSubtractIndependently(t *testing.T) {
	slot := testSlot(9*60, 11*60)
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeAssembly, atClock(monday, 9, 0), atClock(monday, 9, 20)),
		timedEvent(types.EventTypeCustom, atClock(monday, 10, 30), atClock(monday, 10, 50)),
	}
	available, _ := resolveSlot(slot, monday, events)
	if available != 80 {
		t.Fatalf("expected 80 mins, got %d", available)
	}
}

func TestResolveSlotFullCoverIsZeroButNotBlocked(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeTrip, atClock(monday, 8, 0), atClock(monday, 12, 0)),
	}
	available, blocked := resolveSlot(slot, monday, events)
	if blocked {
		t.Fatal("timed trip should not mark the slot blocked")
	}
	if available != 0 {
		t.Fatalf("expected 0 mins, got %d", available)
	}
}

func TestResolveSlotHolidayBlocksOutright(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeHoliday, atClock(monday, 9, 15), atClock(monday, 9, 30)),
	}
	available, blocked := resolveSlot(slot, monday, events)
	if !blocked {
		t.Fatal("holiday should block the slot")
	}
	if available != 0 {
		t.Fatalf("blocked slot must report 0 mins, got %d", available)
	}
}

func TestResolveSlotAllDayEventBlocks(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	ev := timedEvent(types.EventTypeCustom, monday, monday.AddDate(0, 0, 1))
	ev.AllDay = true
	available, blocked := resolveSlot(slot, monday, []*types.CalendarEvent{ev})
	if !blocked || available != 0 {
		t.Fatalf("all-day event should block: available=%d blocked=%v", available, blocked)
	}
}

func TestResolveSlotIgnoresEventsOutsideWindow(t *testing.T) {
	slot := testSlot(9*60, 10*60)
	events := []*types.CalendarEvent{
		timedEvent(types.EventTypeAssembly, atClock(monday, 7, 0), atClock(monday, 9, 0)),
		timedEvent(types.EventTypeAssembly, atClock(monday, 10, 0), atClock(monday, 11, 0)),
	}
	available, blocked := resolveSlot(slot, monday, events)
	if blocked || available != 60 {
		t.Fatalf("adjacent events must not affect the slot: available=%d blocked=%v", available, blocked)
	}
}

func TestUnionLength(t *testing.T) {
	cases := []struct {
		name      string
		intervals []minuteInterval
		want      int
	}{
		{"empty", nil, 0},
		{"single", []minuteInterval{{0, 30}}, 30},
		{"disjoint", []minuteInterval{{0, 10}, {20, 40}}, 30},
		{"nested", []minuteInterval{{0, 60}, {10, 20}}, 60},
		{"chained", []minuteInterval{{0, 20}, {20, 40}, {30, 50}}, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := unionLength(tc.intervals); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestOverlayResolveReadsPersistedEvents(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	slot := env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)
	env.mustEvent(t, "Fire drill", types.EventTypeCustom, atClock(monday, 9, 0), atClock(monday, 9, 20), false)

	res, err := env.overlay.Resolve(env.ctx, nil, slot, monday)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Blocked {
		t.Fatal("timed event should not block")
	}
	if res.AvailableMins != 40 {
		t.Fatalf("expected 40 mins, got %d", res.AvailableMins)
	}
	if !res.Date.Equal(monday) {
		t.Fatalf("expected normalized date %v, got %v", monday, res.Date)
	}
}
