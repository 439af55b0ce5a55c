package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/planboard-backend/internal/types"
)

func TestAutoFillPlacesBacklogInOrder(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	first := env.mustActivity(t, milestone.ID, "Lesson 1", 45, 0, nil, nil)
	second := env.mustActivity(t, milestone.ID, "Lesson 2", 45, 1, nil, nil)
	monSlot := env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)
	wedSlot := env.mustSlot(t, subject.ID, int(time.Wednesday), 9*60, 10*60)

	result, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("expected 2 placements, got %d", result.Created)
	}
	if len(result.SkippedDates) != 0 {
		t.Fatalf("expected no skipped dates, got %v", result.SkippedDates)
	}

	monEntry, err := env.entryRepo.GetByActivityDate(env.ctx, nil, first.ID, monday)
	if err != nil || monEntry == nil {
		t.Fatalf("first activity should land on Monday: entry=%v err=%v", monEntry, err)
	}
	if monEntry.SlotID != monSlot.ID {
		t.Fatal("first activity placed in the wrong slot")
	}
	wedEntry, err := env.entryRepo.GetByActivityDate(env.ctx, nil, second.ID, monday.AddDate(0, 0, 2))
	if err != nil || wedEntry == nil {
		t.Fatalf("second activity should land on Wednesday: entry=%v err=%v", wedEntry, err)
	}
	if wedEntry.SlotID != wedSlot.ID {
		t.Fatal("second activity placed in the wrong slot")
	}
}

func TestAutoFillIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	env.mustActivity(t, milestone.ID, "Lesson 1", 45, 0, nil, nil)
	env.mustActivity(t, milestone.ID, "Lesson 2", 45, 1, nil, nil)
	env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)
	env.mustSlot(t, subject.ID, int(time.Wednesday), 9*60, 10*60)

	first, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created != 2 {
		t.Fatalf("first run should create 2, got %d", first.Created)
	}

	second, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 {
		t.Fatalf("second run on an unchanged week must create nothing, got %d", second.Created)
	}
}

func TestAutoFillSkipsBlockedDates(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	env.mustActivity(t, milestone.ID, "Lesson 1", 45, 0, nil, nil)
	env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)
	env.mustSlot(t, subject.ID, int(time.Wednesday), 9*60, 10*60)
	env.mustEvent(t, "PD day", types.EventTypePDDay, monday, monday.AddDate(0, 0, 1), true)

	result, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if len(result.SkippedDates) != 1 || result.SkippedDates[0] != monday.Format("2006-01-02") {
		t.Fatalf("expected Monday in skipped dates, got %v", result.SkippedDates)
	}
	if result.Created != 1 {
		t.Fatalf("backlog should still fill Wednesday, created=%d", result.Created)
	}

	entries, err := env.entryRepo.GetByUserDate(env.ctx, nil, env.userID, monday)
	if err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatal("nothing may be placed on the blocked date")
	}
}

func TestAutoFillPreservesManualAssignments(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	manual := env.mustActivity(t, milestone.ID, "Manual pick", 45, 0, nil, nil)
	backlog := env.mustActivity(t, milestone.ID, "Backlog item", 45, 1, nil, nil)
	monSlot := env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)
	env.mustSlot(t, subject.ID, int(time.Wednesday), 9*60, 10*60)

	placed, err := env.assignments.Assign(env.ctx, manual.ID, monSlot.ID, monday)
	if err != nil {
		t.Fatalf("manual assign: %v", err)
	}

	result, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected only the Wednesday slot filled, created=%d", result.Created)
	}

	monEntries, err := env.entryRepo.GetByUserDate(env.ctx, nil, env.userID, monday)
	if err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(monEntries) != 1 || monEntries[0].ID != placed.ID {
		t.Fatal("manual assignment must survive auto-fill untouched")
	}

	wedEntry, err := env.entryRepo.GetByActivityDate(env.ctx, nil, backlog.ID, monday.AddDate(0, 0, 2))
	if err != nil || wedEntry == nil {
		t.Fatalf("backlog item should fill Wednesday: entry=%v err=%v", wedEntry, err)
	}
}

func TestAutoFillSkipsActivitiesThatDontFit(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	env.mustActivity(t, milestone.ID, "Double period", 120, 0, nil, nil)
	short := env.mustActivity(t, milestone.ID, "Quick drill", 30, 1, nil, nil)
	env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)

	result, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected the fitting activity placed, created=%d", result.Created)
	}
	entry, err := env.entryRepo.GetByActivityDate(env.ctx, nil, short.ID, monday)
	if err != nil || entry == nil {
		t.Fatalf("shorter activity should be placed: entry=%v err=%v", entry, err)
	}
}

func TestAutoFillPrefersEarlierMilestone(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	early := env.mustMilestone(t, subject.ID, "Unit 1", monday.AddDate(0, 0, -7), monday.AddDate(0, 0, 21))
	late := env.mustMilestone(t, subject.ID, "Unit 2", monday, monday.AddDate(0, 0, 28))
	earlyActivity := env.mustActivity(t, early.ID, "Unit 1 lesson", 45, 0, nil, nil)
	env.mustActivity(t, late.ID, "Unit 2 lesson", 45, 0, nil, nil)
	env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)

	result, err := env.autofill.AutoFill(env.ctx, monday)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected one placement, got %d", result.Created)
	}
	entry, err := env.entryRepo.GetByActivityDate(env.ctx, nil, earlyActivity.ID, monday)
	if err != nil || entry == nil {
		t.Fatal("the earlier milestone's backlog must be drawn first")
	}
}

func TestAutoFillRejectsNonMondayWeekStart(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.autofill.AutoFill(env.ctx, monday.AddDate(0, 0, 1))
	wantAPIError(t, err, http.StatusBadRequest, "week_start_not_monday")
}
