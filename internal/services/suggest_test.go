package services

import (
	"testing"
	"time"
)

func TestSuggestExcludesScheduledActivities(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	scheduled := env.mustActivity(t, milestone.ID, "Already placed", 45, 0, nil, nil)
	pending := env.mustActivity(t, milestone.ID, "Still open", 45, 1, nil, nil)
	slot := env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)

	if _, err := env.assignments.Assign(env.ctx, scheduled.ID, slot.ID, monday); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, nil, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Fatalf("expected only the unscheduled activity, got %d results", len(got))
	}
}

func TestSuggestRanksUncoveredOutcomesFirst(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	// "frac-1" is covered once the first activity is scheduled.
	base := env.mustActivity(t, milestone.ID, "Covers frac-1", 45, 0, nil, []string{"frac-1"})
	redundant := env.mustActivity(t, milestone.ID, "Repeats frac-1", 45, 1, nil, []string{"frac-1"})
	fresh := env.mustActivity(t, milestone.ID, "Covers frac-2 and frac-3", 45, 2, nil, []string{"frac-2", "frac-3"})
	slot := env.mustSlot(t, subject.ID, int(time.Monday), 9*60, 10*60)

	if _, err := env.assignments.Assign(env.ctx, base.ID, slot.ID, monday); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, nil, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ID != fresh.ID {
		t.Fatal("activity closing two outcome gaps must rank first")
	}
	if got[1].ID != redundant.ID {
		t.Fatal("activity repeating a covered outcome must rank last")
	}
}

func TestSuggestBreaksTiesByCurriculumOrder(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	first := env.mustActivity(t, milestone.ID, "Lesson A", 45, 0, nil, []string{"o-1"})
	second := env.mustActivity(t, milestone.ID, "Lesson B", 45, 1, nil, []string{"o-2"})

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, nil, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatal("equal scores must fall back to order_index")
	}
}

func TestSuggestTagFilterGatesCandidates(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	worksheet := env.mustActivity(t, milestone.ID, "Worksheet drill", 45, 0, []string{"Worksheet"}, []string{"o-1"})
	env.mustActivity(t, milestone.ID, "Video intro", 45, 1, []string{"Video"}, []string{"o-2"})

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, []string{"Worksheet"}, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 1 || got[0].ID != worksheet.ID {
		t.Fatalf("tag filter should keep only the worksheet, got %d results", len(got))
	}
}

func TestSuggestTagFilterMatchesAnyTag(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	both := env.mustActivity(t, milestone.ID, "Mixed media", 45, 0, []string{"Video", "Worksheet"}, nil)

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, []string{"Worksheet"}, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 1 || got[0].ID != both.ID {
		t.Fatal("an activity matching any requested tag passes the filter")
	}
}

func TestSuggestHonorsLimit(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	for i := 0; i < 5; i++ {
		env.mustActivity(t, milestone.ID, "Lesson", 45, i, nil, nil)
	}

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, nil, 2)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestSuggestEmptyMilestone(t *testing.T) {
	env := newTestEnv(t)
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))

	got, err := env.suggestions.Suggest(env.ctx, milestone.ID, nil, 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
