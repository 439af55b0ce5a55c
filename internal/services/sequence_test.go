package services

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func seedBacklog(t *testing.T, env *testEnv, n int) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	subject := env.mustSubject(t, "Math")
	milestone := env.mustMilestone(t, subject.ID, "Fractions", monday, monday.AddDate(0, 0, 28))
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		a := env.mustActivity(t, milestone.ID, "Lesson", 30, i, nil, nil)
		ids = append(ids, a.ID)
	}
	return milestone.ID, ids
}

func TestReorderMovesForward(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, ids := seedBacklog(t, env, 4)

	got, err := env.sequence.Reorder(env.ctx, milestoneID, 0, 2)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := []uuid.UUID{ids[1], ids[2], ids[0], ids[3]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestReorderMovesBackward(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, ids := seedBacklog(t, env, 4)

	got, err := env.sequence.Reorder(env.ctx, milestoneID, 3, 0)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := []uuid.UUID{ids[3], ids[0], ids[1], ids[2]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestReorderRenumbersContiguously(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, _ := seedBacklog(t, env, 5)

	ordered, err := env.sequence.Reorder(env.ctx, milestoneID, 4, 1)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	activities, err := env.activityRepo.GetByMilestoneID(env.ctx, nil, milestoneID)
	if err != nil {
		t.Fatalf("load activities: %v", err)
	}
	if len(activities) != 5 {
		t.Fatalf("expected 5 activities, got %d", len(activities))
	}
	for i, a := range activities {
		if a.OrderIndex != i {
			t.Fatalf("order_index gap at position %d: got %d", i, a.OrderIndex)
		}
		if a.ID != ordered[i] {
			t.Fatalf("persisted order diverges from returned order at %d", i)
		}
	}
}

func TestReorderNoopSamePosition(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, ids := seedBacklog(t, env, 3)

	got, err := env.sequence.Reorder(env.ctx, milestoneID, 1, 1)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("same-position reorder must not change order: position %d", i)
		}
	}
}

func TestReorderIndexOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, _ := seedBacklog(t, env, 3)

	_, err := env.sequence.Reorder(env.ctx, milestoneID, 0, 3)
	wantAPIError(t, err, http.StatusBadRequest, "index_out_of_range")

	_, err = env.sequence.Reorder(env.ctx, milestoneID, -1, 0)
	wantAPIError(t, err, http.StatusBadRequest, "index_out_of_range")
}

func TestReorderForeignMilestoneNotFound(t *testing.T) {
	env := newTestEnv(t)
	milestoneID, _ := seedBacklog(t, env, 3)

	otherCtx, _ := env.ctxFor(t, "other@example.com")
	_, err := env.sequence.Reorder(otherCtx, milestoneID, 0, 1)
	wantAPIError(t, err, http.StatusNotFound, "milestone_not_found")
}
