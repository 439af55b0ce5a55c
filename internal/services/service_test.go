package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/db"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

// testEnv wires the full service stack against an in-memory sqlite database,
// migrated with the same model list production uses.
type testEnv struct {
	db     *gorm.DB
	userID uuid.UUID
	ctx    context.Context

	subjectRepo   repos.SubjectRepo
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
	slotRepo      repos.TimetableSlotRepo
	eventRepo     repos.CalendarEventRepo
	planRepo      repos.WeeklyLessonPlanRepo
	entryRepo     repos.ScheduledEntryRepo

	overlay     OverlayService
	assignments AssignmentService
	autofill    AutoFillService
	sequence    SequenceService
	suggestions SuggestionService
	subjects    SubjectService
	milestones  MilestoneService
	activities  ActivityService
	calendar    CalendarEventService
	subplans    SubPlanService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	env := &testEnv{
		db:            gdb,
		subjectRepo:   repos.NewSubjectRepo(gdb, log),
		milestoneRepo: repos.NewMilestoneRepo(gdb, log),
		activityRepo:  repos.NewActivityRepo(gdb, log),
		slotRepo:      repos.NewTimetableSlotRepo(gdb, log),
		eventRepo:     repos.NewCalendarEventRepo(gdb, log),
		planRepo:      repos.NewWeeklyLessonPlanRepo(gdb, log),
		entryRepo:     repos.NewScheduledEntryRepo(gdb, log),
	}

	env.overlay = NewOverlayService(gdb, log, env.eventRepo)
	env.assignments = NewAssignmentService(gdb, log, env.overlay, env.activityRepo, env.slotRepo, env.planRepo, env.entryRepo)
	env.autofill = NewAutoFillService(gdb, log, env.overlay, env.assignments, env.slotRepo, env.milestoneRepo, env.activityRepo, env.entryRepo)
	env.sequence = NewSequenceService(gdb, log, env.milestoneRepo, env.activityRepo)
	env.suggestions = NewSuggestionService(gdb, log, env.milestoneRepo, env.activityRepo, env.entryRepo)
	env.subjects = NewSubjectService(gdb, log, env.subjectRepo)
	env.milestones = NewMilestoneService(gdb, log, env.subjectRepo, env.milestoneRepo, env.activityRepo)
	env.activities = NewActivityService(gdb, log, env.milestoneRepo, env.activityRepo, env.entryRepo)
	env.calendar = NewCalendarEventService(gdb, log, env.eventRepo)
	env.subplans = NewSubPlanService(gdb, log, env.overlay, env.slotRepo, env.subjectRepo, env.activityRepo, env.entryRepo, env.eventRepo)

	user := &types.User{
		ID:        uuid.New(),
		Email:     "teacher@example.com",
		Password:  "x",
		FirstName: "Pat",
		LastName:  "Teacher",
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	env.userID = user.ID
	env.ctx = requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: user.ID})
	return env
}

// ctxFor builds an authenticated context for a second user.
func (e *testEnv) ctxFor(t *testing.T, email string) (context.Context, uuid.UUID) {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: email, Password: "x", FirstName: "Other", LastName: "User"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: user.ID}), user.ID
}

func (e *testEnv) mustSubject(t *testing.T, name string) *types.Subject {
	t.Helper()
	created, err := e.subjectRepo.Create(e.ctx, nil, []*types.Subject{{UserID: e.userID, Name: name, Color: "#3366ff"}})
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return created[0]
}

func (e *testEnv) mustMilestone(t *testing.T, subjectID uuid.UUID, title string, start, end time.Time) *types.Milestone {
	t.Helper()
	created, err := e.milestoneRepo.Create(e.ctx, nil, []*types.Milestone{{
		SubjectID: subjectID,
		UserID:    e.userID,
		Title:     title,
		StartDate: types.DateOnly(start),
		EndDate:   types.DateOnly(end),
	}})
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	return created[0]
}

func (e *testEnv) mustActivity(t *testing.T, milestoneID uuid.UUID, title string, duration, orderIndex int, tags, outcomes []string) *types.Activity {
	t.Helper()
	a := &types.Activity{
		MilestoneID:  milestoneID,
		UserID:       e.userID,
		Title:        title,
		DurationMins: duration,
		OrderIndex:   orderIndex,
	}
	a.SetTags(tags)
	a.SetOutcomes(outcomes)
	created, err := e.activityRepo.Create(e.ctx, nil, []*types.Activity{a})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	return created[0]
}

func (e *testEnv) mustSlot(t *testing.T, subjectID uuid.UUID, dayOfWeek, startMin, endMin int) *types.TimetableSlot {
	t.Helper()
	slot := &types.TimetableSlot{
		ID:        uuid.New(),
		SubjectID: subjectID,
		UserID:    e.userID,
		DayOfWeek: dayOfWeek,
		StartMin:  startMin,
		EndMin:    endMin,
	}
	if err := e.db.Create(slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func (e *testEnv) mustEvent(t *testing.T, title, eventType string, start, end time.Time, allDay bool) *types.CalendarEvent {
	t.Helper()
	created, err := e.eventRepo.Create(e.ctx, nil, []*types.CalendarEvent{{
		UserID:    e.userID,
		Title:     title,
		Start:     start,
		End:       end,
		AllDay:    allDay,
		EventType: eventType,
		Source:    types.EventSourceManual,
	}})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return created[0]
}

// wantAPIError asserts err carries the given status and code.
func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d/%s error, got nil", status, code)
	}
	ae := apierr.From(err)
	if ae == nil {
		t.Fatalf("expected api error, got %v", err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("expected %d/%s, got %d/%s", status, code, ae.Status, ae.Code)
	}
}

// monday is a fixed week anchor used across scheduling tests.
var monday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func atClock(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
}
