package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
)

func newFeedService(env *testEnv, registryPath string) FeedSyncService {
	return NewFeedSyncService(env.db, logger.NewNop(), env.eventRepo, nil, 5*time.Second, registryPath)
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const twoEventFeed = `{
	"events": [
		{"uid": "ext-1", "title": "Winter break", "start": "2026-01-05T00:00:00Z", "allDay": true, "eventType": "HOLIDAY"},
		{"uid": "ext-2", "title": "Science fair", "start": "2026-01-07T09:00:00Z", "end": "2026-01-07T11:00:00Z", "eventType": "TRIP"}
	]
}`

func TestImportFeedCreatesSyncedEvents(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := feedServer(t, twoEventFeed)

	result, err := svc.ImportFeed(env.ctx, srv.URL)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 || result.Updated != 0 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	events, err := env.eventRepo.GetExternalByUIDs(env.ctx, nil, env.userID, []string{"ext-1", "ext-2"})
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 synced events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Source != types.EventSourceExternalSync {
			t.Fatalf("synced event has source %q", ev.Source)
		}
		if ev.ExternalUID == nil {
			t.Fatal("synced event missing external uid")
		}
	}
}

func TestImportFeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := feedServer(t, twoEventFeed)

	if _, err := svc.ImportFeed(env.ctx, srv.URL); err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := svc.ImportFeed(env.ctx, srv.URL)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Imported != 0 || second.Updated != 2 {
		t.Fatalf("re-import must update in place, got %+v", second)
	}

	events, err := env.eventRepo.GetExternalByUIDs(env.ctx, nil, env.userID, []string{"ext-1", "ext-2"})
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("re-import duplicated events: found %d", len(events))
	}
}

func TestImportFeedAppliesUpstreamChanges(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := feedServer(t, twoEventFeed)
	if _, err := svc.ImportFeed(env.ctx, srv.URL); err != nil {
		t.Fatalf("first import: %v", err)
	}

	renamed := feedServer(t, `{
		"events": [
			{"uid": "ext-2", "title": "Science fair (rescheduled)", "start": "2026-01-08T09:00:00Z", "end": "2026-01-08T11:00:00Z", "eventType": "TRIP"}
		]
	}`)
	if _, err := svc.ImportFeed(env.ctx, renamed.URL); err != nil {
		t.Fatalf("second import: %v", err)
	}

	events, err := env.eventRepo.GetExternalByUIDs(env.ctx, nil, env.userID, []string{"ext-2"})
	if err != nil || len(events) != 1 {
		t.Fatalf("load event: %v (%d)", err, len(events))
	}
	if events[0].Title != "Science fair (rescheduled)" {
		t.Fatalf("upstream rename not applied: %q", events[0].Title)
	}
}

func TestImportFeedSkipsMalformedEntries(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := feedServer(t, `{
		"events": [
			{"uid": "good-1", "title": "Assembly", "start": "2026-01-06T09:00:00Z", "end": "2026-01-06T10:00:00Z", "eventType": "ASSEMBLY"},
			{"title": "No uid", "start": "2026-01-06T09:00:00Z", "end": "2026-01-06T10:00:00Z"},
			{"uid": "bad-start", "title": "Broken", "start": "not-a-date", "end": "2026-01-06T10:00:00Z"},
			{"uid": "bad-type", "title": "Broken", "start": "2026-01-06T09:00:00Z", "end": "2026-01-06T10:00:00Z", "eventType": "BANANA"},
			{"uid": "good-1", "title": "Duplicate", "start": "2026-01-06T09:00:00Z", "end": "2026-01-06T10:00:00Z"}
		]
	}`)

	result, err := svc.ImportFeed(env.ctx, srv.URL)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 import, got %d", result.Imported)
	}
	if result.Skipped != 4 {
		t.Fatalf("expected 4 skips, got %d", result.Skipped)
	}
	if len(result.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %v", result.Warnings)
	}
}

func TestImportFeedUnreachable(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := svc.ImportFeed(env.ctx, srv.URL)
	wantAPIError(t, err, http.StatusBadGateway, "feed_unreachable")
}

func TestImportFeedUnparsable(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	srv := feedServer(t, `<html>definitely not json</html>`)

	_, err := svc.ImportFeed(env.ctx, srv.URL)
	wantAPIError(t, err, http.StatusBadGateway, "feed_unparsable")
}

func TestImportFeedMissingURL(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, "")
	_, err := svc.ImportFeed(env.ctx, "")
	wantAPIError(t, err, http.StatusBadRequest, "missing_feed_url")
}

func TestSyncAllImportsEveryRegisteredFeed(t *testing.T) {
	env := newTestEnv(t)
	district := feedServer(t, twoEventFeed)
	board := feedServer(t, `{
		"events": [
			{"uid": "board-1", "title": "Board meeting", "start": "2026-01-09T18:00:00Z", "end": "2026-01-09T20:00:00Z", "eventType": "CUSTOM"}
		]
	}`)

	registry := filepath.Join(t.TempDir(), "feeds.yaml")
	content := fmt.Sprintf("feeds:\n  - name: district\n    url: %s\n  - name: board\n    url: %s\n", district.URL, board.URL)
	if err := os.WriteFile(registry, []byte(content), 0o600); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	svc := newFeedService(env, registry)
	results, err := svc.SyncAll(env.ctx)
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 feed results, got %d", len(results))
	}
	if results["district"].Imported != 2 || results["board"].Imported != 1 {
		t.Fatalf("unexpected per-feed counts: %+v", results)
	}
}

func TestSyncAllMissingRegistry(t *testing.T) {
	env := newTestEnv(t)
	svc := newFeedService(env, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := svc.SyncAll(env.ctx)
	wantAPIError(t, err, http.StatusBadRequest, "feed_registry_unreadable")
}

func TestNormalizeFeedEventAllDayDefaultsEnd(t *testing.T) {
	env := newTestEnv(t)
	ev, warn := normalizeFeedEvent(env.userID, feedEvent{
		UID:       "x",
		Title:     "Holiday",
		Start:     "2026-01-05T00:00:00Z",
		AllDay:    true,
		EventType: "HOLIDAY",
	})
	if warn != "" {
		t.Fatalf("unexpected warning %q", warn)
	}
	if !ev.End.Equal(ev.Start.Add(24 * time.Hour)) {
		t.Fatalf("all-day event without end should span 24h, got %v-%v", ev.Start, ev.End)
	}
}
