package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	redisclient "github.com/yungbote/planboard-backend/internal/clients/redis"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// FeedRegistry is the set of named external feeds a user can sync in one
// call, loaded from a yaml config file.
type FeedRegistry struct {
	Feeds []RegisteredFeed `yaml:"feeds"`
}

type RegisteredFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// feedDocument is the wire shape of an external event feed.
type feedDocument struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	AllDay    bool   `json:"allDay"`
	EventType string `json:"eventType"`
}

// FeedSyncService normalizes external event feeds into calendar exceptions,
// idempotently keyed by external identity. Malformed entries inside an
// otherwise-good feed are downgraded to warnings; only an unreachable feed
// or an unparsable document fails the import.
type FeedSyncService interface {
	ImportFeed(ctx context.Context, feedURL string) (*ImportResult, error)
	SyncAll(ctx context.Context) (map[string]*ImportResult, error)
}

type feedSyncService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.CalendarEventRepo
	syncState redisclient.SyncStateStore
	client    *http.Client
	registry  string
}

func NewFeedSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	eventRepo repos.CalendarEventRepo,
	syncState redisclient.SyncStateStore,
	fetchTimeout time.Duration,
	registryPath string,
) FeedSyncService {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &feedSyncService{
		db:        db,
		log:       baseLog.With("service", "FeedSyncService"),
		eventRepo: eventRepo,
		syncState: syncState,
		client:    &http.Client{Timeout: fetchTimeout},
		registry:  registryPath,
	}
}

func (s *feedSyncService) ImportFeed(ctx context.Context, feedURL string) (*ImportResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if feedURL == "" {
		return nil, apierr.Validation("missing_feed_url", nil)
	}

	doc, err := s.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Warnings: []string{}}
	parsed := make([]*types.CalendarEvent, 0, len(doc.Events))
	uids := make([]string, 0, len(doc.Events))
	seen := make(map[string]bool, len(doc.Events))
	for i, raw := range doc.Events {
		ev, warn := normalizeFeedEvent(rd.UserID, raw)
		if warn != "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("entry %d: %s", i, warn))
			continue
		}
		if seen[*ev.ExternalUID] {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("entry %d: duplicate uid %q in feed", i, *ev.ExternalUID))
			continue
		}
		seen[*ev.ExternalUID] = true
		parsed = append(parsed, ev)
		uids = append(uids, *ev.ExternalUID)
	}

	existing, err := s.eventRepo.GetExternalByUIDs(ctx, nil, rd.UserID, uids)
	if err != nil {
		s.log.Error("ImportFeed: load existing events failed", "error", err)
		return nil, err
	}
	existingByUID := make(map[string]*types.CalendarEvent, len(existing))
	for _, ev := range existing {
		if ev.ExternalUID != nil {
			existingByUID[*ev.ExternalUID] = ev
		}
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inserts []*types.CalendarEvent
		for _, ev := range parsed {
			prior, ok := existingByUID[*ev.ExternalUID]
			if !ok {
				inserts = append(inserts, ev)
				continue
			}
			prior.Title = ev.Title
			prior.Start = ev.Start
			prior.End = ev.End
			prior.AllDay = ev.AllDay
			prior.EventType = ev.EventType
			if err := s.eventRepo.Update(ctx, tx, prior); err != nil {
				return fmt.Errorf("update event %s: %w", *ev.ExternalUID, err)
			}
			result.Updated++
		}
		if _, err := s.eventRepo.Create(ctx, tx, inserts); err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
		result.Imported = len(inserts)
		return nil
	}); err != nil {
		s.log.Error("ImportFeed: commit failed", "error", err, "feed_url", feedURL)
		return nil, err
	}

	if s.syncState != nil {
		status := redisclient.SyncStatus{
			Feed:     feedURL,
			At:       time.Now().UTC(),
			Imported: result.Imported,
			Updated:  result.Updated,
			Skipped:  result.Skipped,
		}
		if err := s.syncState.RecordSync(ctx, rd.UserID, feedURL, status); err != nil {
			s.log.Warn("ImportFeed: record sync status failed", "error", err)
		}
	}

	s.log.Info("ImportFeed: done", "feed_url", feedURL,
		"imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// SyncAll imports every feed in the registry concurrently. A failing feed
// fails the whole call; individual malformed entries do not.
func (s *feedSyncService) SyncAll(ctx context.Context) (map[string]*ImportResult, error) {
	registry, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	if len(registry.Feeds) == 0 {
		return map[string]*ImportResult{}, nil
	}

	var mu sync.Mutex
	results := make(map[string]*ImportResult, len(registry.Feeds))

	g, gctx := errgroup.WithContext(ctx)
	for _, feed := range registry.Feeds {
		feed := feed
		g.Go(func() error {
			res, err := s.ImportFeed(gctx, feed.URL)
			if err != nil {
				return fmt.Errorf("feed %q: %w", feed.Name, err)
			}
			mu.Lock()
			results[feed.Name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *feedSyncService) fetch(ctx context.Context, feedURL string) (*feedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, apierr.Validation("invalid_feed_url", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierr.ExternalFetch("feed_unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.ExternalFetch("feed_unreachable",
			fmt.Errorf("feed returned status %d", resp.StatusCode))
	}

	var doc feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apierr.ExternalFetch("feed_unparsable", err)
	}
	return &doc, nil
}

func (s *feedSyncService) loadRegistry() (*FeedRegistry, error) {
	raw, err := os.ReadFile(s.registry)
	if err != nil {
		return nil, apierr.Validation("feed_registry_unreadable", err)
	}
	var registry FeedRegistry
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, apierr.Validation("feed_registry_invalid", err)
	}
	return &registry, nil
}

// normalizeFeedEvent turns one raw feed entry into a calendar event, or a
// warning describing why it was skipped.
func normalizeFeedEvent(userID uuid.UUID, raw feedEvent) (*types.CalendarEvent, string) {
	if raw.UID == "" {
		return nil, "missing uid"
	}
	if raw.Title == "" {
		return nil, "missing title"
	}
	start, err := time.Parse(time.RFC3339, raw.Start)
	if err != nil {
		return nil, fmt.Sprintf("invalid start %q", raw.Start)
	}
	var end time.Time
	if raw.End == "" && raw.AllDay {
		end = start.Add(24 * time.Hour)
	} else {
		end, err = time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return nil, fmt.Sprintf("invalid end %q", raw.End)
		}
	}
	if !end.After(start) {
		return nil, "end not after start"
	}

	eventType := raw.EventType
	switch eventType {
	case types.EventTypeHoliday, types.EventTypeAssembly, types.EventTypeTrip, types.EventTypePDDay, types.EventTypeCustom:
	case "":
		eventType = types.EventTypeCustom
	default:
		return nil, fmt.Sprintf("unknown event type %q", raw.EventType)
	}

	uid := raw.UID
	return &types.CalendarEvent{
		UserID:      userID,
		Title:       raw.Title,
		Start:       start.UTC(),
		End:         end.UTC(),
		AllDay:      raw.AllDay,
		EventType:   eventType,
		Source:      types.EventSourceExternalSync,
		ExternalUID: &uid,
	}, ""
}
