package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type CalendarEventInput struct {
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day"`
	EventType string    `json:"event_type"`
}

// CalendarEventService is the manual-event CRUD surface; synced events are
// owned by FeedSyncService and can only be read or deleted here.
type CalendarEventService interface {
	List(ctx context.Context, from, to time.Time) ([]*types.CalendarEvent, error)
	Create(ctx context.Context, input CalendarEventInput) (*types.CalendarEvent, error)
	Update(ctx context.Context, eventID uuid.UUID, input CalendarEventInput) (*types.CalendarEvent, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
}

type calendarEventService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.CalendarEventRepo
}

func NewCalendarEventService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.CalendarEventRepo) CalendarEventService {
	return &calendarEventService{
		db:        db,
		log:       baseLog.With("service", "CalendarEventService"),
		eventRepo: eventRepo,
	}
}

func (s *calendarEventService) List(ctx context.Context, from, to time.Time) ([]*types.CalendarEvent, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if !to.After(from) {
		return nil, apierr.Validation("invalid_range", fmt.Errorf("to must be after from"))
	}
	return s.eventRepo.GetOverlapping(ctx, nil, rd.UserID, from, to)
}

func (s *calendarEventService) Create(ctx context.Context, input CalendarEventInput) (*types.CalendarEvent, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	created, err := s.eventRepo.Create(ctx, nil, []*types.CalendarEvent{{
		UserID:    rd.UserID,
		Title:     input.Title,
		Start:     input.Start.UTC(),
		End:       input.End.UTC(),
		AllDay:    input.AllDay,
		EventType: input.EventType,
		Source:    types.EventSourceManual,
	}})
	if err != nil {
		s.log.Error("Create: create event failed", "error", err)
		return nil, err
	}
	return created[0], nil
}

func (s *calendarEventService) Update(ctx context.Context, eventID uuid.UUID, input CalendarEventInput) (*types.CalendarEvent, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.GetByIDs(ctx, nil, []uuid.UUID{eventID})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 || events[0].UserID != rd.UserID {
		return nil, apierr.NotFound("event_not_found", nil)
	}
	event := events[0]
	if event.Source == types.EventSourceExternalSync {
		return nil, apierr.Conflict("event_externally_managed",
			fmt.Errorf("synced events are replaced on the next feed import"))
	}

	event.Title = input.Title
	event.Start = input.Start.UTC()
	event.End = input.End.UTC()
	event.AllDay = input.AllDay
	event.EventType = input.EventType
	if err := s.eventRepo.Update(ctx, nil, event); err != nil {
		s.log.Error("Update: save event failed", "error", err, "event_id", eventID)
		return nil, err
	}
	return event, nil
}

func (s *calendarEventService) Delete(ctx context.Context, eventID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	events, err := s.eventRepo.GetByIDs(ctx, nil, []uuid.UUID{eventID})
	if err != nil {
		return err
	}
	if len(events) == 0 || events[0].UserID != rd.UserID {
		return apierr.NotFound("event_not_found", nil)
	}
	return s.eventRepo.DeleteByIDs(ctx, nil, []uuid.UUID{eventID})
}

func validateEventInput(input CalendarEventInput) error {
	if input.Title == "" {
		return apierr.Validation("missing_title", nil)
	}
	if !input.End.After(input.Start) {
		return apierr.Validation("end_not_after_start", nil)
	}
	switch input.EventType {
	case types.EventTypeHoliday, types.EventTypeAssembly, types.EventTypeTrip, types.EventTypePDDay, types.EventTypeCustom:
		return nil
	}
	return apierr.Validation("invalid_event_type", fmt.Errorf("unknown event type %q", input.EventType))
}
