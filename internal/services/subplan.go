package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type SubPlanEntry struct {
	SubjectName   string `json:"subject_name"`
	ActivityTitle string `json:"activity_title"`
	StartMin      int    `json:"start_min"`
	EndMin        int    `json:"end_min"`
	DurationMins  int    `json:"duration_mins"`
}

type SubPlanEvent struct {
	Title     string    `json:"title"`
	EventType string    `json:"event_type"`
	AllDay    bool      `json:"all_day"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type SubPlanOpenSlot struct {
	SubjectName   string `json:"subject_name"`
	StartMin      int    `json:"start_min"`
	EndMin        int    `json:"end_min"`
	AvailableMins int    `json:"available_mins"`
}

// SubPlanDocument is the fully-resolved schedule for one date, composed for
// substitute-teacher handoff. A date with no plan data is an empty but valid
// document.
type SubPlanDocument struct {
	Date      time.Time         `json:"date"`
	Entries   []SubPlanEntry    `json:"entries"`
	Events    []SubPlanEvent    `json:"events"`
	OpenSlots []SubPlanOpenSlot `json:"open_slots"`
}

type SubPlanService interface {
	ComposeForDate(ctx context.Context, date time.Time) (*SubPlanDocument, error)
	RenderPDF(doc *SubPlanDocument) ([]byte, error)
}

type subPlanService struct {
	db           *gorm.DB
	log          *logger.Logger
	overlay      OverlayService
	slotRepo     repos.TimetableSlotRepo
	subjectRepo  repos.SubjectRepo
	activityRepo repos.ActivityRepo
	entryRepo    repos.ScheduledEntryRepo
	eventRepo    repos.CalendarEventRepo
}

func NewSubPlanService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overlay OverlayService,
	slotRepo repos.TimetableSlotRepo,
	subjectRepo repos.SubjectRepo,
	activityRepo repos.ActivityRepo,
	entryRepo repos.ScheduledEntryRepo,
	eventRepo repos.CalendarEventRepo,
) SubPlanService {
	return &subPlanService{
		db:           db,
		log:          baseLog.With("service", "SubPlanService"),
		overlay:      overlay,
		slotRepo:     slotRepo,
		subjectRepo:  subjectRepo,
		activityRepo: activityRepo,
		entryRepo:    entryRepo,
		eventRepo:    eventRepo,
	}
}

func (s *subPlanService) ComposeForDate(ctx context.Context, date time.Time) (*SubPlanDocument, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	day := types.DateOnly(date)

	doc := &SubPlanDocument{
		Date:      day,
		Entries:   []SubPlanEntry{},
		Events:    []SubPlanEvent{},
		OpenSlots: []SubPlanOpenSlot{},
	}

	entries, err := s.entryRepo.GetByUserDate(ctx, nil, rd.UserID, day)
	if err != nil {
		s.log.Error("ComposeForDate: load entries failed", "error", err, "date", day)
		return nil, err
	}

	slots, err := s.slotRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, err
	}
	daySlots := make([]*types.TimetableSlot, 0, len(slots))
	subjectIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		if slot.DayOfWeek == int(day.Weekday()) {
			daySlots = append(daySlots, slot)
			subjectIDs = append(subjectIDs, slot.SubjectID)
		}
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, subjectIDs)
	if err != nil {
		return nil, err
	}
	subjectNames := make(map[uuid.UUID]string, len(subjects))
	for _, sub := range subjects {
		subjectNames[sub.ID] = sub.Name
	}

	slotsByID := make(map[uuid.UUID]*types.TimetableSlot, len(slots))
	for _, slot := range slots {
		slotsByID[slot.ID] = slot
	}

	activityIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		activityIDs = append(activityIDs, e.ActivityID)
	}
	activities, err := s.activityRepo.GetByIDs(ctx, nil, activityIDs)
	if err != nil {
		return nil, err
	}
	activityByID := make(map[uuid.UUID]*types.Activity, len(activities))
	for _, a := range activities {
		activityByID[a.ID] = a
	}

	assignedSlots := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		assignedSlots[e.SlotID] = true
		entry := SubPlanEntry{
			StartMin: e.StartMin,
			EndMin:   e.EndMin,
		}
		if a := activityByID[e.ActivityID]; a != nil {
			entry.ActivityTitle = a.Title
			entry.DurationMins = a.DurationMins
		}
		if slot := slotsByID[e.SlotID]; slot != nil {
			entry.SubjectName = subjectNames[slot.SubjectID]
		}
		doc.Entries = append(doc.Entries, entry)
	}

	// Every event touching the date goes in, so a substitute sees blocked and
	// altered periods even when nothing is scheduled around them.
	events, err := s.eventRepo.GetOverlapping(ctx, nil, rd.UserID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		doc.Events = append(doc.Events, SubPlanEvent{
			Title:     ev.Title,
			EventType: ev.EventType,
			AllDay:    ev.AllDay,
			Start:     ev.Start,
			End:       ev.End,
		})
	}

	for _, slot := range daySlots {
		if assignedSlots[slot.ID] {
			continue
		}
		availability, err := s.overlay.Resolve(ctx, nil, slot, day)
		if err != nil {
			return nil, err
		}
		if availability.Blocked {
			continue
		}
		doc.OpenSlots = append(doc.OpenSlots, SubPlanOpenSlot{
			SubjectName:   subjectNames[slot.SubjectID],
			StartMin:      slot.StartMin,
			EndMin:        slot.EndMin,
			AvailableMins: availability.AvailableMins,
		})
	}

	return doc, nil
}

func (s *subPlanService) RenderPDF(doc *SubPlanDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Substitute Plan: %s", doc.Date.Format("Monday, January 2 2006")))
	pdf.Ln(12)

	if len(doc.Events) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, "Calendar notes")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, ev := range doc.Events {
			line := fmt.Sprintf("%s (%s)", ev.Title, ev.EventType)
			if ev.AllDay {
				line += " - all day"
			} else {
				line += fmt.Sprintf(" - %s to %s", ev.Start.Format("15:04"), ev.End.Format("15:04"))
			}
			pdf.MultiCell(0, 7, line, "", "", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 9, "Schedule")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	if len(doc.Entries) == 0 {
		pdf.Cell(0, 7, "No activities scheduled.")
		pdf.Ln(7)
	}
	for _, e := range doc.Entries {
		line := fmt.Sprintf("%s - %s   %s: %s (%d mins)",
			minutesToClock(e.StartMin), minutesToClock(e.EndMin), e.SubjectName, e.ActivityTitle, e.DurationMins)
		pdf.MultiCell(0, 7, line, "", "", false)
	}

	if len(doc.OpenSlots) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, "Open / free time")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, o := range doc.OpenSlots {
			line := fmt.Sprintf("%s - %s   %s: open (%d mins available)",
				minutesToClock(o.StartMin), minutesToClock(o.EndMin), o.SubjectName, o.AvailableMins)
			pdf.MultiCell(0, 7, line, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.log.Error("RenderPDF: output failed", "error", err)
		return nil, fmt.Errorf("render sub plan pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func minutesToClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
