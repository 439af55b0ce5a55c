package services

import (
	"context"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

// SuggestionService ranks a milestone's unscheduled backlog. Activities that
// close the most outcome gaps rank first; curriculum order breaks ties. The
// call is read-only and must be re-issued after any schedule mutation.
type SuggestionService interface {
	Suggest(ctx context.Context, milestoneID uuid.UUID, tagFilter []string, limit int) ([]*types.Activity, error)
}

type suggestionService struct {
	db            *gorm.DB
	log           *logger.Logger
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
	entryRepo     repos.ScheduledEntryRepo
}

func NewSuggestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	milestoneRepo repos.MilestoneRepo,
	activityRepo repos.ActivityRepo,
	entryRepo repos.ScheduledEntryRepo,
) SuggestionService {
	return &suggestionService{
		db:            db,
		log:           baseLog.With("service", "SuggestionService"),
		milestoneRepo: milestoneRepo,
		activityRepo:  activityRepo,
		entryRepo:     entryRepo,
	}
}

func (s *suggestionService) Suggest(ctx context.Context, milestoneID uuid.UUID, tagFilter []string, limit int) ([]*types.Activity, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
	if err != nil {
		s.log.Error("Suggest: load milestone failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return nil, apierr.NotFound("milestone_not_found", nil)
	}

	activities, err := s.activityRepo.GetByMilestoneID(ctx, nil, milestoneID)
	if err != nil {
		s.log.Error("Suggest: load activities failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}
	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}

	activityIDs := make([]uuid.UUID, 0, len(activities))
	for _, a := range activities {
		activityIDs = append(activityIDs, a.ID)
	}
	entries, err := s.entryRepo.GetByActivityIDs(ctx, nil, activityIDs)
	if err != nil {
		s.log.Error("Suggest: load entries failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}

	scheduled := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		scheduled[e.ActivityID] = true
	}

	// Outcomes already covered by the unit's scheduled activities.
	covered := make(map[string]bool)
	for _, a := range activities {
		if !scheduled[a.ID] {
			continue
		}
		for _, outcome := range a.OutcomeList() {
			covered[outcome] = true
		}
	}

	filterSet := make(map[string]bool, len(tagFilter))
	for _, tag := range tagFilter {
		filterSet[tag] = true
	}

	type ranked struct {
		activity *types.Activity
		score    int
	}
	candidates := make([]ranked, 0, len(activities))
	for _, a := range activities {
		if scheduled[a.ID] {
			continue
		}
		if len(filterSet) > 0 && !tagsIntersect(a.TagList(), filterSet) {
			continue
		}
		score := 0
		for _, outcome := range a.OutcomeList() {
			if !covered[outcome] {
				score++
			}
		}
		candidates = append(candidates, ranked{activity: a, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].activity.OrderIndex < candidates[j].activity.OrderIndex
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*types.Activity, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.activity)
	}
	return out, nil
}

func tagsIntersect(tags []string, filter map[string]bool) bool {
	for _, t := range tags {
		if filter[t] {
			return true
		}
	}
	return false
}
