package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type ActivityInput struct {
	MilestoneID  uuid.UUID `json:"milestone_id"`
	Title        string    `json:"title"`
	DurationMins int       `json:"duration_mins"`
	Tags         []string  `json:"tags"`
	OutcomeIDs   []string  `json:"outcome_ids"`
}

// ActivityService owns activity CRUD. Creates append at the end of the
// milestone's sequence; deletes renumber the survivors so order_index stays
// a contiguous 0..N-1 permutation, and remove the activity's scheduled
// entries with it.
type ActivityService interface {
	ListForMilestone(ctx context.Context, milestoneID uuid.UUID) ([]*types.Activity, error)
	Create(ctx context.Context, input ActivityInput) (*types.Activity, error)
	Update(ctx context.Context, activityID uuid.UUID, input ActivityInput) (*types.Activity, error)
	Delete(ctx context.Context, activityID uuid.UUID) error
}

type activityService struct {
	db            *gorm.DB
	log           *logger.Logger
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
	entryRepo     repos.ScheduledEntryRepo
}

func NewActivityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	milestoneRepo repos.MilestoneRepo,
	activityRepo repos.ActivityRepo,
	entryRepo repos.ScheduledEntryRepo,
) ActivityService {
	return &activityService{
		db:            db,
		log:           baseLog.With("service", "ActivityService"),
		milestoneRepo: milestoneRepo,
		activityRepo:  activityRepo,
		entryRepo:     entryRepo,
	}
}

func (s *activityService) ListForMilestone(ctx context.Context, milestoneID uuid.UUID) ([]*types.Activity, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return nil, apierr.NotFound("milestone_not_found", nil)
	}
	return s.activityRepo.GetByMilestoneID(ctx, nil, milestoneID)
}

func (s *activityService) Create(ctx context.Context, input ActivityInput) (*types.Activity, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{input.MilestoneID})
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return nil, apierr.NotFound("milestone_not_found", nil)
	}

	var activity *types.Activity
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.activityRepo.CountByMilestoneID(ctx, tx, input.MilestoneID)
		if err != nil {
			return err
		}
		a := &types.Activity{
			MilestoneID:  input.MilestoneID,
			UserID:       rd.UserID,
			Title:        input.Title,
			DurationMins: input.DurationMins,
			OrderIndex:   int(count),
		}
		a.SetTags(input.Tags)
		a.SetOutcomes(input.OutcomeIDs)
		created, err := s.activityRepo.Create(ctx, tx, []*types.Activity{a})
		if err != nil {
			return err
		}
		activity = created[0]
		return nil
	}); err != nil {
		s.log.Error("Create: create activity failed", "error", err)
		return nil, err
	}
	return activity, nil
}

func (s *activityService) Update(ctx context.Context, activityID uuid.UUID, input ActivityInput) (*types.Activity, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	activities, err := s.activityRepo.GetByIDs(ctx, nil, []uuid.UUID{activityID})
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 || activities[0].UserID != rd.UserID {
		return nil, apierr.NotFound("activity_not_found", nil)
	}

	activity := activities[0]
	activity.Title = input.Title
	activity.DurationMins = input.DurationMins
	activity.SetTags(input.Tags)
	activity.SetOutcomes(input.OutcomeIDs)
	if err := s.activityRepo.Update(ctx, nil, activity); err != nil {
		s.log.Error("Update: save activity failed", "error", err, "activity_id", activityID)
		return nil, err
	}
	return activity, nil
}

func (s *activityService) Delete(ctx context.Context, activityID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	activities, err := s.activityRepo.GetByIDs(ctx, nil, []uuid.UUID{activityID})
	if err != nil {
		return err
	}
	if len(activities) == 0 || activities[0].UserID != rd.UserID {
		return apierr.NotFound("activity_not_found", nil)
	}
	activity := activities[0]

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.DeleteByActivityIDs(ctx, tx, []uuid.UUID{activityID}); err != nil {
			return fmt.Errorf("remove scheduled entries: %w", err)
		}
		if err := s.activityRepo.DeleteByIDs(ctx, tx, []uuid.UUID{activityID}); err != nil {
			return err
		}
		remaining, err := s.activityRepo.GetByMilestoneID(ctx, tx, activity.MilestoneID)
		if err != nil {
			return err
		}
		for idx, a := range remaining {
			if a.OrderIndex == idx {
				continue
			}
			if err := s.activityRepo.SetOrderIndex(ctx, tx, a.ID, idx); err != nil {
				return fmt.Errorf("renumber activity %s: %w", a.ID, err)
			}
		}
		return nil
	}); err != nil {
		s.log.Error("Delete: delete activity failed", "error", err, "activity_id", activityID)
		return err
	}
	return nil
}

func validateActivityInput(input ActivityInput) error {
	if input.Title == "" {
		return apierr.Validation("missing_title", nil)
	}
	if input.DurationMins <= 0 {
		return apierr.Validation("invalid_duration", fmt.Errorf("duration_mins must be positive"))
	}
	return nil
}
