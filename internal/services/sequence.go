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
)

// SequenceService owns the contiguous ordering of activities within a
// milestone. After any reorder the order_index values are exactly 0..N-1.
type SequenceService interface {
	Reorder(ctx context.Context, milestoneID uuid.UUID, fromIndex, toIndex int) ([]uuid.UUID, error)
}

type sequenceService struct {
	db            *gorm.DB
	log           *logger.Logger
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
}

func NewSequenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	milestoneRepo repos.MilestoneRepo,
	activityRepo repos.ActivityRepo,
) SequenceService {
	return &sequenceService{
		db:            db,
		log:           baseLog.With("service", "SequenceService"),
		milestoneRepo: milestoneRepo,
		activityRepo:  activityRepo,
	}
}

// Reorder moves the activity at fromIndex to toIndex and renumbers the whole
// milestone in one transaction. The full new id list is returned so callers
// can reconcile client state without a second read. Concurrent reorders on
// the same milestone are last-write-wins.
func (s *sequenceService) Reorder(ctx context.Context, milestoneID uuid.UUID, fromIndex, toIndex int) ([]uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
	if err != nil {
		s.log.Error("Reorder: load milestone failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return nil, apierr.NotFound("milestone_not_found", nil)
	}

	activities, err := s.activityRepo.GetByMilestoneID(ctx, nil, milestoneID)
	if err != nil {
		s.log.Error("Reorder: load activities failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}

	n := len(activities)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return nil, apierr.Validation("index_out_of_range",
			fmt.Errorf("indices must be in [0,%d): from=%d to=%d", n, fromIndex, toIndex))
	}

	ordered := make([]uuid.UUID, 0, n)
	for _, a := range activities {
		ordered = append(ordered, a.ID)
	}
	moved := ordered[fromIndex]
	ordered = append(ordered[:fromIndex], ordered[fromIndex+1:]...)
	rest := make([]uuid.UUID, 0, n)
	rest = append(rest, ordered[:toIndex]...)
	rest = append(rest, moved)
	rest = append(rest, ordered[toIndex:]...)
	ordered = rest

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, activityID := range ordered {
			if err := s.activityRepo.SetOrderIndex(ctx, tx, activityID, idx); err != nil {
				return fmt.Errorf("renumber activity %s: %w", activityID, err)
			}
		}
		return nil
	}); err != nil {
		s.log.Error("Reorder: renumber failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}

	return ordered, nil
}
