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

type MilestoneInput struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type MilestoneService interface {
	ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]*types.Milestone, error)
	Create(ctx context.Context, input MilestoneInput) (*types.Milestone, error)
	Update(ctx context.Context, milestoneID uuid.UUID, input MilestoneInput) (*types.Milestone, error)
	// Delete refuses to remove a milestone that still owns activities; the
	// backlog has to be emptied (or moved) first.
	Delete(ctx context.Context, milestoneID uuid.UUID) error
}

type milestoneService struct {
	db            *gorm.DB
	log           *logger.Logger
	subjectRepo   repos.SubjectRepo
	milestoneRepo repos.MilestoneRepo
	activityRepo  repos.ActivityRepo
}

func NewMilestoneService(
	db *gorm.DB,
	baseLog *logger.Logger,
	subjectRepo repos.SubjectRepo,
	milestoneRepo repos.MilestoneRepo,
	activityRepo repos.ActivityRepo,
) MilestoneService {
	return &milestoneService{
		db:            db,
		log:           baseLog.With("service", "MilestoneService"),
		subjectRepo:   subjectRepo,
		milestoneRepo: milestoneRepo,
		activityRepo:  activityRepo,
	}
}

func (s *milestoneService) ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{subjectID})
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 || subjects[0].UserID != rd.UserID {
		return nil, apierr.NotFound("subject_not_found", nil)
	}
	return s.milestoneRepo.GetBySubjectIDs(ctx, nil, []uuid.UUID{subjectID})
}

func (s *milestoneService) Create(ctx context.Context, input MilestoneInput) (*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateMilestoneInput(input); err != nil {
		return nil, err
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{input.SubjectID})
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 || subjects[0].UserID != rd.UserID {
		return nil, apierr.NotFound("subject_not_found", nil)
	}

	created, err := s.milestoneRepo.Create(ctx, nil, []*types.Milestone{{
		SubjectID: input.SubjectID,
		UserID:    rd.UserID,
		Title:     input.Title,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}})
	if err != nil {
		s.log.Error("Create: create milestone failed", "error", err)
		return nil, err
	}
	return created[0], nil
}

func (s *milestoneService) Update(ctx context.Context, milestoneID uuid.UUID, input MilestoneInput) (*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if err := validateMilestoneInput(input); err != nil {
		return nil, err
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return nil, apierr.NotFound("milestone_not_found", nil)
	}

	milestone := milestones[0]
	milestone.Title = input.Title
	milestone.StartDate = input.StartDate
	milestone.EndDate = input.EndDate
	if err := s.milestoneRepo.Update(ctx, nil, milestone); err != nil {
		s.log.Error("Update: save milestone failed", "error", err, "milestone_id", milestoneID)
		return nil, err
	}
	return milestone, nil
}

func (s *milestoneService) Delete(ctx context.Context, milestoneID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	milestones, err := s.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
	if err != nil {
		return err
	}
	if len(milestones) == 0 || milestones[0].UserID != rd.UserID {
		return apierr.NotFound("milestone_not_found", nil)
	}

	count, err := s.activityRepo.CountByMilestoneID(ctx, nil, milestoneID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apierr.Conflict("milestone_not_empty",
			fmt.Errorf("milestone still owns %d activities", count))
	}
	return s.milestoneRepo.DeleteByIDs(ctx, nil, []uuid.UUID{milestoneID})
}

func validateMilestoneInput(input MilestoneInput) error {
	if input.Title == "" {
		return apierr.Validation("missing_title", nil)
	}
	if types.DateOnly(input.EndDate).Before(types.DateOnly(input.StartDate)) {
		return apierr.Validation("end_date_before_start_date", nil)
	}
	return nil
}
