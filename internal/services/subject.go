package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type SubjectInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SubjectService interface {
	List(ctx context.Context) ([]*types.Subject, error)
	Create(ctx context.Context, input SubjectInput) (*types.Subject, error)
	Update(ctx context.Context, subjectID uuid.UUID, input SubjectInput) (*types.Subject, error)
	Delete(ctx context.Context, subjectID uuid.UUID) error
}

type subjectService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
}

func NewSubjectService(db *gorm.DB, baseLog *logger.Logger, subjectRepo repos.SubjectRepo) SubjectService {
	return &subjectService{
		db:          db,
		log:         baseLog.With("service", "SubjectService"),
		subjectRepo: subjectRepo,
	}
}

func (s *subjectService) List(ctx context.Context) ([]*types.Subject, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	return s.subjectRepo.GetByUserID(ctx, nil, rd.UserID)
}

func (s *subjectService) Create(ctx context.Context, input SubjectInput) (*types.Subject, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if input.Name == "" {
		return nil, apierr.Validation("missing_name", nil)
	}

	created, err := s.subjectRepo.Create(ctx, nil, []*types.Subject{{
		UserID: rd.UserID,
		Name:   input.Name,
		Color:  input.Color,
	}})
	if err != nil {
		s.log.Error("Create: create subject failed", "error", err)
		return nil, err
	}
	return created[0], nil
}

func (s *subjectService) Update(ctx context.Context, subjectID uuid.UUID, input SubjectInput) (*types.Subject, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	if input.Name == "" {
		return nil, apierr.Validation("missing_name", nil)
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{subjectID})
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 || subjects[0].UserID != rd.UserID {
		return nil, apierr.NotFound("subject_not_found", nil)
	}

	subject := subjects[0]
	subject.Name = input.Name
	subject.Color = input.Color
	if err := s.subjectRepo.Update(ctx, nil, subject); err != nil {
		s.log.Error("Update: save subject failed", "error", err, "subject_id", subjectID)
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, subjectID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{subjectID})
	if err != nil {
		return err
	}
	if len(subjects) == 0 || subjects[0].UserID != rd.UserID {
		return apierr.NotFound("subject_not_found", nil)
	}
	return s.subjectRepo.DeleteByIDs(ctx, nil, []uuid.UUID{subjectID})
}
