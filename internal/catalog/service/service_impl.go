package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/catalog/domain"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) ResolveItem(ctx context.Context, courseID snowflake.ID, ref entitlementdomain.ItemRef) (domain.Item, error) {
	if err := ref.Validate(); err != nil {
		return domain.Item{}, err
	}

	course, err := s.repo.FindCourse(ctx, s.db, courseID)
	if err != nil {
		return domain.Item{}, err
	}
	if course == nil {
		return domain.Item{}, domain.ErrNotFound
	}

	item := domain.Item{Course: *course}
	if ref.IsModule() {
		module, err := s.repo.FindModule(ctx, s.db, ref.CMID)
		if err != nil {
			return domain.Item{}, err
		}
		if module == nil {
			return domain.Item{}, domain.ErrNotFound
		}
		if module.CourseID != courseID {
			return domain.Item{}, domain.ErrCourseMismatch
		}
		item.Module = module
		return item, nil
	}

	section, err := s.repo.FindSection(ctx, s.db, ref.SectionID)
	if err != nil {
		return domain.Item{}, err
	}
	if section == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	if section.CourseID != courseID {
		return domain.Item{}, domain.ErrCourseMismatch
	}
	item.Section = section
	return item, nil
}
