package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/coupon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Resolve(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	if !coupon.UsableAt(s.clock.Now()) {
		return nil, domain.ErrNotUsable
	}
	return coupon, nil
}

func (s *Service) PriceAfter(coupon *domain.Coupon, baseCost int64) int64 {
	if coupon == nil || baseCost <= 0 {
		return baseCost
	}

	var discounted int64
	switch coupon.Kind {
	case domain.CouponKindPercent:
		discounted = baseCost - baseCost*coupon.Value/100
	case domain.CouponKindFixed:
		discounted = baseCost - coupon.Value
	default:
		return baseCost
	}

	if discounted < 0 {
		return 0
	}
	if discounted > baseCost {
		return baseCost
	}
	return discounted
}

func (s *Service) MarkUsed(ctx context.Context, id snowflake.ID, userID snowflake.ID) error {
	updated, err := s.repo.IncrementUsage(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrExhausted
	}

	s.log.Info("coupon consumed",
		zap.String("coupon_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}
