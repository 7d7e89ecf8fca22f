package service

import (
	"context"
	"errors"

	coupondomain "github.com/opencampus/paygate/internal/coupon/domain"
	"github.com/opencampus/paygate/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	CouponSvc coupondomain.Service
}

type Service struct {
	log       *zap.Logger
	couponSvc coupondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("pricing.service"),
		couponSvc: p.CouponSvc,
	}
}

func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.Quote, error) {
	quote := domain.Quote{
		BaseCost:      req.BaseCost,
		EffectiveCost: req.BaseCost,
	}
	if req.BaseCost <= 0 {
		quote.BaseCost = 0
		quote.EffectiveCost = 0
		return quote, nil
	}
	if req.CouponCode == "" {
		return quote, nil
	}

	coupon, err := s.couponSvc.Resolve(ctx, req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, coupondomain.ErrInvalidCode),
			errors.Is(err, coupondomain.ErrNotFound),
			errors.Is(err, coupondomain.ErrNotUsable):
			// A bad coupon quotes full price; it is not a pricing failure.
			s.log.Debug("coupon not applied",
				zap.String("user_id", req.UserID.String()),
				zap.String("item", req.Item.String()),
				zap.Error(err),
			)
			return quote, nil
		default:
			return domain.Quote{}, err
		}
	}

	effective := s.couponSvc.PriceAfter(coupon, req.BaseCost)
	if effective < 0 {
		effective = 0
	}
	if effective > req.BaseCost {
		effective = req.BaseCost
	}

	quote.EffectiveCost = effective
	if effective < req.BaseCost {
		quote.Coupon = coupon
	}
	return quote, nil
}
