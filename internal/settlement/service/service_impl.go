package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/opencampus/paygate/internal/catalog/domain"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/condition"
	coupondomain "github.com/opencampus/paygate/internal/coupon/domain"
	"github.com/opencampus/paygate/internal/display"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	"github.com/opencampus/paygate/internal/metrics"
	pricingdomain "github.com/opencampus/paygate/internal/pricing/domain"
	"github.com/opencampus/paygate/internal/settlement/domain"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	CatalogSvc     catalogdomain.Service
	PricingSvc     pricingdomain.Service
	EntitlementSvc entitlementdomain.Service
	WalletSvc      walletdomain.Service
	CouponSvc      coupondomain.Service
	Metrics        *metrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	catalogSvc     catalogdomain.Service
	pricingSvc     pricingdomain.Service
	entitlementSvc entitlementdomain.Service
	walletSvc      walletdomain.Service
	couponSvc      coupondomain.Service
	metrics        *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("settlement.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		catalogSvc:     p.CatalogSvc,
		pricingSvc:     p.PricingSvc,
		entitlementSvc: p.EntitlementSvc,
		walletSvc:      p.WalletSvc,
		couponSvc:      p.CouponSvc,
		metrics:        p.Metrics,
	}
}

func (s *Service) Settle(ctx context.Context, req domain.SettleRequest) (domain.Result, error) {
	start := s.clock.Now()
	result, err := s.settle(ctx, req)
	s.observe(start, err)
	return result, err
}

func (s *Service) settle(ctx context.Context, req domain.SettleRequest) (domain.Result, error) {
	// Reject everything rejectable before the first write.
	if !req.ActorConfirmed {
		return domain.Result{}, domain.ErrMissingConfirmation
	}
	if err := req.Item.Validate(); err != nil {
		return domain.Result{}, err
	}
	if req.UserID == 0 {
		return domain.Result{}, entitlementdomain.ErrInvalidUser
	}

	item, err := s.catalogSvc.ResolveItem(ctx, req.CourseID, req.Item)
	if err != nil {
		return domain.Result{}, err
	}

	// The client-submitted cost counts for nothing unless it is literally one
	// of the costs configured on the item's wallet conditions.
	if req.ClaimedCost <= 0 || !condition.CostMatches(item.Availability(), req.ClaimedCost) {
		return domain.Result{}, domain.ErrCostMismatch
	}

	// Recompute the price server side; the client's idea of the discounted
	// price is never used.
	quote, err := s.pricingSvc.Resolve(ctx, pricingdomain.ResolveRequest{
		BaseCost:   req.ClaimedCost,
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		Item:       req.Item,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		return domain.Result{}, err
	}

	attempt := s.newAttempt(req, item, quote)
	if err := s.repo.Insert(ctx, s.db, attempt); err != nil {
		return domain.Result{}, err
	}

	var record entitlementdomain.PaymentRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err = s.entitlementSvc.Append(ctx, tx, entitlementdomain.AppendRequest{
			UserID:   req.UserID,
			CourseID: req.CourseID,
			Item:     req.Item,
			Amount:   quote.EffectiveCost,
			Credited: quote.BaseCost,
		})
		if err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, tx, attempt.ID, domain.AttemptStatusRecorded, "")
	})
	if err != nil {
		if uerr := s.repo.UpdateStatus(ctx, s.db, attempt.ID, domain.AttemptStatusFailed, err.Error()); uerr != nil {
			s.log.Error("failed to mark attempt failed", zap.Error(uerr),
				zap.String("settlement_id", attempt.ID.String()))
		}
		return domain.Result{}, err
	}

	if err := s.walletSvc.Debit(ctx, walletdomain.DebitRequest{
		UserID:     req.UserID,
		Amount:     quote.EffectiveCost,
		SourceType: walletdomain.SourceTypeSettlement,
		SourceID:   attempt.ID,
		Reason:     display.DebitReason(item.DisplayName()),
	}); err != nil {
		// The payment record already exists. The attempt stays inspectable in
		// "recorded"/"failed" so the reconciliation sweep can pick it up; the
		// caller must never see success here.
		if s.metrics != nil {
			s.metrics.LedgerDebitsFailed.Inc()
		}
		s.log.Error("wallet debit failed after record append",
			zap.String("settlement_id", attempt.ID.String()),
			zap.String("record_id", record.ID.String()),
			zap.String("user_id", req.UserID.String()),
			zap.Int64("amount", quote.EffectiveCost),
			zap.Error(err),
		)
		if uerr := s.repo.UpdateStatus(ctx, s.db, attempt.ID, domain.AttemptStatusFailed, err.Error()); uerr != nil {
			s.log.Error("failed to mark attempt failed", zap.Error(uerr),
				zap.String("settlement_id", attempt.ID.String()))
		}
		if errors.Is(err, walletdomain.ErrInsufficientBalance) {
			return domain.Result{}, err
		}
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrLedgerDebitFailed, err)
	}

	// Only a coupon that actually lowered the charge is consumed, and only
	// now that the money moved.
	if quote.Coupon != nil && quote.EffectiveCost < quote.BaseCost {
		if err := s.couponSvc.MarkUsed(ctx, quote.Coupon.ID, req.UserID); err != nil {
			s.log.Warn("failed to mark coupon used",
				zap.String("coupon_id", quote.Coupon.ID.String()),
				zap.String("settlement_id", attempt.ID.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.UpdateStatus(ctx, s.db, attempt.ID, domain.AttemptStatusSettled, ""); err != nil {
		s.log.Error("failed to mark attempt settled", zap.Error(err),
			zap.String("settlement_id", attempt.ID.String()))
	}

	return domain.Result{
		SettlementID: attempt.ID,
		RecordID:     record.ID,
		Amount:       quote.EffectiveCost,
		Message:      display.PaymentSuccess(),
	}, nil
}

func (s *Service) newAttempt(req domain.SettleRequest, item catalogdomain.Item, quote pricingdomain.Quote) *domain.SettlementAttempt {
	now := s.clock.Now()
	attempt := &domain.SettlementAttempt{
		ID:           s.genID.Generate(),
		UserID:       req.UserID,
		CourseID:     req.CourseID,
		RequiredCost: quote.BaseCost,
		Amount:       quote.EffectiveCost,
		Status:       domain.AttemptStatusPending,
		Metadata: datatypes.JSONMap{
			"item":      req.Item.String(),
			"item_name": item.DisplayName(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Item.IsModule() {
		cmID := req.Item.CMID
		attempt.CMID = &cmID
	} else {
		sectionID := req.Item.SectionID
		attempt.SectionID = &sectionID
	}
	if req.CouponCode != "" {
		attempt.Metadata["coupon_code"] = req.CouponCode
	}
	return attempt
}

func (s *Service) observe(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "settled"
	if err != nil {
		status = "failed"
	}
	s.metrics.Settlements.WithLabelValues(status).Inc()
	s.metrics.SettlementDuration.Observe(s.clock.Now().Sub(start).Seconds())
}
