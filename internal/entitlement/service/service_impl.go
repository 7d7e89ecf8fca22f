package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/entitlement/domain"
	"github.com/opencampus/paygate/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("entitlement.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) IsAvailable(ctx context.Context, userID snowflake.ID, ref domain.ItemRef, requiredCost int64) (bool, error) {
	// A zero or negative cost is a configuration artifact, not a restriction.
	if requiredCost <= 0 {
		s.countCheck("unrestricted")
		return true, nil
	}

	if err := ref.Validate(); err != nil {
		return false, err
	}
	if userID == 0 {
		return false, domain.ErrInvalidUser
	}

	total, err := s.repo.SumCredited(ctx, s.db, userID, ref)
	if err != nil {
		// A read failure must reach the caller; guessing either way here has
		// bitten us before.
		s.countCheck("error")
		return false, err
	}

	available := total >= requiredCost
	if available {
		s.countCheck("available")
	} else {
		s.countCheck("locked")
	}
	return available, nil
}

func (s *Service) Append(ctx context.Context, tx *gorm.DB, req domain.AppendRequest) (domain.PaymentRecord, error) {
	if err := req.Item.Validate(); err != nil {
		return domain.PaymentRecord{}, err
	}
	if req.UserID == 0 {
		return domain.PaymentRecord{}, domain.ErrInvalidUser
	}
	if req.Amount < 0 {
		return domain.PaymentRecord{}, domain.ErrInvalidAmount
	}

	credited := req.Credited
	if credited == 0 {
		credited = req.Amount
	}
	if credited < req.Amount {
		return domain.PaymentRecord{}, domain.ErrInvalidAmount
	}

	record := domain.PaymentRecord{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		Amount:    req.Amount,
		Credited:  credited,
		CreatedAt: s.clock.Now(),
	}
	if req.Item.IsModule() {
		cmID := req.Item.CMID
		record.CMID = &cmID
	} else {
		sectionID := req.Item.SectionID
		record.SectionID = &sectionID
	}

	if err := s.repo.Insert(ctx, tx, &record); err != nil {
		return domain.PaymentRecord{}, err
	}

	s.log.Info("payment record appended",
		zap.String("record_id", record.ID.String()),
		zap.String("user_id", record.UserID.String()),
		zap.String("item", req.Item.String()),
		zap.Int64("amount", record.Amount),
		zap.Int64("credited", record.Credited),
	)
	return record, nil
}

func (s *Service) countCheck(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.AvailabilityChecks.WithLabelValues(outcome).Inc()
}
