package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("wallet.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Balance(ctx context.Context, userID snowflake.ID) (int64, error) {
	if userID == 0 {
		return 0, domain.ErrInvalidUser
	}
	account, err := s.repo.FindAccount(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		// No account yet means an empty wallet, not an error.
		return 0, nil
	}
	return account.Balance, nil
}

func (s *Service) Debit(ctx context.Context, req domain.DebitRequest) error {
	if req.UserID == 0 {
		return domain.ErrInvalidUser
	}
	if req.Amount < 0 {
		return domain.ErrInvalidAmount
	}
	if req.SourceType == "" || req.SourceID == 0 {
		return domain.ErrInvalidSource
	}
	if req.Amount == 0 {
		// A fully discounted charge moves no money; record nothing.
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertTransaction(ctx, tx, &domain.WalletTransaction{
			ID:         s.genID.Generate(),
			UserID:     req.UserID,
			Direction:  domain.TransactionDirectionDebit,
			Amount:     req.Amount,
			SourceType: req.SourceType,
			SourceID:   req.SourceID,
			Reason:     req.Reason,
			CreatedAt:  s.clock.Now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			// Same source already debited; the replay must not charge twice.
			s.log.Warn("duplicate debit ignored",
				zap.String("source_type", string(req.SourceType)),
				zap.String("source_id", req.SourceID.String()),
			)
			return nil
		}

		updated, err := s.repo.DebitBalance(ctx, tx, req.UserID, req.Amount)
		if err != nil {
			return err
		}
		if !updated {
			account, err := s.repo.FindAccount(ctx, tx, req.UserID)
			if err != nil {
				return err
			}
			if account == nil {
				return domain.ErrAccountNotFound
			}
			return domain.ErrInsufficientBalance
		}
		return nil
	})
}

func (s *Service) Credit(ctx context.Context, req domain.CreditRequest) error {
	if req.UserID == 0 {
		return domain.ErrInvalidUser
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if req.SourceType == "" || req.SourceID == 0 {
		return domain.ErrInvalidSource
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertTransaction(ctx, tx, &domain.WalletTransaction{
			ID:         s.genID.Generate(),
			UserID:     req.UserID,
			Direction:  domain.TransactionDirectionCredit,
			Amount:     req.Amount,
			SourceType: req.SourceType,
			SourceID:   req.SourceID,
			Reason:     req.Reason,
			CreatedAt:  s.clock.Now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		return s.repo.CreditBalance(ctx, tx, req.UserID, req.Amount)
	})
}
