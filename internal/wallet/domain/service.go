package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindAccount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*WalletAccount, error)
	// DebitBalance decrements the balance only when it covers amount;
	// reports whether a row was updated.
	DebitBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, amount int64) (bool, error)
	CreditBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, amount int64) error
	// InsertTransaction is idempotent on (source_type, source_id); reports
	// whether a new row was written.
	InsertTransaction(ctx context.Context, db *gorm.DB, txn *WalletTransaction) (bool, error)
}

type DebitRequest struct {
	UserID     snowflake.ID
	Amount     int64
	SourceType TransactionSourceType
	SourceID   snowflake.ID
	// Reason is the human-readable description shown on statements,
	// e.g. "Due to access to: Course: Module(Quiz 1)".
	Reason string
}

type CreditRequest struct {
	UserID     snowflake.ID
	Amount     int64
	SourceType TransactionSourceType
	SourceID   snowflake.ID
	Reason     string
}

type Service interface {
	Balance(ctx context.Context, userID snowflake.ID) (int64, error)

	// Debit withdraws Amount from the user's balance and records the
	// transaction, all within one database transaction. It fails with
	// ErrInsufficientBalance instead of driving the balance negative.
	// Replaying the same (SourceType, SourceID) is a no-op success.
	Debit(ctx context.Context, req DebitRequest) error

	Credit(ctx context.Context, req CreditRequest) error
}
