package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TransactionDirection represents debit or credit movements.
type TransactionDirection string

const (
	TransactionDirectionDebit  TransactionDirection = "debit"
	TransactionDirectionCredit TransactionDirection = "credit"
)

type TransactionSourceType string

const (
	// SourceTypeSettlement is a debit charged by a content-access settlement.
	SourceTypeSettlement TransactionSourceType = "settlement"
	// SourceTypeTopUp is a credit from an external top-up flow.
	SourceTypeTopUp TransactionSourceType = "top_up"
	// SourceTypeAdjustment is a manual correction.
	SourceTypeAdjustment TransactionSourceType = "adjustment"
)

// WalletAccount is the prepaid balance for one user.
type WalletAccount struct {
	UserID    snowflake.ID `gorm:"primaryKey;column:user_id"`
	Balance   int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (WalletAccount) TableName() string { return "wallet_accounts" }

// WalletTransaction captures one immutable balance movement.
type WalletTransaction struct {
	ID         snowflake.ID          `gorm:"primaryKey"`
	UserID     snowflake.ID          `gorm:"not null;index"`
	Direction  TransactionDirection  `gorm:"type:text;not null"`
	Amount     int64                 `gorm:"not null"`
	SourceType TransactionSourceType `gorm:"type:text;not null"`
	SourceID   snowflake.ID          `gorm:"not null"`
	Reason     string                `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (WalletTransaction) TableName() string { return "wallet_transactions" }

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidSource       = errors.New("invalid_source")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)
