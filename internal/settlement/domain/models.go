package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	// AttemptStatusPending: the attempt row exists, nothing else written.
	AttemptStatusPending AttemptStatus = "pending"
	// AttemptStatusRecorded: the payment record is written but the wallet
	// has not been debited. Rows left in this state are what the
	// reconciliation sweep looks for.
	AttemptStatusRecorded AttemptStatus = "recorded"
	AttemptStatusSettled  AttemptStatus = "settled"
	AttemptStatusFailed   AttemptStatus = "failed"
)

// SettlementAttempt is the write-ahead log of one pay action. It keeps the
// two-store commit (local payment record, wallet ledger) inspectable when a
// crash or debit failure splits them.
type SettlementAttempt struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       snowflake.ID `gorm:"not null;index"`
	CourseID     snowflake.ID `gorm:"not null"`
	CMID         *snowflake.ID
	SectionID    *snowflake.ID
	RequiredCost int64             `gorm:"not null"`
	Amount       int64             `gorm:"not null"`
	Status       AttemptStatus     `gorm:"type:text;not null;index"`
	Failure      string            `gorm:"type:text"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt    time.Time         `gorm:"not null"`
	UpdatedAt    time.Time         `gorm:"not null"`
}

// TableName sets the database table name.
func (SettlementAttempt) TableName() string { return "settlement_attempts" }

var (
	ErrMissingConfirmation = errors.New("missing_confirmation")
	ErrCostMismatch        = errors.New("cost_mismatch")
	ErrLedgerDebitFailed   = errors.New("ledger_debit_failed")
)
