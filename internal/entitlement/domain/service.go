package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *PaymentRecord) error
	SumCredited(ctx context.Context, db *gorm.DB, userID snowflake.ID, ref ItemRef) (int64, error)
}

// AppendRequest creates one payment record inside the caller's transaction.
type AppendRequest struct {
	UserID   snowflake.ID
	CourseID snowflake.ID
	Item     ItemRef
	// Amount actually charged (post-discount).
	Amount int64
	// Credited value toward the threshold; defaults to Amount when zero.
	Credited int64
}

type Service interface {
	// IsAvailable reports whether the user's recorded payments for the item
	// reach requiredCost. requiredCost <= 0 means the item is unrestricted
	// and storage is not consulted. Read errors propagate; they are never
	// resolved to a default answer.
	IsAvailable(ctx context.Context, userID snowflake.ID, ref ItemRef, requiredCost int64) (bool, error)

	// Append writes a payment record using tx, so settlement can group it
	// with its attempt bookkeeping. Records are never mutated afterwards.
	Append(ctx context.Context, tx *gorm.DB, req AppendRequest) (PaymentRecord, error)
}
