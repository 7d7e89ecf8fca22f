package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, attempt *SettlementAttempt) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status AttemptStatus, failure string) error
	ListByStatus(ctx context.Context, db *gorm.DB, status AttemptStatus, limit int) ([]*SettlementAttempt, error)
}

type SettleRequest struct {
	UserID   snowflake.ID
	CourseID snowflake.ID
	Item     entitlementdomain.ItemRef
	// ClaimedCost is the pre-discount cost the client asserts; it must match
	// a wallet condition configured on the item.
	ClaimedCost int64
	CouponCode  string
	// ActorConfirmed asserts the boundary layer validated the session and
	// consumed the one-time confirmation token for this exact action.
	ActorConfirmed bool
}

type Result struct {
	SettlementID snowflake.ID
	RecordID     snowflake.ID
	Amount       int64
	Message      string
}

type Service interface {
	// Settle performs one pay action: validates the claimed cost against the
	// item's configured conditions, recomputes the effective price server
	// side, appends the payment record, debits the wallet, and consumes the
	// coupon when one discounted the charge. The payment record is written
	// before the debit so a failed debit leaves a reconcilable trail rather
	// than a silent loss.
	Settle(ctx context.Context, req SettleRequest) (Result, error)
}
