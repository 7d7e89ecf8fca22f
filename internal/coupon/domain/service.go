package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Coupon, error)
	// IncrementUsage bumps used_count while it is below max_uses; reports
	// whether a row was updated.
	IncrementUsage(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}

type Service interface {
	// Resolve returns the usable coupon for code. ErrNotFound for unknown
	// codes, ErrNotUsable for expired or exhausted ones.
	Resolve(ctx context.Context, code string) (*Coupon, error)

	// PriceAfter computes the discounted price, clamped to [0, baseCost].
	PriceAfter(coupon *Coupon, baseCost int64) int64

	// MarkUsed consumes one use of the coupon. Called only after a
	// successful settlement so abandoned payments never burn a coupon.
	MarkUsed(ctx context.Context, id snowflake.ID, userID snowflake.ID) error
}
