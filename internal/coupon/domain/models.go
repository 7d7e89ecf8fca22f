package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CouponKind string

const (
	// CouponKindPercent discounts by Value percent of the base cost.
	CouponKindPercent CouponKind = "percent"
	// CouponKindFixed discounts by Value minor units, floored at zero.
	CouponKindFixed CouponKind = "fixed"
)

type Coupon struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"not null;uniqueIndex"`
	Kind      CouponKind   `gorm:"type:text;not null"`
	Value     int64        `gorm:"not null"`
	MaxUses   int          `gorm:"not null;default:1"`
	UsedCount int          `gorm:"not null;default:0"`
	ValidFrom *time.Time
	ValidTo   *time.Time
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) UsableAt(now time.Time) bool {
	if c.UsedCount >= c.MaxUses {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	return true
}

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrNotFound    = errors.New("coupon_not_found")
	ErrNotUsable   = errors.New("coupon_not_usable")
	ErrExhausted   = errors.New("coupon_exhausted")
)
