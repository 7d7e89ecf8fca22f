package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/opencampus/paygate/internal/coupon/domain"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
)

// ResolveRequest computes the price to actually charge. CouponCode is the
// explicit coupon from the caller's session; there is no implicit session
// state here.
type ResolveRequest struct {
	BaseCost   int64
	UserID     snowflake.ID
	CourseID   snowflake.ID
	Item       entitlementdomain.ItemRef
	CouponCode string
}

// Quote is the authoritative price for one pay action. It is ephemeral and
// side-effect free: the coupon, if any, is consumed by settlement, never here.
type Quote struct {
	BaseCost      int64
	EffectiveCost int64
	Coupon        *coupondomain.Coupon
}

func (q Quote) Discounted() bool { return q.EffectiveCost < q.BaseCost }

type Service interface {
	// Resolve guarantees 0 <= EffectiveCost <= BaseCost. A coupon code that
	// is unknown, expired or exhausted quotes the undiscounted price rather
	// than failing the whole flow.
	Resolve(ctx context.Context, req ResolveRequest) (Quote, error)
}
