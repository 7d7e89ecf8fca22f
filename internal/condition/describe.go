package condition

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/config"
	"github.com/opencampus/paygate/internal/display"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	pricingdomain "github.com/opencampus/paygate/internal/pricing/domain"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Status is the machine-readable availability outcome exposed alongside the
// rendered message.
type Status string

const (
	StatusUnrestricted        Status = "unrestricted"
	StatusInsufficientBalance Status = "insufficient_balance"
	StatusAlreadyPaid         Status = "already_paid"
	StatusPaymentRequired     Status = "payment_required"
)

type DescribeRequest struct {
	UserID   snowflake.ID
	CourseID snowflake.ID
	Item     entitlementdomain.ItemRef
	Cost     int64
	// CouponCode is passed explicitly by the caller; the describer holds no
	// session state.
	CouponCode string
	Invert     bool
}

type Description struct {
	Status        Status
	Message       string
	Available     bool
	Cost          int64
	EffectiveCost int64
	Balance       int64
}

type DescriberParams struct {
	fx.In

	Log            *zap.Logger
	DisplayCfg     *config.DisplayConfigHolder
	WalletSvc      walletdomain.Service
	PricingSvc     pricingdomain.Service
	EntitlementSvc entitlementdomain.Service
}

// Describer renders the restriction text shown in place of a locked item.
type Describer struct {
	log            *zap.Logger
	displayCfg     *config.DisplayConfigHolder
	walletSvc      walletdomain.Service
	pricingSvc     pricingdomain.Service
	entitlementSvc entitlementdomain.Service
}

func NewDescriber(p DescriberParams) *Describer {
	return &Describer{
		log:            p.Log.Named("condition.describer"),
		displayCfg:     p.DisplayCfg,
		walletSvc:      p.WalletSvc,
		pricingSvc:     p.PricingSvc,
		entitlementSvc: p.EntitlementSvc,
	}
}

func (d *Describer) Describe(ctx context.Context, req DescribeRequest) (Description, error) {
	cfg := d.displayCfg.Get()

	if req.Cost <= 0 {
		return Description{
			Status:    StatusUnrestricted,
			Message:   display.InvalidCost(),
			Available: true,
		}, nil
	}

	quote, err := d.pricingSvc.Resolve(ctx, pricingdomain.ResolveRequest{
		BaseCost:   req.Cost,
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		Item:       req.Item,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		return Description{}, err
	}

	balance, err := d.walletSvc.Balance(ctx, req.UserID)
	if err != nil {
		return Description{}, err
	}

	desc := Description{
		Cost:          quote.BaseCost,
		EffectiveCost: quote.EffectiveCost,
		Balance:       balance,
	}
	costTag := display.PriceTag(cfg, quote.BaseCost, quote.EffectiveCost)
	balanceTag := display.FormatAmount(cfg, balance)

	if quote.EffectiveCost > balance {
		desc.Status = StatusInsufficientBalance
		desc.Message = display.InsufficientBalance(costTag, balanceTag)
		return desc, nil
	}

	available, err := Condition{Cost: req.Cost}.Evaluate(ctx, d.entitlementSvc, req.UserID, req.Item, req.Invert)
	if err != nil {
		return Description{}, err
	}
	desc.Available = available

	if available {
		desc.Status = StatusAlreadyPaid
		desc.Message = display.AlreadyPaid(costTag)
		return desc, nil
	}

	desc.Status = StatusPaymentRequired
	if req.Invert {
		desc.Message = display.NegatedPrompt(costTag, balanceTag)
	} else {
		desc.Message = display.PayPrompt(costTag, balanceTag)
	}
	return desc, nil
}
