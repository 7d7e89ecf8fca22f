package condition

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/config"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	pricingdomain "github.com/opencampus/paygate/internal/pricing/domain"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWallet struct {
	balance int64
}

func (s *stubWallet) Balance(ctx context.Context, userID snowflake.ID) (int64, error) {
	return s.balance, nil
}

func (s *stubWallet) Debit(ctx context.Context, req walletdomain.DebitRequest) error { return nil }

func (s *stubWallet) Credit(ctx context.Context, req walletdomain.CreditRequest) error { return nil }

type stubPricing struct {
	effective int64
}

func (s *stubPricing) Resolve(ctx context.Context, req pricingdomain.ResolveRequest) (pricingdomain.Quote, error) {
	effective := req.BaseCost
	if s.effective > 0 {
		effective = s.effective
	}
	return pricingdomain.Quote{BaseCost: req.BaseCost, EffectiveCost: effective}, nil
}

func newTestDescriber(balance, paid, effective int64) *Describer {
	return NewDescriber(DescriberParams{
		Log: zap.NewNop(),
		DisplayCfg: config.NewStaticDisplayConfigHolder(config.DisplayConfig{
			Currency:   "EGP",
			MinorUnits: 2,
		}),
		WalletSvc:      &stubWallet{balance: balance},
		PricingSvc:     &stubPricing{effective: effective},
		EntitlementSvc: &stubEntitlements{total: paid},
	})
}

func TestDescribeInvalidCost(t *testing.T) {
	d := newTestDescriber(0, 0, 0)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID: 1,
		Item:   entitlementdomain.NewModuleRef(10),
		Cost:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnrestricted, desc.Status)
	assert.True(t, desc.Available)
	assert.Contains(t, desc.Message, "Invalid cost")
}

func TestDescribeInsufficientBalance(t *testing.T) {
	d := newTestDescriber(5000, 0, 0)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID: 1,
		Item:   entitlementdomain.NewModuleRef(10),
		Cost:   10000,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientBalance, desc.Status)
	assert.False(t, desc.Available)
	assert.Equal(t, "Insufficient balance to access, 100.00 EGP required while your balance is 50.00 EGP", desc.Message)
}

func TestDescribeAlreadyPaid(t *testing.T) {
	d := newTestDescriber(20000, 10000, 0)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID: 1,
		Item:   entitlementdomain.NewModuleRef(10),
		Cost:   10000,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyPaid, desc.Status)
	assert.True(t, desc.Available)
	assert.Equal(t, "Already paid 100.00 EGP", desc.Message)
}

func TestDescribePaymentRequired(t *testing.T) {
	d := newTestDescriber(20000, 0, 0)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID: 1,
		Item:   entitlementdomain.NewModuleRef(10),
		Cost:   10000,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentRequired, desc.Status)
	assert.False(t, desc.Available)
	assert.Equal(t, "You need to pay 100.00 EGP for access. Your current balance is 200.00 EGP", desc.Message)
}

func TestDescribeInvertedPrompt(t *testing.T) {
	// Inverted and already paid: the item is locked for this user, and the
	// prompt says the cost was already spent.
	d := newTestDescriber(20000, 10000, 0)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID: 1,
		Item:   entitlementdomain.NewModuleRef(10),
		Cost:   10000,
		Invert: true,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentRequired, desc.Status)
	assert.False(t, desc.Available)
	assert.Equal(t, "A cost of 100.00 EGP already paid. Your current balance is 200.00 EGP", desc.Message)
}

func TestDescribeDiscountedPriceTag(t *testing.T) {
	d := newTestDescriber(20000, 0, 6000)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID:     1,
		Item:       entitlementdomain.NewModuleRef(10),
		Cost:       10000,
		CouponCode: "SAVE40",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentRequired, desc.Status)
	assert.Equal(t, int64(6000), desc.EffectiveCost)
	assert.Contains(t, desc.Message, "<del>100.00 EGP</del> 60.00 EGP")
}

func TestDescribeBalanceCheckedAgainstEffectiveCost(t *testing.T) {
	// Balance covers the discounted price but not the base price; the
	// discounted price is what matters.
	d := newTestDescriber(7000, 0, 6000)

	desc, err := d.Describe(context.Background(), DescribeRequest{
		UserID:     1,
		Item:       entitlementdomain.NewModuleRef(10),
		Cost:       10000,
		CouponCode: "SAVE40",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentRequired, desc.Status)
}
