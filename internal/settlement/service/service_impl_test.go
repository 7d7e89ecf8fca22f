package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/opencampus/paygate/internal/catalog/domain"
	catalogrepo "github.com/opencampus/paygate/internal/catalog/repository"
	catalogservice "github.com/opencampus/paygate/internal/catalog/service"
	"github.com/opencampus/paygate/internal/clock"
	coupondomain "github.com/opencampus/paygate/internal/coupon/domain"
	couponrepo "github.com/opencampus/paygate/internal/coupon/repository"
	couponservice "github.com/opencampus/paygate/internal/coupon/service"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	entitlementrepo "github.com/opencampus/paygate/internal/entitlement/repository"
	entitlementservice "github.com/opencampus/paygate/internal/entitlement/service"
	"github.com/opencampus/paygate/internal/metrics"
	pricingservice "github.com/opencampus/paygate/internal/pricing/service"
	"github.com/opencampus/paygate/internal/settlement/domain"
	settlementrepo "github.com/opencampus/paygate/internal/settlement/repository"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	walletrepo "github.com/opencampus/paygate/internal/wallet/repository"
	walletservice "github.com/opencampus/paygate/internal/wallet/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const walletAvailability = `{"op":"&","c":[{"type":"wallet","cost":100}]}`

type fixture struct {
	db             *gorm.DB
	svc            domain.Service
	entitlementSvc entitlementdomain.Service
	walletSvc      walletdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Course{},
		&catalogdomain.CourseModule{},
		&catalogdomain.CourseSection{},
		&coupondomain.Coupon{},
		&entitlementdomain.PaymentRecord{},
		&walletdomain.WalletAccount{},
		&walletdomain.WalletTransaction{},
		&domain.SettlementAttempt{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_wallet_transactions_source ON wallet_transactions(source_type, source_id)",
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB: db, Log: log, Repo: catalogrepo.Provide(),
	})
	couponSvc := couponservice.New(couponservice.Params{
		DB: db, Log: log, Clock: clk, Repo: couponrepo.Provide(),
	})
	pricingSvc := pricingservice.New(pricingservice.Params{
		Log: log, CouponSvc: couponSvc,
	})
	entitlementSvc := entitlementservice.New(entitlementservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: entitlementrepo.Provide(),
	})
	walletSvc := walletservice.New(walletservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: walletrepo.Provide(),
	})

	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          clk,
		Repo:           settlementrepo.Provide(),
		CatalogSvc:     catalogSvc,
		PricingSvc:     pricingSvc,
		EntitlementSvc: entitlementSvc,
		WalletSvc:      walletSvc,
		CouponSvc:      couponSvc,
		Metrics:        metrics.NewForTest(),
	})

	// One course with one gated module; user 1 holds a funded wallet.
	require.NoError(t, db.Create(&catalogdomain.Course{ID: 5, FullName: "Algebra"}).Error)
	require.NoError(t, db.Create(&catalogdomain.CourseModule{
		ID: 10, CourseID: 5, Name: "Quiz 1", Availability: walletAvailability,
	}).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO wallet_accounts (user_id, balance, updated_at) VALUES (1, 500, CURRENT_TIMESTAMP)",
	).Error)

	return &fixture{db: db, svc: svc, entitlementSvc: entitlementSvc, walletSvc: walletSvc}
}

func (f *fixture) request() domain.SettleRequest {
	return domain.SettleRequest{
		UserID:         1,
		CourseID:       5,
		Item:           entitlementdomain.NewModuleRef(10),
		ClaimedCost:    100,
		ActorConfirmed: true,
	}
}

func (f *fixture) attempts(t *testing.T) []*domain.SettlementAttempt {
	t.Helper()
	var attempts []*domain.SettlementAttempt
	require.NoError(t, f.db.Order("created_at asc").Find(&attempts).Error)
	return attempts
}

func (f *fixture) records(t *testing.T) []entitlementdomain.PaymentRecord {
	t.Helper()
	var records []entitlementdomain.PaymentRecord
	require.NoError(t, f.db.Find(&records).Error)
	return records
}

func TestSettleSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Settle(ctx, f.request())
	require.NoError(t, err)
	assert.NotZero(t, result.SettlementID)
	assert.Equal(t, int64(100), result.Amount)
	assert.Equal(t, "Payment successful", result.Message)

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, int64(100), records[0].Amount)
	assert.Equal(t, int64(100), records[0].Credited)
	assert.Equal(t, result.RecordID, records[0].ID)

	balance, err := f.walletSvc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance)

	attempts := f.attempts(t)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.AttemptStatusSettled, attempts[0].Status)

	// The item is open now.
	ok, err := f.entitlementSvc.IsAvailable(ctx, 1, entitlementdomain.NewModuleRef(10), 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSettleRequiresConfirmation(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.ActorConfirmed = false
	_, err := f.svc.Settle(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingConfirmation)
	assert.Empty(t, f.attempts(t))
}

func TestSettleRejectsBadItemRef(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.Item = entitlementdomain.ItemRef{}
	_, err := f.svc.Settle(context.Background(), req)
	assert.ErrorIs(t, err, entitlementdomain.ErrInvalidItemRef)
}

func TestSettleUnknownItem(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.Item = entitlementdomain.NewModuleRef(999)
	_, err := f.svc.Settle(context.Background(), req)
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}

func TestSettleCostMismatchWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, cost := range []int64{0, -10, 99, 101} {
		req := f.request()
		req.ClaimedCost = cost
		_, err := f.svc.Settle(ctx, req)
		assert.ErrorIs(t, err, domain.ErrCostMismatch, "claimed cost %d", cost)
	}

	assert.Empty(t, f.attempts(t))
	assert.Empty(t, f.records(t))

	balance, err := f.walletSvc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestSettleWithCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&coupondomain.Coupon{
		ID: 77, Code: "SAVE40", Kind: coupondomain.CouponKindPercent, Value: 40, MaxUses: 1,
	}).Error)

	req := f.request()
	req.CouponCode = "SAVE40"
	result, err := f.svc.Settle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Amount)

	// Charged the discounted price, credited the full requirement.
	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, int64(60), records[0].Amount)
	assert.Equal(t, int64(100), records[0].Credited)

	balance, err := f.walletSvc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(440), balance)

	var usedCount int
	require.NoError(t, f.db.Raw("SELECT used_count FROM coupons WHERE id = 77").Scan(&usedCount).Error)
	assert.Equal(t, 1, usedCount)

	ok, err := f.entitlementSvc.IsAvailable(ctx, 1, entitlementdomain.NewModuleRef(10), 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSettleBadCouponChargesFullPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.CouponCode = "NOSUCH"
	result, err := f.svc.Settle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Amount)

	balance, err := f.walletSvc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance)
}

func TestSettleInsufficientBalanceLeavesTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Exec("UPDATE wallet_accounts SET balance = 50 WHERE user_id = 1").Error)

	_, err := f.svc.Settle(ctx, f.request())
	assert.ErrorIs(t, err, walletdomain.ErrInsufficientBalance)

	// The record was appended before the debit; the failed attempt keeps the
	// pair inspectable for reconciliation.
	require.Len(t, f.records(t), 1)
	attempts := f.attempts(t)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.AttemptStatusFailed, attempts[0].Status)
	assert.NotEmpty(t, attempts[0].Failure)

	balance, err := f.walletSvc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestSettleNoWalletAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.UserID = 2
	_, err := f.svc.Settle(ctx, req)
	assert.ErrorIs(t, err, domain.ErrLedgerDebitFailed)

	attempts := f.attempts(t)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.AttemptStatusFailed, attempts[0].Status)
}

func TestSettleSectionItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&catalogdomain.CourseSection{
		ID: 30, CourseID: 5, Name: "Week 2", SectionNo: 2, Availability: walletAvailability,
	}).Error)

	req := f.request()
	req.Item = entitlementdomain.NewSectionRef(30)
	result, err := f.svc.Settle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Amount)

	records := f.records(t)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].SectionID)
	assert.Equal(t, snowflake.ID(30), *records[0].SectionID)
	assert.Nil(t, records[0].CMID)
}

func TestSettleCourseMismatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&catalogdomain.Course{ID: 6, FullName: "Geometry"}).Error)

	req := f.request()
	req.CourseID = 6
	_, err := f.svc.Settle(context.Background(), req)
	assert.ErrorIs(t, err, catalogdomain.ErrCourseMismatch)
	assert.Empty(t, f.attempts(t))
}
