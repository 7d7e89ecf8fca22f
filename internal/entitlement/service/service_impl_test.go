package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/entitlement/domain"
	"github.com/opencampus/paygate/internal/entitlement/repository"
	"github.com/opencampus/paygate/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PaymentRecord{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) (domain.Service, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(),
		Metrics: metrics.NewForTest(),
	})
	return svc, clk
}

func TestIsAvailableZeroCostSkipsStorage(t *testing.T) {
	// No tables needed: requiredCost <= 0 must not touch the database.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	svc, _ := newTestService(t, db)

	ok, err := svc.IsAvailable(context.Background(), 1, domain.NewModuleRef(10), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAvailable(context.Background(), 1, domain.NewModuleRef(10), -5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAvailableRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)

	_, err := svc.IsAvailable(context.Background(), 1, domain.ItemRef{}, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidItemRef)

	_, err = svc.IsAvailable(context.Background(), 1, domain.ItemRef{CMID: 1, SectionID: 2}, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidItemRef)

	_, err = svc.IsAvailable(context.Background(), 0, domain.NewModuleRef(10), 100)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestPartialPaymentsAccumulate(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)
	ctx := context.Background()
	ref := domain.NewModuleRef(10)

	_, err := svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: ref, Amount: 40})
	require.NoError(t, err)

	ok, err := svc.IsAvailable(ctx, 1, ref, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: ref, Amount: 60})
	require.NoError(t, err)

	ok, err = svc.IsAvailable(ctx, 1, ref, 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPaymentsScopedToUserAndItem(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: domain.NewModuleRef(10), Amount: 100})
	require.NoError(t, err)

	ok, err := svc.IsAvailable(ctx, 2, domain.NewModuleRef(10), 100)
	require.NoError(t, err)
	assert.False(t, ok, "another user's payment must not count")

	ok, err = svc.IsAvailable(ctx, 1, domain.NewModuleRef(11), 100)
	require.NoError(t, err)
	assert.False(t, ok, "a payment for another module must not count")

	ok, err = svc.IsAvailable(ctx, 1, domain.NewSectionRef(10), 100)
	require.NoError(t, err)
	assert.False(t, ok, "a module payment must not count for a section of the same id")
}

func TestAppendCreditedDefaultsToAmount(t *testing.T) {
	db := setupTestDB(t)
	svc, clk := newTestService(t, db)
	ctx := context.Background()

	record, err := svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: domain.NewSectionRef(3), Amount: 80})
	require.NoError(t, err)
	assert.Equal(t, int64(80), record.Amount)
	assert.Equal(t, int64(80), record.Credited)
	assert.Equal(t, clk.Now(), record.CreatedAt)
	require.NotNil(t, record.SectionID)
	assert.Equal(t, snowflake.ID(3), *record.SectionID)
	assert.Nil(t, record.CMID)
}

func TestAppendDiscountedChargeCreditsFullCost(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)
	ctx := context.Background()
	ref := domain.NewModuleRef(10)

	// 60 charged after a coupon, crediting the full 100 requirement.
	record, err := svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: ref, Amount: 60, Credited: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(60), record.Amount)
	assert.Equal(t, int64(100), record.Credited)

	ok, err := svc.IsAvailable(ctx, 1, ref, 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAppendRejectsInvalidAmounts(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)
	ctx := context.Background()
	ref := domain.NewModuleRef(10)

	_, err := svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: ref, Amount: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Append(ctx, db, domain.AppendRequest{UserID: 1, CourseID: 5, Item: ref, Amount: 100, Credited: 50})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Append(ctx, db, domain.AppendRequest{UserID: 0, CourseID: 5, Item: ref, Amount: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}
