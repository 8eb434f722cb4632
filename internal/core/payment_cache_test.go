package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/swiftwheelz/internal/model"
)

func pendingFor(customerID int) model.PendingPayment {
	return model.PendingPayment{
		CustomerID:    customerID,
		Truck:         model.Truck{VIN: "VIN1"},
		RentDate:      "2026-05-01",
		ReturnDate:    "2026-05-03",
		Days:          2,
		TotalCost:     1700,
		PaymentAmount: 1700,
	}
}

// ---------- PaymentCacheService ----------

func TestPaymentCacheService_Get_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	payload, err := json.Marshal(pendingFor(7))
	require.NoError(t, err)
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(payloadRow(payload))

	p, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1700.0, p.TotalCost)
	db.AssertExpectations(t)
}

func TestPaymentCacheService_Get_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(errRow(pgx.ErrNoRows))

	p, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPaymentCacheService_Get_MismatchedCustomer(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	payload, err := json.Marshal(pendingFor(8))
	require.NoError(t, err)
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(payloadRow(payload))

	p, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPaymentCacheService_Get_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(errRow(errors.New("connection refused")))

	_, err := svc.Get(ctx, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get pending payment for customer 7")
}

func TestPaymentCacheService_Get_CorruptPayload(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(payloadRow([]byte("{")))

	_, err := svc.Get(ctx, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode pending payment")
}

func TestPaymentCacheService_Put_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
		return len(args) == 4 && args[0] == 7 && args[2] == now && args[3] == now.Add(time.Hour)
	})).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, svc.Put(ctx, pendingFor(7)))
	db.AssertExpectations(t)
}

func TestPaymentCacheService_Put_NoCustomer(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)

	err := svc.Put(context.Background(), pendingFor(0))
	assert.ErrorIs(t, err, errNoCustomer)
	db.AssertNotCalled(t, "Exec")
}

func TestPaymentCacheService_Put_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("disk full"))

	err := svc.Put(ctx, pendingFor(7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store pending payment for customer 7")
}

func TestPaymentCacheService_Delete(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{7}).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, svc.Delete(ctx, 7))
	db.AssertExpectations(t)
}

func TestPaymentCacheService_Prune(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "pending_payments")
	}), mock.Anything).Return(pgconn.NewCommandTag("DELETE 3"), nil)
	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "consumed_quotes")
	}), mock.Anything).Return(pgconn.NewCommandTag("DELETE 2"), nil)

	n, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	db.AssertExpectations(t)
}

func TestPaymentCacheService_ConsumeQuote(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"q-1", now.Add(time.Hour)}).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, svc.ConsumeQuote(ctx, "q-1"))
	require.NoError(t, svc.ConsumeQuote(ctx, ""))
	db.AssertNumberOfCalls(t, "Exec", 1)
}

func TestPaymentCacheService_QuoteConsumed(t *testing.T) {
	db := &mockDB{}
	svc := NewPaymentCacheService(db, time.Hour)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"q-1"}).Return(boolRow(true))
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"q-2"}).Return(errRow(errors.New("connection refused")))

	used, err := svc.QuoteConsumed(ctx, "q-1")
	require.NoError(t, err)
	assert.True(t, used)

	_, err = svc.QuoteConsumed(ctx, "q-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check quote q-2")

	used, err = svc.QuoteConsumed(ctx, "")
	require.NoError(t, err)
	assert.False(t, used)
}

// ---------- MemoryPaymentCache ----------

func TestMemoryPaymentCache_PutGetDelete(t *testing.T) {
	c := NewMemoryPaymentCache(time.Hour)
	ctx := context.Background()

	p, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, c.Put(ctx, pendingFor(7)))
	p, err = c.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7, p.CustomerID)

	other, err := c.Get(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, c.Delete(ctx, 7))
	p, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMemoryPaymentCache_ReturnsCopy(t *testing.T) {
	c := NewMemoryPaymentCache(time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, pendingFor(7)))

	p, _ := c.Get(ctx, 7)
	p.TotalCost = 1

	again, _ := c.Get(ctx, 7)
	assert.Equal(t, 1700.0, again.TotalCost)
}

func TestMemoryPaymentCache_ExpiryAndPrune(t *testing.T) {
	c := NewMemoryPaymentCache(time.Hour)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, pendingFor(7)))
	require.NoError(t, c.Put(ctx, pendingFor(8)))

	now = now.Add(time.Hour)
	p, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)

	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryPaymentCache_ConsumedQuotes(t *testing.T) {
	c := NewMemoryPaymentCache(time.Hour)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	used, err := c.QuoteConsumed(ctx, "q-1")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, c.ConsumeQuote(ctx, "q-1"))
	used, err = c.QuoteConsumed(ctx, "q-1")
	require.NoError(t, err)
	assert.True(t, used)

	now = now.Add(time.Hour)
	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	used, _ = c.QuoteConsumed(ctx, "q-1")
	assert.False(t, used)
}

func TestMemoryPaymentCache_Put_NoCustomer(t *testing.T) {
	c := NewMemoryPaymentCache(time.Hour)
	assert.ErrorIs(t, c.Put(context.Background(), pendingFor(0)), errNoCustomer)
}

func TestPaymentCacheImplementations(t *testing.T) {
	var _ PaymentCache = (*PaymentCacheService)(nil)
	var _ PaymentCache = (*MemoryPaymentCache)(nil)
}
