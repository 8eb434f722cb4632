package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/swiftwheelz/internal/model"
)

var errNoCustomer = errors.New("pending payment has no customer")

// PaymentCache holds at most one pending payment per customer between the
// confirm-details page and finalization.
type PaymentCache interface {
	// Get returns nil, nil when nothing usable is cached for customerID.
	Get(ctx context.Context, customerID int) (*model.PendingPayment, error)
	Put(ctx context.Context, p model.PendingPayment) error
	Delete(ctx context.Context, customerID int) error
	// ConsumeQuote records that the quote with quoteID has been paid for.
	ConsumeQuote(ctx context.Context, quoteID string) error
	// QuoteConsumed reports whether quoteID was already paid for.
	QuoteConsumed(ctx context.Context, quoteID string) (bool, error)
	// Prune removes expired entries and reports how many were removed.
	Prune(ctx context.Context) (int64, error)
}

// PaymentCacheService stores pending payments in the pending_payments table.
type PaymentCacheService struct {
	db  DB
	ttl time.Duration
	now func() time.Time
}

// NewPaymentCacheService creates a new PaymentCacheService.
func NewPaymentCacheService(db DB, ttl time.Duration) *PaymentCacheService {
	return &PaymentCacheService{db: db, ttl: ttl, now: time.Now}
}

func (s *PaymentCacheService) Get(ctx context.Context, customerID int) (*model.PendingPayment, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM pending_payments WHERE customer_id = $1 AND expires_at > $2`,
		customerID, s.now(),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending payment for customer %d: %w", customerID, err)
	}

	var p model.PendingPayment
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode pending payment for customer %d: %w", customerID, err)
	}
	if !p.BelongsTo(customerID) {
		return nil, nil
	}
	return &p, nil
}

func (s *PaymentCacheService) Put(ctx context.Context, p model.PendingPayment) error {
	if p.CustomerID == 0 {
		return errNoCustomer
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending payment: %w", err)
	}
	now := s.now()
	_, err = s.db.Exec(ctx,
		`INSERT INTO pending_payments (customer_id, payload, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (customer_id) DO UPDATE
		 SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		p.CustomerID, payload, now, now.Add(s.ttl),
	)
	if err != nil {
		return fmt.Errorf("store pending payment for customer %d: %w", p.CustomerID, err)
	}
	return nil
}

func (s *PaymentCacheService) Delete(ctx context.Context, customerID int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pending_payments WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("delete pending payment for customer %d: %w", customerID, err)
	}
	return nil
}

func (s *PaymentCacheService) ConsumeQuote(ctx context.Context, quoteID string) error {
	if quoteID == "" {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO consumed_quotes (quote_id, expires_at) VALUES ($1, $2)
		 ON CONFLICT (quote_id) DO NOTHING`,
		quoteID, s.now().Add(s.ttl),
	)
	if err != nil {
		return fmt.Errorf("consume quote %s: %w", quoteID, err)
	}
	return nil
}

func (s *PaymentCacheService) QuoteConsumed(ctx context.Context, quoteID string) (bool, error) {
	if quoteID == "" {
		return false, nil
	}
	var consumed bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM consumed_quotes WHERE quote_id = $1)`,
		quoteID,
	).Scan(&consumed)
	if err != nil {
		return false, fmt.Errorf("check quote %s: %w", quoteID, err)
	}
	return consumed, nil
}

func (s *PaymentCacheService) Prune(ctx context.Context) (int64, error) {
	now := s.now()
	tag, err := s.db.Exec(ctx, `DELETE FROM pending_payments WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("prune pending payments: %w", err)
	}
	quotes, err := s.db.Exec(ctx, `DELETE FROM consumed_quotes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("prune consumed quotes: %w", err)
	}
	return tag.RowsAffected() + quotes.RowsAffected(), nil
}

type memoryEntry struct {
	payment   model.PendingPayment
	expiresAt time.Time
}

// MemoryPaymentCache keeps pending payments in process memory. Entries do not
// survive a restart.
type MemoryPaymentCache struct {
	mu       sync.Mutex
	entries  map[int]memoryEntry
	consumed map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryPaymentCache(ttl time.Duration) *MemoryPaymentCache {
	return &MemoryPaymentCache{
		entries:  make(map[int]memoryEntry),
		consumed: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryPaymentCache) Get(_ context.Context, customerID int) (*model.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[customerID]
	if !ok || !m.now().Before(e.expiresAt) || !e.payment.BelongsTo(customerID) {
		return nil, nil
	}
	p := e.payment
	return &p, nil
}

func (m *MemoryPaymentCache) Put(_ context.Context, p model.PendingPayment) error {
	if p.CustomerID == 0 {
		return errNoCustomer
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[p.CustomerID] = memoryEntry{payment: p, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryPaymentCache) Delete(_ context.Context, customerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, customerID)
	return nil
}

func (m *MemoryPaymentCache) ConsumeQuote(_ context.Context, quoteID string) error {
	if quoteID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consumed[quoteID]; !ok {
		m.consumed[quoteID] = m.now().Add(m.ttl)
	}
	return nil
}

func (m *MemoryPaymentCache) QuoteConsumed(_ context.Context, quoteID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.consumed[quoteID]
	return ok, nil
}

func (m *MemoryPaymentCache) Prune(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed int64
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	for id, expiresAt := range m.consumed {
		if !now.Before(expiresAt) {
			delete(m.consumed, id)
			removed++
		}
	}
	return removed, nil
}
