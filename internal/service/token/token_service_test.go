package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"groupgate-service/internal/allocation"
	"groupgate-service/internal/domain/customer"
	"groupgate-service/internal/domain/service"
	"groupgate-service/internal/domain/subscription"
	"groupgate-service/internal/domain/token"
	xerrors "groupgate-service/internal/pkg/errors"
	"groupgate-service/internal/pkg/tokencode"
	"groupgate-service/internal/pricing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type fakeSubStore struct {
	sub        *subscription.Subscription
	active     int
	consumeErr error
	consumed   int64
}

func (f *fakeSubStore) FindByID(_ context.Context, id int64) (*subscription.Subscription, error) {
	if f.sub == nil || f.sub.ID != id {
		return nil, xerrors.ErrNotFound
	}
	return f.sub, nil
}

func (f *fakeSubStore) FindActiveByService(_ context.Context, serviceID int64) (*subscription.Subscription, error) {
	if f.sub == nil || f.sub.ServiceID != serviceID {
		return nil, xerrors.ErrNotFound
	}
	return f.sub, nil
}

func (f *fakeSubStore) CountActiveCustomers(_ context.Context, _ int64) (int, error) {
	return f.active, nil
}

func (f *fakeSubStore) ConsumeHoursWithTx(_ context.Context, _ pgx.Tx, _ int64, hours int64, _ time.Time) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumed += hours
	return nil
}

type fakeCustomerStore struct {
	customers map[int64]*customer.Customer
}

func (f *fakeCustomerStore) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}

type fakeCatalogStore struct {
	services map[int64]*service.Service
}

func (f *fakeCatalogStore) FindByID(_ context.Context, id int64) (*service.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

type fakeTokenStore struct {
	created []*token.Token
	byValue map[string]*token.Token
	revoked []string
}

func (f *fakeTokenStore) CreateWithTx(_ context.Context, _ pgx.Tx, t *token.Token) error {
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTokenStore) FindByID(_ context.Context, id string) (*token.Token, error) {
	for _, t := range f.created {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeTokenStore) FindByValue(_ context.Context, value string) (*token.Token, error) {
	t, ok := f.byValue[value]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, id string) error {
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeTokenStore) List(_ context.Context, _ *token.TokenListFilters) ([]token.Token, int64, error) {
	out := make([]token.Token, 0, len(f.created))
	for _, t := range f.created {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

// fakeTx satisfies pgx.Tx through embedding; only Commit and Rollback are
// exercised by the purchase flow.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(_ context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(_ context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (f *fakeDB) BeginTx(_ context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeLocker struct {
	acquired []string
	held     int
}

func (f *fakeLocker) AcquireWait(_ context.Context, key string, _, _ time.Duration) (func(), error) {
	f.acquired = append(f.acquired, key)
	f.held++
	return func() { f.held-- }, nil
}

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) Broadcast(eventType string, _ interface{}) {
	f.events = append(f.events, eventType)
}

type fixture struct {
	svc    *TokenService
	subs   *fakeSubStore
	tokens *fakeTokenStore
	db     *fakeDB
	locker *fakeLocker
	hub    *fakeBroadcaster
}

func newFixture(t *testing.T, sub *subscription.Subscription, active int) *fixture {
	t.Helper()

	subs := &fakeSubStore{sub: sub, active: active}
	tokens := &fakeTokenStore{byValue: map[string]*token.Token{}}
	db := &fakeDB{}
	locker := &fakeLocker{}
	hub := &fakeBroadcaster{}

	svc := NewTokenService(
		tokens,
		subs,
		&fakeCustomerStore{customers: map[int64]*customer.Customer{
			7: {ID: 7, FullName: "Asha Mohamed"},
		}},
		&fakeCatalogStore{services: map[int64]*service.Service{
			3: {ID: 3, Name: "ChatGPT Plus"},
		}},
		db,
		locker,
		hub,
		nil,
		Policy{
			ExchangeRate: 2800,
			Discount:     pricing.DefaultDiscountPolicy(),
			Engine:       allocation.NewEngine(allocation.DefaultMinimumPayment),
		},
		zap.NewNop(),
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, subs: subs, tokens: tokens, db: db, locker: locker, hub: hub}
}

func activeSub() *subscription.Subscription {
	return &subscription.Subscription{
		ID:           42,
		ServiceID:    3,
		Cost:         20,
		Currency:     "USD",
		StartDate:    time.Date(2025, 5, 22, 12, 0, 0, 0, time.UTC),
		DurationDays: 30,
		IsActive:     true,
	}
}

func TestPurchaseIssuesDecodableToken(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	resp, err := fx.svc.Purchase(context.Background(), &token.PurchaseRequest{
		CustomerID: 7,
		ServiceID:  3,
		AmountPaid: 2000,
	})
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	if len(fx.tokens.created) != 1 {
		t.Fatalf("created %d tokens, want 1", len(fx.tokens.created))
	}
	if !fx.db.tx.committed {
		t.Fatal("transaction was not committed")
	}
	if fx.locker.held != 0 {
		t.Fatal("allocation lock was not released")
	}
	if len(fx.locker.acquired) != 1 || fx.locker.acquired[0] != "alloc:sub:42" {
		t.Fatalf("lock keys = %v, want [alloc:sub:42]", fx.locker.acquired)
	}

	payload, err := tokencode.Decode(resp.Token.Value)
	if err != nil {
		t.Fatalf("Decode(%q) error = %v", resp.Token.Value, err)
	}
	if payload.CustomerCode != 7 || payload.ServiceCode != 3 {
		t.Fatalf("decoded codes = (%d, %d), want (7, 3)", payload.CustomerCode, payload.ServiceCode)
	}
	if payload.Hours != resp.Token.HoursPurchased {
		t.Fatalf("decoded hours = %d, record says %d", payload.Hours, resp.Token.HoursPurchased)
	}
	if fx.subs.consumed != resp.Token.HoursPurchased {
		t.Fatalf("pool decremented by %d, token grants %d", fx.subs.consumed, resp.Token.HoursPurchased)
	}

	if len(fx.hub.events) != 1 || fx.hub.events[0] != "token.created" {
		t.Fatalf("broadcast events = %v, want [token.created]", fx.hub.events)
	}
}

func TestPurchaseValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *token.PurchaseRequest
		wantErr error
	}{
		{
			name:    "missing customer",
			req:     &token.PurchaseRequest{ServiceID: 3, AmountPaid: 2000},
			wantErr: xerrors.ErrMissingSelection,
		},
		{
			name:    "below minimum payment",
			req:     &token.PurchaseRequest{CustomerID: 7, ServiceID: 3, AmountPaid: 999},
			wantErr: xerrors.ErrBelowMinimumPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, activeSub(), 2)

			_, err := fx.svc.Purchase(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Purchase() error = %v, want %v", err, tt.wantErr)
			}
			if len(fx.tokens.created) != 0 {
				t.Fatal("token was created despite validation failure")
			}
		})
	}
}

func TestPurchaseLostRaceRollsBack(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)
	fx.subs.consumeErr = xerrors.ErrConcurrentOverallocation

	_, err := fx.svc.Purchase(context.Background(), &token.PurchaseRequest{
		CustomerID: 7,
		ServiceID:  3,
		AmountPaid: 2000,
	})
	if !errors.Is(err, xerrors.ErrConcurrentOverallocation) {
		t.Fatalf("Purchase() error = %v, want ErrConcurrentOverallocation", err)
	}

	if fx.db.tx.committed {
		t.Fatal("transaction committed after conditional decrement matched zero rows")
	}
	if !fx.db.tx.rolledBack {
		t.Fatal("transaction was not rolled back")
	}
	if fx.locker.held != 0 {
		t.Fatal("allocation lock was not released")
	}
	if len(fx.hub.events) != 0 {
		t.Fatalf("broadcast events = %v, want none", fx.hub.events)
	}
}

func TestPurchaseExhaustedPool(t *testing.T) {
	sub := activeSub()
	// Window nearly over: 12 hours left, all of it already sold.
	sub.StartDate = time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	sub.HoursAllocated = 12

	fx := newFixture(t, sub, 2)

	_, err := fx.svc.Purchase(context.Background(), &token.PurchaseRequest{
		CustomerID: 7,
		ServiceID:  3,
		AmountPaid: 2000,
	})
	if !errors.Is(err, xerrors.ErrZeroCapacity) {
		t.Fatalf("Purchase() error = %v, want ErrZeroCapacity", err)
	}
}

func TestQuoteConvertsBothWays(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	byAmount, err := fx.svc.Quote(context.Background(), &token.QuoteRequest{ServiceID: 3, AmountPaid: 5000})
	if err != nil {
		t.Fatalf("Quote(amount) error = %v", err)
	}
	if byAmount.Hours <= 0 {
		t.Fatalf("Hours = %d, want > 0", byAmount.Hours)
	}
	if byAmount.Discount != 0.10 {
		t.Fatalf("Discount = %v, want 0.10 for 2 active customers", byAmount.Discount)
	}

	byHours, err := fx.svc.Quote(context.Background(), &token.QuoteRequest{ServiceID: 3, Hours: byAmount.Hours})
	if err != nil {
		t.Fatalf("Quote(hours) error = %v", err)
	}
	if byHours.AmountPaid > byAmount.AmountPaid {
		t.Fatalf("amount for %d hours = %v, exceeds the amount that bought them (%v)",
			byAmount.Hours, byHours.AmountPaid, byAmount.AmountPaid)
	}
}

func TestDecodeJoinsNamesAndRecord(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	resp, err := fx.svc.Purchase(context.Background(), &token.PurchaseRequest{
		CustomerID: 7,
		ServiceID:  3,
		AmountPaid: 2000,
	})
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	fx.tokens.byValue[resp.Token.Value] = resp.Token

	// Display formatting must not affect decoding.
	decoded, err := fx.svc.Decode(context.Background(), tokencode.Format(resp.Token.Value))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.CustomerName != "Asha Mohamed" {
		t.Fatalf("CustomerName = %q, want %q", decoded.CustomerName, "Asha Mohamed")
	}
	if decoded.ServiceName != "ChatGPT Plus" {
		t.Fatalf("ServiceName = %q, want %q", decoded.ServiceName, "ChatGPT Plus")
	}
	if decoded.AmountPaid != 2000 {
		t.Fatalf("AmountPaid = %v, want 2000", decoded.AmountPaid)
	}
	if decoded.Status.Expired {
		t.Fatal("freshly issued token reported expired")
	}
}

func TestDecodeUnknownCustomer(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	value, err := tokencode.Encode(tokencode.Payload{
		CustomerCode: 9998,
		ServiceCode:  3,
		Hours:        10,
		IssuedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	_, err = fx.svc.Decode(context.Background(), value)
	if !errors.Is(err, xerrors.ErrUnknownCustomerOrService) {
		t.Fatalf("Decode() error = %v, want ErrUnknownCustomerOrService", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	for _, raw := range []string{"", "12345", "123456789012345678ab"} {
		if _, err := fx.svc.Decode(context.Background(), raw); !errors.Is(err, xerrors.ErrMalformedToken) {
			t.Fatalf("Decode(%q) error = %v, want ErrMalformedToken", raw, err)
		}
	}
}

func TestRevokeBroadcasts(t *testing.T) {
	fx := newFixture(t, activeSub(), 2)

	if err := fx.svc.Revoke(context.Background(), "01JABCDEF000000000000000"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if len(fx.tokens.revoked) != 1 {
		t.Fatalf("revoked %d tokens, want 1", len(fx.tokens.revoked))
	}
	if len(fx.hub.events) != 1 || fx.hub.events[0] != "token.revoked" {
		t.Fatalf("broadcast events = %v, want [token.revoked]", fx.hub.events)
	}
}
