// internal/service/token/token_service.go
package token

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
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
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	allocationLockTTL   = 10 * time.Second
	allocationLockRetry = 50 * time.Millisecond
	nameCacheTTL        = 10 * time.Minute
)

// SubscriptionStore is the slice of the subscription repository the token
// flow needs.
type SubscriptionStore interface {
	FindByID(ctx context.Context, id int64) (*subscription.Subscription, error)
	FindActiveByService(ctx context.Context, serviceID int64) (*subscription.Subscription, error)
	CountActiveCustomers(ctx context.Context, subscriptionID int64) (int, error)
	ConsumeHoursWithTx(ctx context.Context, tx pgx.Tx, subscriptionID, hours int64, now time.Time) error
}

type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
}

type CatalogStore interface {
	FindByID(ctx context.Context, id int64) (*service.Service, error)
}

type TokenStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, t *token.Token) error
	FindByID(ctx context.Context, id string) (*token.Token, error)
	FindByValue(ctx context.Context, value string) (*token.Token, error)
	Revoke(ctx context.Context, id string) error
	List(ctx context.Context, filters *token.TokenListFilters) ([]token.Token, int64, error)
}

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Locker serializes allocation commits per subscription.
type Locker interface {
	AcquireWait(ctx context.Context, key string, ttl, retryEvery time.Duration) (func(), error)
}

// Broadcaster pushes token lifecycle events to connected dashboards.
type Broadcaster interface {
	Broadcast(eventType string, data interface{})
}

// Policy bundles the pricing knobs the token flow applies.
type Policy struct {
	ExchangeRate     float64
	Discount         pricing.DiscountPolicy
	Engine           allocation.Engine
	WarningThreshold float64
}

type TokenService struct {
	tokenRepo    TokenStore
	subRepo      SubscriptionStore
	customerRepo CustomerStore
	catalogRepo  CatalogStore
	db           TxBeginner
	locker       Locker
	hub          Broadcaster
	cache        *redis.Client // optional name-lookup cache
	policy       Policy
	logger       *zap.Logger

	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewTokenService(
	tokenRepo TokenStore,
	subRepo SubscriptionStore,
	customerRepo CustomerStore,
	catalogRepo CatalogStore,
	db TxBeginner,
	locker Locker,
	hub Broadcaster,
	cache *redis.Client,
	policy Policy,
	logger *zap.Logger,
) *TokenService {
	if policy.WarningThreshold <= 0 {
		policy.WarningThreshold = pricing.DefaultWarningThreshold
	}
	return &TokenService{
		tokenRepo:    tokenRepo,
		subRepo:      subRepo,
		customerRepo: customerRepo,
		catalogRepo:  catalogRepo,
		db:           db,
		locker:       locker,
		hub:          hub,
		cache:        cache,
		policy:       policy,
		logger:       logger,
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:          time.Now,
	}
}

// Quote computes the current rate for a service's active pool and previews
// the amount/hours conversion in either direction.
func (s *TokenService) Quote(ctx context.Context, req *token.QuoteRequest) (*token.Quote, error) {
	sub, err := s.subRepo.FindActiveByService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("no active subscription for service: %w", err)
	}

	rate, discount, active, remaining, err := s.rateFor(ctx, sub)
	if err != nil {
		return nil, err
	}

	quote := &token.Quote{
		ServiceID:       req.ServiceID,
		SubscriptionID:  sub.ID,
		HourlyRate:      rate,
		Discount:        discount,
		ActiveCustomers: active,
		RemainingHours:  remaining,
	}

	switch {
	case req.AmountPaid > 0:
		quote.AmountPaid = req.AmountPaid
		quote.Hours = s.policy.Engine.HoursFromAmount(req.AmountPaid, rate)
	case req.Hours > 0:
		quote.Hours = req.Hours
		quote.AmountPaid = s.policy.Engine.AmountFromHours(req.Hours, rate)
	}

	return quote, nil
}

// Purchase converts a confirmed payment into a token: it validates the
// allocation against a fresh capacity snapshot, encodes the token, and
// commits the insert atomically with the pool decrement. The per-subscription
// lock plus the conditional decrement close the check-then-act window; a lost
// race surfaces as ErrConcurrentOverallocation, which callers may retry.
func (s *TokenService) Purchase(ctx context.Context, req *token.PurchaseRequest) (*token.PurchaseResponse, error) {
	if req.CustomerID <= 0 || req.ServiceID <= 0 {
		return nil, &allocation.MissingSelectionError{CustomerID: req.CustomerID, ServiceID: req.ServiceID}
	}

	cust, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}

	sub, err := s.subRepo.FindActiveByService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("no active subscription for service: %w", err)
	}

	release, err := s.locker.AcquireWait(ctx, fmt.Sprintf("alloc:sub:%d", sub.ID), allocationLockTTL, allocationLockRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire allocation lock: %w", err)
	}
	defer release()

	rate, discount, _, remaining, err := s.rateFor(ctx, sub)
	if err != nil {
		return nil, err
	}

	alloc, err := s.policy.Engine.Allocate(req.CustomerID, req.ServiceID, req.AmountPaid, rate, remaining, discount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	value, err := tokencode.Encode(tokencode.Payload{
		CustomerCode: alloc.CustomerID,
		ServiceCode:  alloc.ServiceID,
		Hours:        alloc.HoursPurchased,
		IssuedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}

	record := &token.Token{
		ID:              ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Value:           value,
		CustomerID:      alloc.CustomerID,
		ServiceID:       alloc.ServiceID,
		SubscriptionID:  sub.ID,
		HoursPurchased:  alloc.HoursPurchased,
		AmountPaid:      alloc.AmountPaid,
		DiscountApplied: alloc.DiscountApplied,
		IssuedAt:        now.Truncate(time.Second),
		ExpiresAt:       now.Truncate(time.Second).Add(time.Duration(alloc.HoursPurchased) * time.Hour),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.tokenRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := s.subRepo.ConsumeHoursWithTx(ctx, tx, sub.ID, alloc.HoursPurchased, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("token issued",
		zap.String("token_id", record.ID),
		zap.Int64("customer_id", record.CustomerID),
		zap.String("customer_name", cust.FullName),
		zap.Int64("service_id", record.ServiceID),
		zap.Int64("hours", record.HoursPurchased),
		zap.Float64("amount_paid", record.AmountPaid),
		zap.Float64("discount", record.DiscountApplied),
	)

	if s.hub != nil {
		s.hub.Broadcast("token.created", record)
	}

	return &token.PurchaseResponse{
		Token:          record,
		FormattedToken: tokencode.Format(value),
	}, nil
}

// Decode recovers a token's fields from its digits and enriches them with
// display names and the stored payment record. The digits alone are
// authoritative for customer, service, hours and timing; the stored record
// only adds amount and discount.
func (s *TokenService) Decode(ctx context.Context, raw string) (*token.DecodedToken, error) {
	payload, err := tokencode.Decode(raw)
	if err != nil {
		return nil, err
	}

	customerName, err := s.customerName(ctx, payload.CustomerCode)
	if err != nil {
		return nil, err
	}
	serviceName, err := s.serviceName(ctx, payload.ServiceCode)
	if err != nil {
		return nil, err
	}

	decoded := &token.DecodedToken{
		CustomerID:     payload.CustomerCode,
		CustomerName:   customerName,
		ServiceID:      payload.ServiceCode,
		ServiceName:    serviceName,
		HoursPurchased: payload.Hours,
		CreatedAt:      payload.IssuedAt,
		ExpiresAt:      payload.ExpiresAt(),
		Status:         s.statusAt(payload.IssuedAt, payload.Hours),
	}

	normalized, _ := tokencode.Normalize(raw)
	if record, err := s.tokenRepo.FindByValue(ctx, normalized); err == nil {
		decoded.AmountPaid = record.AmountPaid
		decoded.DiscountApplied = record.DiscountApplied
		decoded.Revoked = record.RevokedAt.Valid
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	return decoded, nil
}

// Status evaluates a token's remaining lifetime from its digits alone.
func (s *TokenService) Status(ctx context.Context, raw string) (*pricing.TokenStatus, error) {
	payload, err := tokencode.Decode(raw)
	if err != nil {
		return nil, err
	}

	st := s.statusAt(payload.IssuedAt, payload.Hours)
	return &st, nil
}

// Revoke marks a token revoked. Audit-only: capacity consumed by the token
// stays consumed.
func (s *TokenService) Revoke(ctx context.Context, id string) error {
	if err := s.tokenRepo.Revoke(ctx, id); err != nil {
		return err
	}

	s.logger.Info("token revoked", zap.String("token_id", id))
	if s.hub != nil {
		s.hub.Broadcast("token.revoked", map[string]string{"id": id})
	}
	return nil
}

// GetToken retrieves a stored token record by ULID.
func (s *TokenService) GetToken(ctx context.Context, id string) (*token.Token, error) {
	return s.tokenRepo.FindByID(ctx, id)
}

// ListTokens retrieves stored token records with filters.
func (s *TokenService) ListTokens(ctx context.Context, filters *token.TokenListFilters) (*token.TokenListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	tokens, total, err := s.tokenRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &token.TokenListResponse{
		Tokens:     tokens,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ========== Helper Methods ==========

// rateFor computes the effective hourly rate for a pool from a fresh
// capacity snapshot.
func (s *TokenService) rateFor(ctx context.Context, sub *subscription.Subscription) (rate, discount float64, active int, remaining float64, err error) {
	active, err = s.subRepo.CountActiveCustomers(ctx, sub.ID)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to count active customers: %w", err)
	}

	discount = s.policy.Discount.Factor(active)
	remaining = sub.RemainingCapacityHours(s.now())

	rate, err = pricing.HourlyRate(sub.Cost, s.policy.ExchangeRate, remaining, discount)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return rate, discount, active, remaining, nil
}

func (s *TokenService) statusAt(issued time.Time, hours int64) pricing.TokenStatus {
	return pricing.StatusWithThreshold(issued, hours, s.now(), s.policy.WarningThreshold)
}

func (s *TokenService) customerName(ctx context.Context, id int64) (string, error) {
	key := fmt.Sprintf("gg:name:customer:%d", id)
	if name, ok := s.cachedName(ctx, key); ok {
		return name, nil
	}

	cust, err := s.customerRepo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return "", fmt.Errorf("customer %d: %w", id, xerrors.ErrUnknownCustomerOrService)
	}
	if err != nil {
		return "", err
	}

	s.cacheName(ctx, key, cust.FullName)
	return cust.FullName, nil
}

func (s *TokenService) serviceName(ctx context.Context, id int64) (string, error) {
	key := fmt.Sprintf("gg:name:service:%d", id)
	if name, ok := s.cachedName(ctx, key); ok {
		return name, nil
	}

	svc, err := s.catalogRepo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return "", fmt.Errorf("service %d: %w", id, xerrors.ErrUnknownCustomerOrService)
	}
	if err != nil {
		return "", err
	}

	s.cacheName(ctx, key, svc.Name)
	return svc.Name, nil
}

func (s *TokenService) cachedName(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	name, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return name, true
}

func (s *TokenService) cacheName(ctx context.Context, key, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, name, nameCacheTTL).Err(); err != nil {
		s.logger.Debug("name cache set failed", zap.String("key", key), zap.Error(err))
	}
}
