// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupgate-service/internal/domain/subscription"
	xerrors "groupgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	sub.id, sub.service_id, s.name, sub.cost, sub.currency, sub.start_date,
	sub.duration_days, sub.hours_allocated, sub.is_active,
	sub.created_at, sub.updated_at
`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := row.Scan(
		&sub.ID, &sub.ServiceID, &sub.ServiceName, &sub.Cost, &sub.Currency,
		&sub.StartDate, &sub.DurationDays, &sub.HoursAllocated, &sub.IsActive,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &sub, nil
}

// Create creates a new subscription pool
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (service_id, cost, currency, start_date, duration_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, hours_allocated, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		sub.ServiceID, sub.Cost, sub.Currency, sub.StartDate, sub.DurationDays, sub.IsActive,
	).Scan(&sub.ID, &sub.HoursAllocated, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions sub
		JOIN services s ON s.id = sub.service_id
		WHERE sub.id = $1
	`, subscriptionColumns)

	return scanSubscription(r.db.QueryRow(ctx, query, id))
}

// FindActiveByService retrieves the newest active pool for a service
func (r *SubscriptionRepository) FindActiveByService(ctx context.Context, serviceID int64) (*subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions sub
		JOIN services s ON s.id = sub.service_id
		WHERE sub.service_id = $1 AND sub.is_active
		ORDER BY sub.start_date DESC
		LIMIT 1
	`, subscriptionColumns)

	return scanSubscription(r.db.QueryRow(ctx, query, serviceID))
}

// Update updates a subscription's editable fields
func (r *SubscriptionRepository) Update(ctx context.Context, id int64, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET cost = $1, currency = $2, start_date = $3, duration_days = $4,
		    is_active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(
		ctx, query,
		sub.Cost, sub.Currency, sub.StartDate, sub.DurationDays, sub.IsActive, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a subscription; callers must have verified no customers
// remain attached.
func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ConsumeHoursWithTx atomically re-validates remaining capacity and
// decrements it inside the caller's transaction. The WHERE clause repeats the
// capacity computation so a concurrent purchase cannot race past the earlier
// snapshot check; zero rows affected means the pool no longer has the hours.
func (r *SubscriptionRepository) ConsumeHoursWithTx(ctx context.Context, tx pgx.Tx, subscriptionID, hours int64, now time.Time) error {
	query := `
		UPDATE subscriptions
		SET hours_allocated = hours_allocated + $1, updated_at = $2
		WHERE id = $3
		  AND GREATEST(0, EXTRACT(EPOCH FROM (start_date + duration_days * INTERVAL '1 day' - $2)) / 3600)
		      - hours_allocated >= $1
	`

	result, err := tx.Exec(ctx, query, hours, now, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to consume hours: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrConcurrentOverallocation
	}

	return nil
}

// CountActiveCustomers counts customers attached to a subscription with
// unexpired hours; this count feeds the group discount.
func (r *SubscriptionRepository) CountActiveCustomers(ctx context.Context, subscriptionID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM customers c
		WHERE c.subscription_id = $1 AND c.deleted_at IS NULL AND c.is_active
		  AND EXISTS (
		      SELECT 1 FROM tokens t
		      WHERE t.customer_id = c.id AND t.revoked_at IS NULL AND t.expires_at > NOW()
		  )
	`

	var count int
	if err := r.db.QueryRow(ctx, query, subscriptionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active customers: %w", err)
	}
	return count, nil
}

// CountAttachedCustomers counts every customer referencing a subscription,
// active or not; deletion is blocked while this is nonzero.
func (r *SubscriptionRepository) CountAttachedCustomers(ctx context.Context, subscriptionID int64) (int, error) {
	query := `SELECT COUNT(*) FROM customers WHERE subscription_id = $1 AND deleted_at IS NULL`

	var count int
	if err := r.db.QueryRow(ctx, query, subscriptionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attached customers: %w", err)
	}
	return count, nil
}

// CustomerCounts returns the per-subscription customer counts that feed the
// discount calculator in the dashboard.
func (r *SubscriptionRepository) CustomerCounts(ctx context.Context) ([]subscription.CustomerCount, error) {
	query := `
		SELECT sub.id, s.name,
		       COUNT(c.id) AS customer_count,
		       COUNT(CASE WHEN c.is_active THEN 1 END) AS active_customers
		FROM subscriptions sub
		JOIN services s ON s.id = sub.service_id
		LEFT JOIN customers c ON c.subscription_id = sub.id AND c.deleted_at IS NULL
		GROUP BY sub.id, s.name
		ORDER BY s.name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer counts: %w", err)
	}
	defer rows.Close()

	counts := []subscription.CustomerCount{}
	for rows.Next() {
		var cc subscription.CustomerCount
		if err := rows.Scan(&cc.SubscriptionID, &cc.ServiceName, &cc.CustomerCount, &cc.ActiveCustomers); err != nil {
			return nil, fmt.Errorf("failed to scan customer count: %w", err)
		}
		counts = append(counts, cc)
	}

	return counts, nil
}

// List retrieves subscriptions with filters
func (r *SubscriptionRepository) List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.ServiceID > 0 {
		conditions = append(conditions, fmt.Sprintf("sub.service_id = $%d", argPos))
		args = append(args, filters.ServiceID)
		argPos++
	}

	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("sub.is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM subscriptions sub WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	sortBy := "start_date"
	if filters.SortBy != "" {
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder != "" {
		sortOrder = strings.ToUpper(filters.SortOrder)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions sub
		JOIN services s ON s.id = sub.service_id
		WHERE %s
		ORDER BY sub.%s %s
		LIMIT $%d OFFSET $%d
	`, subscriptionColumns, whereClause, sortBy, sortOrder, argPos, argPos+1)

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}

	return subs, total, nil
}

// GetStats retrieves aggregate subscription statistics
func (r *SubscriptionRepository) GetStats(ctx context.Context) (*subscription.SubscriptionStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN is_active THEN 1 END) AS active,
			COALESCE(SUM(hours_allocated), 0) AS hours_allocated,
			COALESCE(SUM(cost), 0) AS total_cost
		FROM subscriptions
	`

	var stats subscription.SubscriptionStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalSubscriptions,
		&stats.ActiveSubscriptions,
		&stats.TotalHoursAllocated,
		&stats.TotalCostSource,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}

// GetExpiring retrieves active subscriptions whose window closes within the
// given number of days.
func (r *SubscriptionRepository) GetExpiring(ctx context.Context, days int) ([]subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions sub
		JOIN services s ON s.id = sub.service_id
		WHERE sub.is_active
		  AND sub.start_date + sub.duration_days * INTERVAL '1 day'
		      BETWEEN NOW() AND NOW() + $1 * INTERVAL '1 day'
		ORDER BY sub.start_date
	`, subscriptionColumns)

	rows, err := r.db.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}

	return subs, nil
}
