// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupgate-service/internal/domain/customer"
	xerrors "groupgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	c.id, c.full_name, c.email, c.phone, c.subscription_id, c.is_active,
	(SELECT COALESCE(array_agg(s.name), '{}') FROM services s
		JOIN subscriptions sub ON sub.service_id = s.id
		WHERE sub.id = c.subscription_id) AS services,
	c.created_at, c.updated_at, c.deleted_at
`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.SubscriptionID, &c.IsActive,
		&c.Services, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (full_name, email, phone, subscription_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.FullName, c.Email, c.Phone, c.SubscriptionID, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		WHERE c.id = $1 AND c.deleted_at IS NULL
	`, customerColumns)

	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

// Update updates a customer's mutable fields
func (r *CustomerRepository) Update(ctx context.Context, id int64, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET full_name = $1, email = $2, phone = $3, subscription_id = $4,
		    is_active = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(
		ctx, query,
		c.FullName, c.Email, c.Phone, c.SubscriptionID, c.IsActive, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SoftDelete soft deletes a customer
func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE customers SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// List retrieves customers with filters
func (r *CustomerRepository) List(ctx context.Context, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	conditions := []string{"c.deleted_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}

	if filters.SubscriptionID > 0 {
		conditions = append(conditions, fmt.Sprintf("c.subscription_id = $%d", argPos))
		args = append(args, filters.SubscriptionID)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(c.full_name ILIKE $%d OR c.email ILIKE $%d OR c.phone ILIKE $%d)",
			argPos, argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers c WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	sortBy := "created_at"
	if filters.SortBy != "" {
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder != "" {
		sortOrder = strings.ToUpper(filters.SortOrder)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		WHERE %s
		ORDER BY c.%s %s
		LIMIT $%d OFFSET $%d
	`, customerColumns, whereClause, sortBy, sortOrder, argPos, argPos+1)

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}

	return customers, total, nil
}

// RemainingTime sums each customer's unexpired, unrevoked token hours.
func (r *CustomerRepository) RemainingTime(ctx context.Context) ([]customer.RemainingTime, error) {
	query := `
		SELECT c.id, c.full_name,
		       COALESCE(SUM(
		           GREATEST(0, EXTRACT(EPOCH FROM (t.expires_at - NOW())))
		       ), 0)::bigint AS remaining_seconds
		FROM customers c
		LEFT JOIN tokens t ON t.customer_id = c.id AND t.revoked_at IS NULL
		WHERE c.deleted_at IS NULL
		GROUP BY c.id, c.full_name
		ORDER BY c.full_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query remaining time: %w", err)
	}
	defer rows.Close()

	result := []customer.RemainingTime{}
	for rows.Next() {
		var rt customer.RemainingTime
		if err := rows.Scan(&rt.CustomerID, &rt.FullName, &rt.RemainingSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan remaining time: %w", err)
		}
		rt.RemainingHours = float64(rt.RemainingSeconds) / 3600
		result = append(result, rt)
	}

	return result, nil
}

// RemainingSeconds returns one customer's unexpired token balance.
func (r *CustomerRepository) RemainingSeconds(ctx context.Context, customerID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(
		    GREATEST(0, EXTRACT(EPOCH FROM (t.expires_at - NOW())))
		), 0)::bigint
		FROM tokens t
		WHERE t.customer_id = $1 AND t.revoked_at IS NULL
	`

	var seconds int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("failed to query remaining seconds: %w", err)
	}
	return seconds, nil
}

// GetStats retrieves customer statistics
func (r *CustomerRepository) GetStats(ctx context.Context) (*customer.CustomerStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN is_active THEN 1 END) AS active,
			COUNT(CASE WHEN EXISTS (
				SELECT 1 FROM tokens t
				WHERE t.customer_id = customers.id
				  AND t.revoked_at IS NULL AND t.expires_at > NOW()
			) THEN 1 END) AS with_time_left,
			COUNT(CASE WHEN created_at >= date_trunc('month', NOW()) THEN 1 END) AS new_this_month
		FROM customers
		WHERE deleted_at IS NULL
	`

	var stats customer.CustomerStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalCustomers,
		&stats.ActiveCustomers,
		&stats.WithTimeLeft,
		&stats.NewThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}
