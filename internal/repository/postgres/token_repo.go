// internal/repository/postgres/token_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupgate-service/internal/domain/token"
	xerrors "groupgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `
	id, token, customer_id, service_id, subscription_id, hours_purchased,
	amount_paid, discount_applied, issued_at, expires_at, revoked_at, created_at
`

func scanToken(row pgx.Row) (*token.Token, error) {
	var t token.Token
	err := row.Scan(
		&t.ID, &t.Value, &t.CustomerID, &t.ServiceID, &t.SubscriptionID,
		&t.HoursPurchased, &t.AmountPaid, &t.DiscountApplied,
		&t.IssuedAt, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}
	return &t, nil
}

// CreateWithTx inserts a token inside the caller's transaction so the insert
// commits atomically with the capacity decrement.
func (r *TokenRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *token.Token) error {
	query := `
		INSERT INTO tokens (
			id, token, customer_id, service_id, subscription_id,
			hours_purchased, amount_paid, discount_applied, issued_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := tx.QueryRow(
		ctx, query,
		t.ID, t.Value, t.CustomerID, t.ServiceID, t.SubscriptionID,
		t.HoursPurchased, t.AmountPaid, t.DiscountApplied, t.IssuedAt, t.ExpiresAt,
	).Scan(&t.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// FindByID retrieves a token record by its ULID
func (r *TokenRepository) FindByID(ctx context.Context, id string) (*token.Token, error) {
	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE id = $1`, tokenColumns)
	return scanToken(r.db.QueryRow(ctx, query, id))
}

// FindByValue retrieves a token record by its 20-digit value
func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*token.Token, error) {
	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE token = $1`, tokenColumns)
	return scanToken(r.db.QueryRow(ctx, query, value))
}

// Revoke marks a token revoked. The row stays for audit; pool capacity is
// not restored.
func (r *TokenRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// List retrieves tokens with filters
func (r *TokenRepository) List(ctx context.Context, filters *token.TokenListFilters) ([]token.Token, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, filters.CustomerID)
		argPos++
	}

	if filters.ServiceID > 0 {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", argPos))
		args = append(args, filters.ServiceID)
		argPos++
	}

	if !filters.IncludeRevoked {
		conditions = append(conditions, "revoked_at IS NULL")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tokens WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tokens
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, tokenColumns, whereClause, argPos, argPos+1)

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []token.Token{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, 0, err
		}
		tokens = append(tokens, *t)
	}

	return tokens, total, nil
}
