// internal/repository/postgres/service_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groupgate-service/internal/domain/service"
	xerrors "groupgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create creates a new catalog entry
func (r *ServiceRepository) Create(ctx context.Context, s *service.Service) error {
	query := `
		INSERT INTO services (name, default_cost, token_duration_hours)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, s.Name, s.DefaultCost, s.TokenDurationHours).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

// FindByID retrieves a catalog entry by ID
func (r *ServiceRepository) FindByID(ctx context.Context, id int64) (*service.Service, error) {
	query := `
		SELECT id, name, default_cost, token_duration_hours, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var s service.Service
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.DefaultCost, &s.TokenDurationHours, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &s, nil
}

// FindByName retrieves a catalog entry by name
func (r *ServiceRepository) FindByName(ctx context.Context, name string) (*service.Service, error) {
	query := `
		SELECT id, name, default_cost, token_duration_hours, created_at, updated_at
		FROM services
		WHERE name = $1
	`

	var s service.Service
	err := r.db.QueryRow(ctx, query, name).Scan(
		&s.ID, &s.Name, &s.DefaultCost, &s.TokenDurationHours, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &s, nil
}

// List retrieves the full catalog
func (r *ServiceRepository) List(ctx context.Context) ([]service.Service, error) {
	query := `
		SELECT id, name, default_cost, token_duration_hours, created_at, updated_at
		FROM services
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := []service.Service{}
	for rows.Next() {
		var s service.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DefaultCost, &s.TokenDurationHours, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}

	return services, nil
}

// Update updates a catalog entry
func (r *ServiceRepository) Update(ctx context.Context, id int64, s *service.Service) error {
	query := `
		UPDATE services
		SET name = $1, default_cost = $2, token_duration_hours = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, s.Name, s.DefaultCost, s.TokenDurationHours, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a catalog entry
func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
