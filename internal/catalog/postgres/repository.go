// Package postgres provides PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/statusdeck/internal/catalog"
	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateService creates a new service in the database.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (organization_id, name, description, status, "group", is_public, "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.OrganizationID,
		service.Name,
		service.Description,
		service.Status,
		service.Group,
		service.IsPublic,
		service.Order,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetService retrieves one service of an organization by ID.
func (r *Repository) GetService(ctx context.Context, orgID, id string) (*domain.Service, error) {
	query := `
		SELECT id, organization_id, name, description, status, "group", is_public, "order", created_at, updated_at
		FROM services
		WHERE id = $1 AND organization_id = $2
	`
	var service domain.Service
	err := r.db.QueryRow(ctx, query, id, orgID).Scan(
		&service.ID,
		&service.OrganizationID,
		&service.Name,
		&service.Description,
		&service.Status,
		&service.Group,
		&service.IsPublic,
		&service.Order,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}

	return &service, nil
}

// ListServices retrieves an organization's services sorted for display.
func (r *Repository) ListServices(ctx context.Context, orgID string, filter catalog.ServiceFilter) ([]domain.Service, error) {
	query := `
		SELECT id, organization_id, name, description, status, "group", is_public, "order", created_at, updated_at
		FROM services
		WHERE organization_id = $1
	`
	if filter.PublicOnly {
		query += " AND is_public"
	}
	query += ` ORDER BY "group", "order", created_at`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		err := rows.Scan(
			&service.ID,
			&service.OrganizationID,
			&service.Name,
			&service.Description,
			&service.Status,
			&service.Group,
			&service.IsPublic,
			&service.Order,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

// CountServices returns the number of services in an organization.
func (r *Repository) CountServices(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM services WHERE organization_id = $1`, orgID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return count, nil
}

// UpdateService updates an existing service.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, status = $4, "group" = $5, is_public = $6, "order" = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Status,
		service.Group,
		service.IsPublic,
		service.Order,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return catalog.ErrServiceNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// DeleteService deletes a service of an organization by ID.
func (r *Repository) DeleteService(ctx context.Context, orgID, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		if isMalformedID(err) {
			return catalog.ErrServiceNotFound
		}
		return fmt.Errorf("delete service: %w", err)
	}

	if result.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}

// CreateHistoryEntry appends a status change record for a service.
func (r *Repository) CreateHistoryEntry(ctx context.Context, entry *domain.ServiceHistoryEntry) error {
	query := `
		INSERT INTO service_history (service_id, status, duration)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ServiceID,
		entry.Status,
		entry.Duration,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

// ListHistory returns the most recent status changes for a service, newest first.
func (r *Repository) ListHistory(ctx context.Context, serviceID string, limit int) ([]domain.ServiceHistoryEntry, error) {
	query := `
		SELECT id, service_id, status, duration, created_at
		FROM service_history
		WHERE service_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, serviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ServiceHistoryEntry, 0)
	for rows.Next() {
		var entry domain.ServiceHistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ServiceID,
			&entry.Status,
			&entry.Duration,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history entries: %w", err)
	}

	return entries, nil
}

// isMalformedID reports the invalid-text-representation error Postgres
// raises when a non-uuid path parameter reaches a uuid column. Callers
// treat such a lookup like a missing row.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
