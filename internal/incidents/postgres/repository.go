// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, organization_id, title, description, type, status, impact, affected_service_ids, is_public, scheduled_for, scheduled_until, resolved_at, created_by, created_at, updated_at`

// CreateIncident creates a new incident in the database.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (organization_id, title, description, type, status, impact, affected_service_ids, is_public, scheduled_for, scheduled_until, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.OrganizationID,
		incident.Title,
		incident.Description,
		incident.Type,
		incident.Status,
		incident.Impact,
		incident.AffectedServiceIDs,
		incident.IsPublic,
		incident.ScheduledFor,
		incident.ScheduledUntil,
		incident.CreatedBy,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetIncident retrieves one incident of an organization by ID.
func (r *Repository) GetIncident(ctx context.Context, orgID, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 AND organization_id = $2`

	var incident domain.Incident
	err := r.db.QueryRow(ctx, query, id, orgID).Scan(
		&incident.ID,
		&incident.OrganizationID,
		&incident.Title,
		&incident.Description,
		&incident.Type,
		&incident.Status,
		&incident.Impact,
		&incident.AffectedServiceIDs,
		&incident.IsPublic,
		&incident.ScheduledFor,
		&incident.ScheduledUntil,
		&incident.ResolvedAt,
		&incident.CreatedBy,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}

	return &incident, nil
}

// ListIncidents returns one page of matching incidents, newest first, and
// the total match count.
func (r *Repository) ListIncidents(ctx context.Context, orgID string, filter incidents.Filter) ([]domain.Incident, int, error) {
	where := ` WHERE organization_id = $1`
	args := []interface{}{orgID}
	argNum := 2

	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, *filter.Type)
		argNum++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.PublicOnly {
		where += " AND is_public"
	}
	if filter.Resolved != nil {
		if *filter.Resolved {
			where += " AND status = 'resolved'"
		} else {
			where += " AND status <> 'resolved'"
		}
	}
	if filter.ScheduledOnly {
		where += " AND scheduled_for IS NOT NULL"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	orderBy := ` ORDER BY created_at DESC`
	if filter.ScheduledOnly {
		orderBy = ` ORDER BY scheduled_for`
	}
	query := `SELECT ` + incidentColumns + ` FROM incidents` + where + orderBy
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, filter.Limit, filter.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.OrganizationID,
			&incident.Title,
			&incident.Description,
			&incident.Type,
			&incident.Status,
			&incident.Impact,
			&incident.AffectedServiceIDs,
			&incident.IsPublic,
			&incident.ScheduledFor,
			&incident.ScheduledUntil,
			&incident.ResolvedAt,
			&incident.CreatedBy,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate incidents: %w", err)
	}

	return result, total, nil
}

// UpdateIncident updates an existing incident.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $2, description = $3, status = $4, impact = $5, affected_service_ids = $6, is_public = $7, scheduled_for = $8, scheduled_until = $9, resolved_at = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Impact,
		incident.AffectedServiceIDs,
		incident.IsPublic,
		incident.ScheduledFor,
		incident.ScheduledUntil,
		incident.ResolvedAt,
	).Scan(&incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// DeleteIncident deletes an incident of an organization by ID. Its update
// log goes with it via ON DELETE CASCADE.
func (r *Repository) DeleteIncident(ctx context.Context, orgID, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		if isMalformedID(err) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("delete incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// CreateUpdate appends an entry to an incident's update log.
func (r *Repository) CreateUpdate(ctx context.Context, update *domain.IncidentUpdate) error {
	query := `
		INSERT INTO incident_updates (incident_id, message, status, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		update.IncidentID,
		update.Message,
		update.Status,
		update.IsPublic,
		update.CreatedBy,
	).Scan(&update.ID, &update.CreatedAt)

	if err != nil {
		return fmt.Errorf("create incident update: %w", err)
	}
	return nil
}

// ListUpdates returns an incident's updates, newest first.
func (r *Repository) ListUpdates(ctx context.Context, incidentID string, publicOnly bool) ([]domain.IncidentUpdate, error) {
	query := `
		SELECT id, incident_id, message, status, is_public, created_by, created_at
		FROM incident_updates
		WHERE incident_id = $1
	`
	if publicOnly {
		query += " AND is_public"
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list incident updates: %w", err)
	}
	defer rows.Close()

	updates := make([]domain.IncidentUpdate, 0)
	for rows.Next() {
		var update domain.IncidentUpdate
		err := rows.Scan(
			&update.ID,
			&update.IncidentID,
			&update.Message,
			&update.Status,
			&update.IsPublic,
			&update.CreatedBy,
			&update.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident update: %w", err)
		}
		updates = append(updates, update)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident updates: %w", err)
	}

	return updates, nil
}

// isMalformedID reports the invalid-text-representation error Postgres
// raises when a non-uuid path parameter reaches a uuid column. Callers
// treat such a lookup like a missing row.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
