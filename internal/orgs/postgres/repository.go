// Package postgres provides PostgreSQL implementation of the orgs repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/orgs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the orgs.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateOrganization creates a new organization in the database.
func (r *Repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, domain, logo, brand_color, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		org.Name,
		org.Domain,
		org.Logo,
		org.BrandColor,
		org.Settings,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return orgs.ErrDomainTaken
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by its ID.
func (r *Repository) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	query := `
		SELECT id, name, domain, logo, brand_color, settings, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	return r.scanOrganization(r.db.QueryRow(ctx, query, id), "get organization by id")
}

// GetOrganizationByDomain retrieves an organization by its public domain slug.
func (r *Repository) GetOrganizationByDomain(ctx context.Context, orgDomain string) (*domain.Organization, error) {
	query := `
		SELECT id, name, domain, logo, brand_color, settings, created_at, updated_at
		FROM organizations
		WHERE domain = $1
	`
	return r.scanOrganization(r.db.QueryRow(ctx, query, orgDomain), "get organization by domain")
}

func (r *Repository) scanOrganization(row pgx.Row, op string) (*domain.Organization, error) {
	var org domain.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Domain,
		&org.Logo,
		&org.BrandColor,
		&org.Settings,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, orgs.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &org, nil
}

// UpdateOrganization updates an existing organization.
func (r *Repository) UpdateOrganization(ctx context.Context, org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, logo = $3, brand_color = $4, settings = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		org.ID,
		org.Name,
		org.Logo,
		org.BrandColor,
		org.Settings,
	).Scan(&org.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return orgs.ErrOrganizationNotFound
		}
		return fmt.Errorf("update organization: %w", err)
	}
	return nil
}

// DeleteOrganization deletes an organization. Team members, services,
// incidents and incident updates go with it via ON DELETE CASCADE.
func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		if isMalformedID(err) {
			return orgs.ErrOrganizationNotFound
		}
		return fmt.Errorf("delete organization: %w", err)
	}

	if result.RowsAffected() == 0 {
		return orgs.ErrOrganizationNotFound
	}
	return nil
}

// CreateMember creates a new team member in the database.
func (r *Repository) CreateMember(ctx context.Context, member *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (organization_id, user_id, email, name, role, invite_accepted, invite_token, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		member.OrganizationID,
		member.UserID,
		member.Email,
		member.Name,
		member.Role,
		member.InviteAccepted,
		member.InviteToken,
		member.LastActive,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return orgs.ErrMemberExists
		}
		return fmt.Errorf("create team member: %w", err)
	}
	return nil
}

const memberColumns = `id, organization_id, user_id, email, name, role, invite_accepted, invite_token, last_active, created_at, updated_at`

// GetMember retrieves a team member by its ID.
func (r *Repository) GetMember(ctx context.Context, id string) (*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id = $1`
	return r.scanMember(r.db.QueryRow(ctx, query, id), "get team member by id")
}

// GetMemberByUser retrieves an organization's member record for a user.
func (r *Repository) GetMemberByUser(ctx context.Context, userID, orgID string) (*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE user_id = $1 AND organization_id = $2`
	return r.scanMember(r.db.QueryRow(ctx, query, userID, orgID), "get team member by user")
}

// GetMemberByEmail retrieves an organization's member record by email.
func (r *Repository) GetMemberByEmail(ctx context.Context, orgID, email string) (*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE organization_id = $1 AND email = $2`
	return r.scanMember(r.db.QueryRow(ctx, query, orgID, email), "get team member by email")
}

// GetMemberByInviteToken retrieves a pending member record by invite token.
func (r *Repository) GetMemberByInviteToken(ctx context.Context, token string) (*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE invite_token = $1`
	return r.scanMember(r.db.QueryRow(ctx, query, token), "get team member by invite token")
}

func (r *Repository) scanMember(row pgx.Row, op string) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := row.Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.Email,
		&member.Name,
		&member.Role,
		&member.InviteAccepted,
		&member.InviteToken,
		&member.LastActive,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, orgs.ErrMemberNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &member, nil
}

// ListMembers retrieves all members of an organization ordered by creation.
func (r *Repository) ListMembers(ctx context.Context, orgID string) ([]domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE organization_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var member domain.TeamMember
		err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&member.Email,
			&member.Name,
			&member.Role,
			&member.InviteAccepted,
			&member.InviteToken,
			&member.LastActive,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}

	return members, nil
}

// ListMembershipsForUser returns every organization the user belongs to
// together with their role, accepted memberships only.
func (r *Repository) ListMembershipsForUser(ctx context.Context, userID string) ([]orgs.Membership, error) {
	query := `
		SELECT o.id, o.name, o.domain, o.logo, o.brand_color, o.settings, o.created_at, o.updated_at, m.role
		FROM organizations o
		JOIN team_members m ON m.organization_id = o.id
		WHERE m.user_id = $1 AND m.invite_accepted
		ORDER BY o.name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]orgs.Membership, 0)
	for rows.Next() {
		var m orgs.Membership
		err := rows.Scan(
			&m.Organization.ID,
			&m.Organization.Name,
			&m.Organization.Domain,
			&m.Organization.Logo,
			&m.Organization.BrandColor,
			&m.Organization.Settings,
			&m.Organization.CreatedAt,
			&m.Organization.UpdatedAt,
			&m.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return memberships, nil
}

// UpdateMember updates an existing team member.
func (r *Repository) UpdateMember(ctx context.Context, member *domain.TeamMember) error {
	query := `
		UPDATE team_members
		SET user_id = $2, email = $3, name = $4, role = $5, invite_accepted = $6, invite_token = $7, last_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		member.ID,
		member.UserID,
		member.Email,
		member.Name,
		member.Role,
		member.InviteAccepted,
		member.InviteToken,
		member.LastActive,
	).Scan(&member.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return orgs.ErrMemberNotFound
		}
		if isUniqueViolation(err) {
			return orgs.ErrMemberExists
		}
		return fmt.Errorf("update team member: %w", err)
	}
	return nil
}

// DeleteMember deletes a team member by its ID.
func (r *Repository) DeleteMember(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		if isMalformedID(err) {
			return orgs.ErrMemberNotFound
		}
		return fmt.Errorf("delete team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return orgs.ErrMemberNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isMalformedID reports the invalid-text-representation error Postgres
// raises when a non-uuid path parameter reaches a uuid column. Callers
// treat such a lookup like a missing row.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
