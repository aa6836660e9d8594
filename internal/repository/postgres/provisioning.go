package postgres

import (
	"context"
	"errors"
	"fmt"

	"key-transactions-service/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	membersQuery = `
SELECT id, organization_id, COALESCE(user_id, 0), email, display_name, COALESCE(scim_external_id, '')
FROM org_members
WHERE organization_id = $1 AND ($2 = '' OR lower(email) = lower($2))
ORDER BY id
OFFSET $3 LIMIT $4`
	membersCountQuery = `
SELECT COUNT(*)
FROM org_members
WHERE organization_id = $1 AND ($2 = '' OR lower(email) = lower($2))`
	memberByIDQuery = `
SELECT id, organization_id, COALESCE(user_id, 0), email, display_name, COALESCE(scim_external_id, '')
FROM org_members
WHERE organization_id = $1 AND id = $2`
	insertMemberQuery = `
INSERT INTO org_members(organization_id, user_id, email, display_name, scim_external_id)
VALUES ($1, NULLIF($2, 0), $3, $4, NULLIF($5, ''))
RETURNING id`
	deleteMemberQuery = `DELETE FROM org_members WHERE organization_id=$1 AND id=$2`

	groupsQuery       = `SELECT id, organization_id, slug, name FROM teams WHERE organization_id=$1 ORDER BY id OFFSET $2 LIMIT $3`
	groupsCountQuery  = `SELECT COUNT(*) FROM teams WHERE organization_id=$1`
	groupByIDQuery    = `SELECT id, organization_id, slug, name FROM teams WHERE organization_id=$1 AND id=$2`
	groupMembersQuery = `
SELECT om.id, om.organization_id, COALESCE(om.user_id, 0), om.email, om.display_name, COALESCE(om.scim_external_id, '')
FROM team_memberships tm
JOIN org_members om ON om.id = tm.member_id
WHERE tm.team_id = $1
ORDER BY om.id`
)

// Members lists organization members ordered by id.
func (p *Postgres) Members(ctx context.Context, orgID int64, filterEmail string, offset, limit int) ([]entities.OrgMember, int64, error) {
	var total int64
	if err := p.db.QueryRow(ctx, membersCountQuery, orgID, filterEmail).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	rows, err := p.db.Query(ctx, membersQuery, orgID, filterEmail, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members, err := scanMembers(rows)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// MemberByID fetches one member within the organization.
func (p *Postgres) MemberByID(ctx context.Context, orgID, id int64) (*entities.OrgMember, error) {
	var m entities.OrgMember
	err := p.db.QueryRow(ctx, memberByIDQuery, orgID, id).
		Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Email, &m.DisplayName, &m.SCIMExternalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrMemberNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// CreateMember provisions a member. An existing email in the organization is
// a conflict, not an error to retry.
func (p *Postgres) CreateMember(ctx context.Context, m entities.OrgMember) (*entities.OrgMember, error) {
	err := p.db.QueryRow(ctx, insertMemberQuery,
		m.OrganizationID, m.UserID, m.Email, m.DisplayName, m.SCIMExternalID).Scan(&m.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, entities.ErrMemberExists
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}

	p.log.Infow("member provisioned", "org_id", m.OrganizationID, "member_id", m.ID)
	return &m, nil
}

// DeleteMember removes the member; team memberships cascade.
func (p *Postgres) DeleteMember(ctx context.Context, orgID, id int64) error {
	tag, err := p.db.Exec(ctx, deleteMemberQuery, orgID, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrMemberNotFound
	}
	p.log.Infow("member deprovisioned", "org_id", orgID, "member_id", id)
	return nil
}

// Groups lists teams as provisioning groups with their members.
func (p *Postgres) Groups(ctx context.Context, orgID int64, offset, limit int) ([]entities.Group, int64, error) {
	var total int64
	if err := p.db.QueryRow(ctx, groupsCountQuery, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}

	rows, err := p.db.Query(ctx, groupsQuery, orgID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	teams, err := scanTeams(rows)
	if err != nil {
		return nil, 0, err
	}

	groups := make([]entities.Group, 0, len(teams))
	for _, t := range teams {
		members, err := p.groupMembers(ctx, t.ID)
		if err != nil {
			return nil, 0, err
		}
		groups = append(groups, entities.Group{Team: t, Members: members})
	}
	return groups, total, nil
}

// GroupByID fetches one team as a provisioning group.
func (p *Postgres) GroupByID(ctx context.Context, orgID, id int64) (*entities.Group, error) {
	var t entities.Team
	err := p.db.QueryRow(ctx, groupByIDQuery, orgID, id).
		Scan(&t.ID, &t.OrganizationID, &t.Slug, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	members, err := p.groupMembers(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &entities.Group{Team: t, Members: members}, nil
}

func (p *Postgres) groupMembers(ctx context.Context, teamID int64) ([]entities.OrgMember, error) {
	rows, err := p.db.Query(ctx, groupMembersQuery, teamID)
	if err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	defer rows.Close()
	return scanMembers(rows)
}

func scanMembers(rows pgx.Rows) ([]entities.OrgMember, error) {
	members := make([]entities.OrgMember, 0)
	for rows.Next() {
		var m entities.OrgMember
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Email, &m.DisplayName, &m.SCIMExternalID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}
