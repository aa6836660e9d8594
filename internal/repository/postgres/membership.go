package postgres

import (
	"context"
	"errors"
	"fmt"

	"key-transactions-service/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	teamsForUserQuery = `
SELECT t.id, t.organization_id, t.slug, t.name
FROM team_memberships m
JOIN org_members om ON om.id = m.member_id
JOIN teams t ON t.id = m.team_id
WHERE t.organization_id = $1 AND om.user_id = $2
ORDER BY t.id`
	teamsByIDQuery = `
SELECT id, organization_id, slug, name
FROM teams
WHERE organization_id = $1 AND id = ANY($2)
ORDER BY id`
	projectsLinkedToTeamQuery = `SELECT project_id FROM project_teams WHERE team_id=$1 ORDER BY project_id`
	linksForQuery             = `
SELECT id, project_id, team_id
FROM project_teams
WHERE project_id = $1 AND team_id = ANY($2)
ORDER BY team_id`
	projectByIDQuery = `SELECT id, organization_id, slug, name FROM projects WHERE id=$1`
)

// TeamsForUser returns the organization teams the user is a member of, in
// creation order.
func (p *Postgres) TeamsForUser(ctx context.Context, orgID, userID int64) ([]entities.Team, error) {
	rows, err := p.db.Query(ctx, teamsForUserQuery, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("teams for user: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

// TeamsByID resolves teams by id within the organization. Ids that do not
// exist in the organization are simply absent from the result.
func (p *Postgres) TeamsByID(ctx context.Context, orgID int64, ids []int64) ([]entities.Team, error) {
	if len(ids) == 0 {
		return []entities.Team{}, nil
	}
	rows, err := p.db.Query(ctx, teamsByIDQuery, orgID, ids)
	if err != nil {
		return nil, fmt.Errorf("teams by id: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

// ProjectsLinkedToTeam returns ids of every project linked to the team.
func (p *Postgres) ProjectsLinkedToTeam(ctx context.Context, teamID int64) ([]int64, error) {
	rows, err := p.db.Query(ctx, projectsLinkedToTeamQuery, teamID)
	if err != nil {
		return nil, fmt.Errorf("projects linked to team: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project ids: %w", err)
	}
	return ids, nil
}

// LinksFor resolves project-team links for the given teams on one project.
func (p *Postgres) LinksFor(ctx context.Context, projectID int64, teamIDs []int64) ([]entities.ProjectTeam, error) {
	if len(teamIDs) == 0 {
		return []entities.ProjectTeam{}, nil
	}
	rows, err := p.db.Query(ctx, linksForQuery, projectID, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("links for project: %w", err)
	}
	defer rows.Close()

	links := make([]entities.ProjectTeam, 0, len(teamIDs))
	for rows.Next() {
		var l entities.ProjectTeam
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.TeamID); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// ProjectByID fetches a project regardless of organization.
func (p *Postgres) ProjectByID(ctx context.Context, id int64) (*entities.Project, error) {
	var pr entities.Project
	err := p.db.QueryRow(ctx, projectByIDQuery, id).
		Scan(&pr.ID, &pr.OrganizationID, &pr.Slug, &pr.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &pr, nil
}

func scanTeams(rows pgx.Rows) ([]entities.Team, error) {
	teams := make([]entities.Team, 0)
	for rows.Next() {
		var t entities.Team
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}
