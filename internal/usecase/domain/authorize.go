// Package domain contains application Usecases orchestrating domain logic.
// This file is the authorization gate in front of the key transaction
// registry: feature gating, the single-project rule, team membership and
// project-team link checks. Pure validation, no side effects.
package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"key-transactions-service/internal/entities"
)

// MyTeams is the pseudo-token expanding to every team the caller belongs to
// within the organization.
const MyTeams = "myteams"

// orgWithFeatures resolves the organization and requires every named feature.
// A disabled feature renders the whole surface absent, not forbidden.
func (u *Usecase) orgWithFeatures(ctx context.Context, slug string, features ...string) (*entities.Organization, error) {
	org, err := u.repo.OrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if !org.HasFeature(f) {
			return nil, entities.ErrNotFound
		}
	}
	return org, nil
}

// singleProject enforces the exactly-one-project rule for key transaction
// writes and checks the project belongs to the caller's organization.
func (u *Usecase) singleProject(ctx context.Context, org *entities.Organization, projectIDs []int64) (*entities.Project, error) {
	if len(projectIDs) == 0 {
		return nil, &entities.ValidationError{Field: "project", Message: "This field is required."}
	}
	if len(projectIDs) > 1 {
		return nil, entities.ErrTooManyProjects
	}
	project, err := u.repo.ProjectByID(ctx, projectIDs[0])
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.ErrProjectAccess
		}
		return nil, err
	}
	if project.OrganizationID != org.ID {
		return nil, entities.ErrProjectAccess
	}
	return project, nil
}

// orgProjects checks every requested project belongs to the organization.
func (u *Usecase) orgProjects(ctx context.Context, org *entities.Organization, projectIDs []int64) error {
	for _, id := range projectIDs {
		project, err := u.repo.ProjectByID(ctx, id)
		if err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				return entities.ErrProjectAccess
			}
			return err
		}
		if project.OrganizationID != org.ID {
			return entities.ErrProjectAccess
		}
	}
	return nil
}

// authorizeTeams resolves the requested teams and verifies the caller is a
// member of each one. Failure names the first team the caller cannot access.
func (u *Usecase) authorizeTeams(ctx context.Context, org *entities.Organization, userID int64, teamIDs []int64) ([]entities.Team, error) {
	teams, err := u.repo.TeamsByID(ctx, org.ID, teamIDs)
	if err != nil {
		return nil, err
	}
	if len(teams) != len(dedupe(teamIDs)) {
		return nil, &entities.ValidationError{Field: "team", Message: "Invalid team ID."}
	}

	memberTeams, err := u.repo.TeamsForUser(ctx, org.ID, userID)
	if err != nil {
		return nil, err
	}
	member := make(map[int64]struct{}, len(memberTeams))
	for _, t := range memberTeams {
		member[t.ID] = struct{}{}
	}

	for _, t := range teams {
		if _, ok := member[t.ID]; !ok {
			return nil, &entities.PermissionError{TeamName: t.Name}
		}
	}
	return teams, nil
}

// resolveTeamFilter turns a team filter holding literal ids and/or the
// myteams token into a deduplicated, id-ordered team set. Explicit ids must
// be accessible to the caller; teams arriving only through the token are the
// caller's own by construction.
func (u *Usecase) resolveTeamFilter(ctx context.Context, org *entities.Organization, userID int64, teams []string) ([]int64, error) {
	if len(teams) == 0 {
		return nil, &entities.ValidationError{Field: "team", Message: "This field is required."}
	}

	explicit := make([]int64, 0, len(teams))
	myTeams := false
	for _, t := range teams {
		if t == MyTeams {
			myTeams = true
			continue
		}
		id, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, &entities.ValidationError{Field: "team", Message: fmt.Sprintf("Invalid team: %s", t)}
		}
		explicit = append(explicit, id)
	}
	explicit = dedupe(explicit)

	resolved := make(map[int64]struct{}, len(explicit))
	if len(explicit) > 0 {
		if _, err := u.authorizeTeams(ctx, org, userID, explicit); err != nil {
			return nil, err
		}
		for _, id := range explicit {
			resolved[id] = struct{}{}
		}
	}
	if myTeams {
		memberTeams, err := u.repo.TeamsForUser(ctx, org.ID, userID)
		if err != nil {
			return nil, err
		}
		for _, t := range memberTeams {
			resolved[t.ID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(resolved))
	for id := range resolved {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func validateTransaction(transaction string) error {
	if transaction == "" {
		return &entities.ValidationError{Field: "transaction", Message: "This field is required."}
	}
	if len(transaction) > entities.MaxTransactionLength {
		return &entities.ValidationError{
			Field:   "transaction",
			Message: fmt.Sprintf("Ensure this field has no more than %d characters.", entities.MaxTransactionLength),
		}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
