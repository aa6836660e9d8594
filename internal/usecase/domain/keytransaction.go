package domain

import (
	"context"

	"key-transactions-service/internal/entities"
)

// AddTeamKeyTransactions marks a transaction as key for every requested team
// on the project. Returns true when at least one new record was created, so
// the handler can distinguish 201 from the all-duplicates 204.
func (u *Usecase) AddTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, project, links, err := u.teamWriteTarget(ctx, userID, orgSlug, projectIDs, transaction, teamIDs)
	if err != nil {
		return false, err
	}

	created, err := u.repo.AddTeamKeyTransactions(ctx, org.ID, transaction, links, u.limits)
	if err != nil {
		u.log.Errorw("failed to add team key transactions",
			"org", orgSlug, "project", project.ID, "error", err)
		return false, err
	}
	return created > 0, nil
}

// RemoveTeamKeyTransactions unmarks the transaction for the requested teams.
// Records that never existed are skipped silently.
func (u *Usecase) RemoveTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	_, _, links, err := u.teamWriteTarget(ctx, userID, orgSlug, projectIDs, transaction, teamIDs)
	if err != nil {
		return err
	}

	linkIDs := make([]int64, len(links))
	for i, l := range links {
		linkIDs[i] = l.ID
	}
	return u.repo.RemoveTeamKeyTransactions(ctx, transaction, linkIDs)
}

// teamWriteTarget runs the shared validation chain for team-scoped writes:
// feature gate, transaction name, single accessible project, team membership,
// and project-team link existence.
func (u *Usecase) teamWriteTarget(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) (*entities.Organization, *entities.Project, []entities.ProjectTeam, error) {
	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeaturePerformanceView, entities.FeatureTeamKeyTransactions)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := validateTransaction(transaction); err != nil {
		return nil, nil, nil, err
	}
	if len(teamIDs) == 0 {
		return nil, nil, nil, &entities.ValidationError{Field: "team", Message: "This field is required."}
	}
	project, err := u.singleProject(ctx, org, projectIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	teamIDs = dedupe(teamIDs)
	if _, err := u.authorizeTeams(ctx, org, userID, teamIDs); err != nil {
		return nil, nil, nil, err
	}
	links, err := u.repo.LinksFor(ctx, project.ID, teamIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(links) != len(teamIDs) {
		return nil, nil, nil, entities.ErrTeamNotLinked
	}
	return org, project, links, nil
}

// AddKeyTransaction marks a transaction as key for the calling user. Returns
// true when the record was created, false when it already existed.
func (u *Usecase) AddKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, project, err := u.legacyWriteTarget(ctx, orgSlug, projectIDs, transaction)
	if err != nil {
		return false, err
	}

	created, err := u.repo.AddKeyTransaction(ctx, org.ID, userID, project.ID, transaction, u.limits)
	if err != nil {
		u.log.Errorw("failed to add key transaction",
			"org", orgSlug, "project", project.ID, "user", userID, "error", err)
		return false, err
	}
	return created, nil
}

// RemoveKeyTransaction unmarks the transaction for the calling user.
func (u *Usecase) RemoveKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, project, err := u.legacyWriteTarget(ctx, orgSlug, projectIDs, transaction)
	if err != nil {
		return err
	}
	return u.repo.RemoveKeyTransaction(ctx, org.ID, userID, project.ID, transaction)
}

// IsKeyTransaction reports whether the calling user marked the transaction.
func (u *Usecase) IsKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, project, err := u.legacyWriteTarget(ctx, orgSlug, projectIDs, transaction)
	if err != nil {
		return false, err
	}
	return u.repo.IsKeyTransaction(ctx, org.ID, userID, project.ID, transaction)
}

// CountKeyed counts legacy key transactions on the requested projects across
// every owner in the organization.
func (u *Usecase) CountKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64) (int64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeaturePerformanceView)
	if err != nil {
		return 0, err
	}
	if len(projectIDs) == 0 {
		return 0, &entities.ValidationError{Field: "project", Message: "This field is required."}
	}
	if err := u.orgProjects(ctx, org, projectIDs); err != nil {
		return 0, err
	}
	return u.repo.CountKeyed(ctx, org.ID, projectIDs)
}

func (u *Usecase) legacyWriteTarget(ctx context.Context, orgSlug string, projectIDs []int64, transaction string) (*entities.Organization, *entities.Project, error) {
	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeaturePerformanceView)
	if err != nil {
		return nil, nil, err
	}
	if err := validateTransaction(transaction); err != nil {
		return nil, nil, err
	}
	project, err := u.singleProject(ctx, org, projectIDs)
	if err != nil {
		return nil, nil, err
	}
	return org, project, nil
}
