package domain

import (
	"context"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/pagination"
)

// TeamsKeyed returns the ids of the requested teams that marked the
// transaction as key on the project, ordered by team id.
func (u *Usecase) TeamsKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teams []string) ([]int64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeaturePerformanceView, entities.FeatureTeamKeyTransactions)
	if err != nil {
		return nil, err
	}
	if err := validateTransaction(transaction); err != nil {
		return nil, err
	}
	project, err := u.singleProject(ctx, org, projectIDs)
	if err != nil {
		return nil, err
	}
	teamIDs, err := u.resolveTeamFilter(ctx, org, userID, teams)
	if err != nil {
		return nil, err
	}
	return u.repo.TeamsKeyed(ctx, project.ID, transaction, teamIDs)
}

// ListTeamKeyTransactions builds the per-team listing: every requested team in
// id order with its total key transaction count across all linked projects and
// its keyed entries on the requested projects. Teams are paginated with an
// offset cursor.
func (u *Usecase) ListTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, teams []string, cursor string) ([]entities.TeamKeyedSummary, pagination.Page, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeaturePerformanceView, entities.FeatureTeamKeyTransactions)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if len(projectIDs) == 0 {
		return nil, pagination.Page{}, &entities.ValidationError{Field: "project", Message: "This field is required."}
	}
	if err := u.orgProjects(ctx, org, projectIDs); err != nil {
		return nil, pagination.Page{}, err
	}
	teamIDs, err := u.resolveTeamFilter(ctx, org, userID, teams)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	cur, err := pagination.Parse(cursor)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	page := pagination.Slice(cur, u.pageSize, len(teamIDs))
	window := teamIDs[page.Offset : page.Offset+page.Size]

	summaries, err := u.repo.TeamSummaries(ctx, org.ID, window, projectIDs)
	if err != nil {
		u.log.Errorw("failed to list team key transactions",
			"org", orgSlug, "teams", len(teamIDs), "error", err)
		return nil, pagination.Page{}, err
	}
	return summaries, page, nil
}
