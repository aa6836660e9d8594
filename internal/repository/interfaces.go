// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/quota"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// OrganizationInterface resolves the tenant and its feature flags.
type OrganizationInterface interface {
	OrganizationBySlug(ctx context.Context, slug string) (*entities.Organization, error)
}

// MembershipInterface is the read-only view of the project/team membership graph.
type MembershipInterface interface {
	// TeamsForUser returns the organization teams the user belongs to,
	// ordered by team id.
	TeamsForUser(ctx context.Context, orgID, userID int64) ([]entities.Team, error)
	// TeamsByID resolves teams by id within an organization, ordered by id.
	// Unknown ids are silently absent from the result.
	TeamsByID(ctx context.Context, orgID int64, ids []int64) ([]entities.Team, error)
	// ProjectsLinkedToTeam returns ids of projects the team is linked to.
	ProjectsLinkedToTeam(ctx context.Context, teamID int64) ([]int64, error)
	// LinksFor resolves project-team links for the given teams on one project.
	// Teams with no link are absent from the result.
	LinksFor(ctx context.Context, projectID int64, teamIDs []int64) ([]entities.ProjectTeam, error)
	// ProjectByID fetches a project regardless of organization.
	ProjectByID(ctx context.Context, id int64) (*entities.Project, error)
}

// KeyTransactionInterface manages both key transaction record kinds.
type KeyTransactionInterface interface {
	// AddTeamKeyTransactions idempotently marks the transaction as key for
	// every given link, enforcing the per-link ceiling atomically. Returns the
	// number of rows actually created.
	AddTeamKeyTransactions(ctx context.Context, orgID int64, transaction string, links []entities.ProjectTeam, limits quota.Limits) (int64, error)
	// RemoveTeamKeyTransactions deletes matching rows; absence is not an error.
	RemoveTeamKeyTransactions(ctx context.Context, transaction string, linkIDs []int64) error
	// TeamsKeyed returns the subset of teamIDs that keyed the transaction on
	// the project, ordered by team id.
	TeamsKeyed(ctx context.Context, projectID int64, transaction string, teamIDs []int64) ([]int64, error)
	// TeamSummaries builds listing rows for the given teams, in the order
	// given: per-team total count across all linked projects, plus keyed
	// entries restricted to projectIDs.
	TeamSummaries(ctx context.Context, orgID int64, teamIDs, projectIDs []int64) ([]entities.TeamKeyedSummary, error)

	// AddKeyTransaction inserts a legacy owner-scoped record, enforcing the
	// per-owner ceiling atomically. Returns false without error when the
	// record already existed.
	AddKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string, limits quota.Limits) (bool, error)
	// RemoveKeyTransaction deletes the record if present; absence is not an error.
	RemoveKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) error
	// IsKeyTransaction reports whether the owner keyed the transaction.
	IsKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) (bool, error)
	// CountKeyed counts legacy records across projects, disregarding owner.
	CountKeyed(ctx context.Context, orgID int64, projectIDs []int64) (int64, error)
}

// ProvisioningInterface exposes SCIM-backed member and group operations.
type ProvisioningInterface interface {
	// Members lists organization members ordered by id; filterEmail narrows to
	// an exact (case-insensitive) email match when non-empty.
	Members(ctx context.Context, orgID int64, filterEmail string, offset, limit int) ([]entities.OrgMember, int64, error)
	MemberByID(ctx context.Context, orgID, id int64) (*entities.OrgMember, error)
	CreateMember(ctx context.Context, m entities.OrgMember) (*entities.OrgMember, error)
	DeleteMember(ctx context.Context, orgID, id int64) error
	Groups(ctx context.Context, orgID int64, offset, limit int) ([]entities.Group, int64, error)
	GroupByID(ctx context.Context, orgID, id int64) (*entities.Group, error)
}
