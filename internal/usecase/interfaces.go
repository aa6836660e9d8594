package usecase

import (
	"context"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/pagination"
	"key-transactions-service/internal/scim"
)

// KeyTransactionUsecaseInterface abstracts key transaction operations for the
// delivery layer. Team filters are raw strings because they may carry the
// "myteams" pseudo-token next to literal team ids.
type KeyTransactionUsecaseInterface interface {
	AddTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) (bool, error)
	RemoveTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) error
	TeamsKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teams []string) ([]int64, error)
	ListTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, teams []string, cursor string) ([]entities.TeamKeyedSummary, pagination.Page, error)

	AddKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error)
	RemoveKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) error
	IsKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error)
	CountKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64) (int64, error)
}

// ProvisioningUsecaseInterface abstracts the SCIM surface.
type ProvisioningUsecaseInterface interface {
	Schemas(ctx context.Context, orgSlug string) ([]scim.ResourceSchema, error)
	Members(ctx context.Context, orgSlug, filter string, startIndex, count int) ([]entities.OrgMember, int64, error)
	MemberByID(ctx context.Context, orgSlug string, id int64) (*entities.OrgMember, error)
	CreateMember(ctx context.Context, orgSlug, email, displayName, externalID string) (*entities.OrgMember, error)
	DeleteMember(ctx context.Context, orgSlug string, id int64) error
	Groups(ctx context.Context, orgSlug string, startIndex, count int) ([]entities.Group, int64, error)
	GroupByID(ctx context.Context, orgSlug string, id int64) (*entities.Group, error)
}
