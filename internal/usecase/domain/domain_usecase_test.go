package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/quota"
	"key-transactions-service/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct{ mock.Mock }

var _ repository.Repository = (*repoMock)(nil)

func (m *repoMock) OnStart(_ context.Context) error { return nil }
func (m *repoMock) OnStop(_ context.Context) error  { return nil }

func (m *repoMock) OrganizationBySlug(ctx context.Context, slug string) (*entities.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Organization), args.Error(1)
}

func (m *repoMock) TeamsForUser(ctx context.Context, orgID, userID int64) ([]entities.Team, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Team), args.Error(1)
}

func (m *repoMock) TeamsByID(ctx context.Context, orgID int64, ids []int64) ([]entities.Team, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Team), args.Error(1)
}

func (m *repoMock) ProjectsLinkedToTeam(ctx context.Context, teamID int64) ([]int64, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *repoMock) LinksFor(ctx context.Context, projectID int64, teamIDs []int64) ([]entities.ProjectTeam, error) {
	args := m.Called(ctx, projectID, teamIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ProjectTeam), args.Error(1)
}

func (m *repoMock) ProjectByID(ctx context.Context, id int64) (*entities.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *repoMock) AddTeamKeyTransactions(ctx context.Context, orgID int64, transaction string, links []entities.ProjectTeam, limits quota.Limits) (int64, error) {
	args := m.Called(ctx, orgID, transaction, links, limits)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) RemoveTeamKeyTransactions(ctx context.Context, transaction string, linkIDs []int64) error {
	args := m.Called(ctx, transaction, linkIDs)
	return args.Error(0)
}

func (m *repoMock) TeamsKeyed(ctx context.Context, projectID int64, transaction string, teamIDs []int64) ([]int64, error) {
	args := m.Called(ctx, projectID, transaction, teamIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *repoMock) TeamSummaries(ctx context.Context, orgID int64, teamIDs, projectIDs []int64) ([]entities.TeamKeyedSummary, error) {
	args := m.Called(ctx, orgID, teamIDs, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TeamKeyedSummary), args.Error(1)
}

func (m *repoMock) AddKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string, limits quota.Limits) (bool, error) {
	args := m.Called(ctx, orgID, ownerID, projectID, transaction, limits)
	return args.Bool(0), args.Error(1)
}

func (m *repoMock) RemoveKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) error {
	args := m.Called(ctx, orgID, ownerID, projectID, transaction)
	return args.Error(0)
}

func (m *repoMock) IsKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) (bool, error) {
	args := m.Called(ctx, orgID, ownerID, projectID, transaction)
	return args.Bool(0), args.Error(1)
}

func (m *repoMock) CountKeyed(ctx context.Context, orgID int64, projectIDs []int64) (int64, error) {
	args := m.Called(ctx, orgID, projectIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) Members(ctx context.Context, orgID int64, filterEmail string, offset, limit int) ([]entities.OrgMember, int64, error) {
	args := m.Called(ctx, orgID, filterEmail, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.OrgMember), args.Get(1).(int64), args.Error(2)
}

func (m *repoMock) MemberByID(ctx context.Context, orgID, id int64) (*entities.OrgMember, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OrgMember), args.Error(1)
}

func (m *repoMock) CreateMember(ctx context.Context, member entities.OrgMember) (*entities.OrgMember, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OrgMember), args.Error(1)
}

func (m *repoMock) DeleteMember(ctx context.Context, orgID, id int64) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *repoMock) Groups(ctx context.Context, orgID int64, offset, limit int) ([]entities.Group, int64, error) {
	args := m.Called(ctx, orgID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Group), args.Get(1).(int64), args.Error(2)
}

func (m *repoMock) GroupByID(ctx context.Context, orgID, id int64) (*entities.Group, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

func newTestUsecase(repo *repoMock) *Usecase {
	return New(zap.NewNop().Sugar(), context.Background(), repo, time.Second, quota.DefaultLimits, 100)
}

func fullOrg() *entities.Organization {
	return &entities.Organization{
		ID:   1,
		Slug: "acme",
		Features: []string{
			entities.FeaturePerformanceView,
			entities.FeatureTeamKeyTransactions,
			entities.FeatureSCIMProvisioning,
		},
	}
}

func TestUsecase_AddTeamKeyTransactions(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsByID", mock.Anything, int64(1), []int64{7}).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("LinksFor", mock.Anything, int64(10), []int64{7}).
		Return([]entities.ProjectTeam{{ID: 100, ProjectID: 10, TeamID: 7}}, nil)
	repo.On("AddTeamKeyTransactions", mock.Anything, int64(1), "/checkout", []entities.ProjectTeam{{ID: 100, ProjectID: 10, TeamID: 7}}, quota.DefaultLimits).
		Return(int64(1), nil)

	created, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, "/checkout", []int64{7})
	require.NoError(t, err)
	require.True(t, created)
	repo.AssertExpectations(t)
}

func TestUsecase_AddTeamKeyTransactionsFeatureDisabled(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("OrganizationBySlug", mock.Anything, "acme").
		Return(&entities.Organization{ID: 1, Slug: "acme", Features: []string{entities.FeaturePerformanceView}}, nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, "/checkout", []int64{7})
	require.ErrorIs(t, err, entities.ErrNotFound)
	repo.AssertNotCalled(t, "AddTeamKeyTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUsecase_AddTeamKeyTransactionsProjectRules(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", nil, "/checkout", []int64{7})
	var validation *entities.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "project", validation.Field)
	require.Equal(t, "This field is required.", validation.Message)

	_, err = uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10, 11}, "/checkout", []int64{7})
	require.ErrorIs(t, err, entities.ErrTooManyProjects)
}

func TestUsecase_AddTeamKeyTransactionsForeignProject(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(99)).Return(&entities.Project{ID: 99, OrganizationID: 2}, nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{99}, "/checkout", []int64{7})
	require.ErrorIs(t, err, entities.ErrProjectAccess)
}

func TestUsecase_AddTeamKeyTransactionsTransactionTooLong(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, strings.Repeat("a", 201), []int64{7})
	var validation *entities.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "transaction", validation.Field)
	require.Equal(t, "Ensure this field has no more than 200 characters.", validation.Message)
}

func TestUsecase_AddTeamKeyTransactionsNotMember(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsByID", mock.Anything, int64(1), []int64{7}).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).Return([]entities.Team{}, nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, "/checkout", []int64{7})
	var permission *entities.PermissionError
	require.ErrorAs(t, err, &permission)
	require.Equal(t, "You do not have permission to access backend", permission.Error())
}

func TestUsecase_AddTeamKeyTransactionsTeamNotLinked(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsByID", mock.Anything, int64(1), []int64{7}).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("LinksFor", mock.Anything, int64(10), []int64{7}).Return([]entities.ProjectTeam{}, nil)

	_, err := uc.AddTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, "/checkout", []int64{7})
	require.ErrorIs(t, err, entities.ErrTeamNotLinked)
}

func TestUsecase_AddKeyTransactionDelegates(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("AddKeyTransaction", mock.Anything, int64(1), int64(42), int64(10), "/checkout", quota.DefaultLimits).
		Return(true, nil)

	created, err := uc.AddKeyTransaction(context.Background(), 42, "acme", []int64{10}, "/checkout")
	require.NoError(t, err)
	require.True(t, created)
	repo.AssertExpectations(t)
}

func TestUsecase_TeamsKeyedMyTeamsDedup(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsByID", mock.Anything, int64(1), []int64{7}).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	// once to authorize the explicit id, once to expand the token
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}, {ID: 9, OrganizationID: 1, Name: "frontend"}}, nil)
	repo.On("TeamsKeyed", mock.Anything, int64(10), "/checkout", []int64{7, 9}).
		Return([]int64{7}, nil)

	keyed, err := uc.TeamsKeyed(context.Background(), 42, "acme", []int64{10}, "/checkout", []string{"7", "myteams"})
	require.NoError(t, err)
	require.Equal(t, []int64{7}, keyed)
	repo.AssertExpectations(t)
}

func TestUsecase_ListTeamKeyTransactionsInvalidCursor(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)

	_, _, err := uc.ListTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, []string{"myteams"}, "bogus")
	var validation *entities.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "cursor", validation.Field)
}

func TestUsecase_ListTeamKeyTransactionsWindow(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)

	teams := make([]entities.Team, 0, 120)
	ids := make([]int64, 0, 120)
	for i := int64(1); i <= 120; i++ {
		teams = append(teams, entities.Team{ID: i, OrganizationID: 1})
		ids = append(ids, i)
	}
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).Return(teams, nil)
	repo.On("TeamSummaries", mock.Anything, int64(1), ids[:100], []int64{10}).
		Return([]entities.TeamKeyedSummary{}, nil)

	_, page, err := uc.ListTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, []string{"myteams"}, "")
	require.NoError(t, err)
	require.Equal(t, 120, page.Total)
	require.False(t, page.HasPrev)
	require.True(t, page.HasNext)
	repo.AssertExpectations(t)
}

func TestUsecase_ListTeamKeyTransactionsCursorPastEnd(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("ProjectByID", mock.Anything, int64(10)).Return(&entities.Project{ID: 10, OrganizationID: 1}, nil)
	repo.On("TeamsForUser", mock.Anything, int64(1), int64(42)).
		Return([]entities.Team{{ID: 7, OrganizationID: 1, Name: "backend"}}, nil)
	repo.On("TeamSummaries", mock.Anything, int64(1), []int64{}, []int64{10}).
		Return([]entities.TeamKeyedSummary{}, nil)

	summaries, page, err := uc.ListTeamKeyTransactions(context.Background(), 42, "acme", []int64{10}, []string{"myteams"}, "500:0")
	require.NoError(t, err)
	require.Empty(t, summaries)
	require.Zero(t, page.Size)
	require.False(t, page.HasNext)
	repo.AssertExpectations(t)
}

func TestUsecase_MembersFilter(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("Members", mock.Anything, int64(1), "sso@example.com", 0, 100).
		Return([]entities.OrgMember{{ID: 3, Email: "sso@example.com"}}, int64(1), nil)

	members, total, err := uc.Members(context.Background(), "acme", `userName eq "sso@example.com"`, 1, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, members, 1)
	repo.AssertExpectations(t)
}

func TestUsecase_MembersZeroCountReturnsTotalOnly(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("Members", mock.Anything, int64(1), "", 0, 0).
		Return([]entities.OrgMember{}, int64(5), nil)

	members, total, err := uc.Members(context.Background(), "acme", "", 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Empty(t, members)
	repo.AssertExpectations(t)
}

func TestUsecase_MembersInvalidFilter(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)

	_, _, err := uc.Members(context.Background(), "acme", `userName sw "sso"`, 1, 100)
	require.ErrorIs(t, err, entities.ErrInvalidFilter)
}

func TestUsecase_CreateMemberNormalizesEmail(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)
	repo.On("OrganizationBySlug", mock.Anything, "acme").Return(fullOrg(), nil)
	repo.On("CreateMember", mock.Anything, mock.MatchedBy(func(m entities.OrgMember) bool {
		return m.Email == "new@example.com" && m.OrganizationID == 1
	})).Return(&entities.OrgMember{ID: 5, OrganizationID: 1, Email: "new@example.com"}, nil)

	member, err := uc.CreateMember(context.Background(), "acme", " New@Example.com ", "New User", "ext-1")
	require.NoError(t, err)
	require.EqualValues(t, 5, member.ID)
	repo.AssertExpectations(t)
}
