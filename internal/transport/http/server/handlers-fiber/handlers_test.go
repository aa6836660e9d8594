package handlers_fiber

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"key-transactions-service/internal/api"
	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/pagination"
	"key-transactions-service/internal/scim"
	"key-transactions-service/internal/transport/http/middleware"
	"key-transactions-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ucMock struct{ mock.Mock }

var _ usecase.InterfaceUsecase = (*ucMock)(nil)

func (m *ucMock) AddTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) (bool, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction, teamIDs)
	return args.Bool(0), args.Error(1)
}

func (m *ucMock) RemoveTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teamIDs []int64) error {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction, teamIDs)
	return args.Error(0)
}

func (m *ucMock) TeamsKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string, teams []string) ([]int64, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction, teams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *ucMock) ListTeamKeyTransactions(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, teams []string, cursor string) ([]entities.TeamKeyedSummary, pagination.Page, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs, teams, cursor)
	if args.Get(0) == nil {
		return nil, pagination.Page{}, args.Error(2)
	}
	return args.Get(0).([]entities.TeamKeyedSummary), args.Get(1).(pagination.Page), args.Error(2)
}

func (m *ucMock) AddKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction)
	return args.Bool(0), args.Error(1)
}

func (m *ucMock) RemoveKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) error {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction)
	return args.Error(0)
}

func (m *ucMock) IsKeyTransaction(ctx context.Context, userID int64, orgSlug string, projectIDs []int64, transaction string) (bool, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs, transaction)
	return args.Bool(0), args.Error(1)
}

func (m *ucMock) CountKeyed(ctx context.Context, userID int64, orgSlug string, projectIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, orgSlug, projectIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ucMock) Schemas(ctx context.Context, orgSlug string) ([]scim.ResourceSchema, error) {
	args := m.Called(ctx, orgSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scim.ResourceSchema), args.Error(1)
}

func (m *ucMock) Members(ctx context.Context, orgSlug, filter string, startIndex, count int) ([]entities.OrgMember, int64, error) {
	args := m.Called(ctx, orgSlug, filter, startIndex, count)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.OrgMember), args.Get(1).(int64), args.Error(2)
}

func (m *ucMock) MemberByID(ctx context.Context, orgSlug string, id int64) (*entities.OrgMember, error) {
	args := m.Called(ctx, orgSlug, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OrgMember), args.Error(1)
}

func (m *ucMock) CreateMember(ctx context.Context, orgSlug, email, displayName, externalID string) (*entities.OrgMember, error) {
	args := m.Called(ctx, orgSlug, email, displayName, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OrgMember), args.Error(1)
}

func (m *ucMock) DeleteMember(ctx context.Context, orgSlug string, id int64) error {
	args := m.Called(ctx, orgSlug, id)
	return args.Error(0)
}

func (m *ucMock) Groups(ctx context.Context, orgSlug string, startIndex, count int) ([]entities.Group, int64, error) {
	args := m.Called(ctx, orgSlug, startIndex, count)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Group), args.Get(1).(int64), args.Error(2)
}

func (m *ucMock) GroupByID(ctx context.Context, orgSlug string, id int64) (*entities.Group, error) {
	args := m.Called(ctx, orgSlug, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

func newTestApp(uc usecase.InterfaceUsecase) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Auth())
	api.RegisterHandlers(app, NewHandler(zap.NewNop().Sugar(), uc))
	return app
}

func asUser(req *http.Request) *http.Request {
	req.Header.Set("X-User-Id", "42")
	return req
}

func TestPostKeyTransactionsTeamCreated(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("AddTeamKeyTransactions", mock.Anything, int64(42), "acme", []int64{10}, "/checkout", []int64{7}).
		Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/0/organizations/acme/key-transactions?project=10",
		strings.NewReader(`{"transaction": "/checkout", "team": [7]}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uc.AssertExpectations(t)
}

func TestPostKeyTransactionsAllDuplicates(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("AddTeamKeyTransactions", mock.Anything, int64(42), "acme", []int64{10}, "/checkout", []int64{7}).
		Return(false, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/0/organizations/acme/key-transactions?project=10",
		strings.NewReader(`{"transaction": "/checkout", "team": [7]}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestPostKeyTransactionsLegacyWithoutTeam(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("AddKeyTransaction", mock.Anything, int64(42), "acme", []int64{10}, "/checkout").
		Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/0/organizations/acme/key-transactions?project=10",
		strings.NewReader(`{"transaction": "/checkout"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uc.AssertExpectations(t)
}

func TestGetKeyTransactionsRendersTeamIDs(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("TeamsKeyed", mock.Anything, int64(42), "acme", []int64{10}, "/checkout", []string{"7", "9"}).
		Return([]int64{7}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/0/organizations/acme/key-transactions?project=10&transaction=%2Fcheckout&team=7&team=9", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `[{"team": "7"}]`, string(body))
}

func TestGetKeyTransactionsListLinkHeader(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("ListTeamKeyTransactions", mock.Anything, int64(42), "acme", []int64{10}, []string{"myteams"}, "").
		Return([]entities.TeamKeyedSummary{
			{TeamID: 7, Count: 2, Keyed: []entities.TeamKeyed{{ProjectID: 10, Transaction: "/checkout"}}},
		}, pagination.Page{Offset: 0, Size: 1, Total: 101, HasNext: true}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/0/organizations/acme/key-transactions-list?project=10&team=myteams", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	link := resp.Header.Get(fiber.HeaderLink)
	require.Contains(t, link, `rel="previous"; results="false"`)
	require.Contains(t, link, `rel="next"; results="true"; cursor="1:0"`)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `[{"team": "7", "count": 2, "keyed": [{"project_id": "10", "transaction": "/checkout"}]}]`, string(body))
}

func TestGetKeyTransactionsListPermissionBody(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("ListTeamKeyTransactions", mock.Anything, int64(42), "acme", []int64{10}, []string{"7"}, "").
		Return(nil, pagination.Page{}, &entities.PermissionError{TeamName: "backend"})

	req := httptest.NewRequest(http.MethodGet,
		"/api/0/organizations/acme/key-transactions-list?project=10&team=7", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `"Error: You do not have permission to access backend"`, string(body))
}

func TestGetIsKeyTransactions(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("IsKeyTransaction", mock.Anything, int64(42), "acme", []int64{10}, "/checkout").
		Return(true, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/0/organizations/acme/is-key-transactions?project=10&transaction=%2Fcheckout", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"isKey": true}`, string(body))
}

func TestRequestsWithoutUserRejected(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/0/organizations/acme/is-key-transactions?project=10&transaction=x", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	uc.AssertNotCalled(t, "IsKeyTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostSCIMUsersConflict(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("CreateMember", mock.Anything, "acme", "dup@example.com", "", "").
		Return(nil, entities.ErrMemberExists)

	req := httptest.NewRequest(http.MethodPost, "/scim/v2/organizations/acme/Users",
		strings.NewReader(`{"userName": "dup@example.com"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body scim.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "User already exists in the database.", body.Detail)
}

func TestGetSCIMUsersInvalidFilter(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("Members", mock.Anything, "acme", `userName sw "a"`, 1, 100).
		Return(nil, int64(0), entities.ErrInvalidFilter)

	req := httptest.NewRequest(http.MethodGet,
		"/scim/v2/organizations/acme/Users?filter="+`userName%20sw%20%22a%22`, nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body scim.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "invalidFilter", body.SCIMType)
}

func TestGetSCIMUsersListEnvelope(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("Members", mock.Anything, "acme", "", 1, 100).
		Return([]entities.OrgMember{{ID: 3, Email: "one@example.com"}}, int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/scim/v2/organizations/acme/Users", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope struct {
		Schemas      []string `json:"schemas"`
		TotalResults int      `json:"totalResults"`
		Resources    []struct {
			ID       string `json:"id"`
			UserName string `json:"userName"`
		} `json:"Resources"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, []string{scim.MessageListResponse}, envelope.Schemas)
	require.Equal(t, 1, envelope.TotalResults)
	require.Len(t, envelope.Resources, 1)
	require.Equal(t, "3", envelope.Resources[0].ID)
	require.Equal(t, "one@example.com", envelope.Resources[0].UserName)
}

func TestDeleteSCIMUser(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)
	uc.On("DeleteMember", mock.Anything, "acme", int64(3)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/scim/v2/organizations/acme/Users/3", nil)
	resp, err := app.Test(asUser(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	uc.AssertExpectations(t)
}
