// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"strconv"

	"key-transactions-service/internal/api"
	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/scim"
)

// ToTeamKeyedEntries renders keyed team ids. Ids are strings on the wire.
func ToTeamKeyedEntries(teamIDs []int64) []api.TeamKeyedEntry {
	out := make([]api.TeamKeyedEntry, 0, len(teamIDs))
	for _, id := range teamIDs {
		out = append(out, api.TeamKeyedEntry{Team: strconv.FormatInt(id, 10)})
	}
	return out
}

// ToTeamKeyTransactions maps one listing row to its transport form.
func ToTeamKeyTransactions(s entities.TeamKeyedSummary) api.TeamKeyTransactions {
	keyed := make([]api.KeyedTransaction, 0, len(s.Keyed))
	for _, k := range s.Keyed {
		keyed = append(keyed, api.KeyedTransaction{
			ProjectID:   strconv.FormatInt(k.ProjectID, 10),
			Transaction: k.Transaction,
		})
	}
	return api.TeamKeyTransactions{
		Team:  strconv.FormatInt(s.TeamID, 10),
		Count: int(s.Count),
		Keyed: keyed,
	}
}

// ToTeamKeyTransactionsList maps a page of listing rows.
func ToTeamKeyTransactionsList(list []entities.TeamKeyedSummary) []api.TeamKeyTransactions {
	out := make([]api.TeamKeyTransactions, 0, len(list))
	for _, s := range list {
		out = append(out, ToTeamKeyTransactions(s))
	}
	return out
}

// ToSCIMUser maps an organization member to its SCIM User resource.
func ToSCIMUser(m entities.OrgMember) scim.User {
	return scim.User{
		Schemas:    []string{scim.SchemaUser},
		ID:         strconv.FormatInt(m.ID, 10),
		UserName:   m.Email,
		ExternalID: m.SCIMExternalID,
		Emails:     []scim.UserEmail{{Value: m.Email, Primary: true, Type: "work"}},
		Active:     true,
		Meta:       scim.Meta{ResourceType: "User"},
	}
}

// ToSCIMUsers maps a page of members.
func ToSCIMUsers(members []entities.OrgMember) []scim.User {
	out := make([]scim.User, 0, len(members))
	for _, m := range members {
		out = append(out, ToSCIMUser(m))
	}
	return out
}

// ToSCIMGroup maps a team with its members to a SCIM Group resource.
func ToSCIMGroup(g entities.Group) scim.Group {
	members := make([]scim.GroupMember, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, scim.GroupMember{
			Value:   strconv.FormatInt(m.ID, 10),
			Display: m.Email,
		})
	}
	return scim.Group{
		Schemas:     []string{scim.SchemaGroup},
		ID:          strconv.FormatInt(g.Team.ID, 10),
		DisplayName: g.Team.Slug,
		Members:     members,
		Meta:        scim.Meta{ResourceType: "Group"},
	}
}

// ToSCIMGroups maps a page of teams.
func ToSCIMGroups(groups []entities.Group) []scim.Group {
	out := make([]scim.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, ToSCIMGroup(g))
	}
	return out
}
