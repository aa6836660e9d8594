// Package entities contains core business entities.
package entities

// OrgMember is an organization membership record. SCIM Users map onto it.
type OrgMember struct {
	ID             int64
	OrganizationID int64
	UserID         int64
	Email          string
	DisplayName    string
	SCIMExternalID string
}

// Group is a team together with its provisioned members, the SCIM Group view.
type Group struct {
	Team    Team
	Members []OrgMember
}
