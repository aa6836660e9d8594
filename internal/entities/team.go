// Package entities contains core business entities.
package entities

// Team belongs to one organization and gains project visibility through links.
type Team struct {
	ID             int64
	OrganizationID int64
	Slug           string
	Name           string
}

// Project belongs to one organization.
type Project struct {
	ID             int64
	OrganizationID int64
	Slug           string
	Name           string
}

// ProjectTeam is the join entity granting a team access to a project.
// Unique per (project, team); created and destroyed by team management,
// read-only here.
type ProjectTeam struct {
	ID        int64
	ProjectID int64
	TeamID    int64
}
