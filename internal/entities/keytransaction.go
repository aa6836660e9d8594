// Package entities contains core business entities.
package entities

// MaxTransactionLength bounds the transaction name on both record kinds.
const MaxTransactionLength = 200

// TeamKeyTransaction marks a transaction as key for a team within a project.
// Unique per (project-team link, transaction); never mutated in place.
type TeamKeyTransaction struct {
	ID             int64
	OrganizationID int64
	ProjectTeamID  int64
	Transaction    string
}

// KeyTransaction is the legacy user-owned record kind.
// Unique per (owner, project, transaction).
type KeyTransaction struct {
	ID             int64
	OrganizationID int64
	OwnerID        int64
	ProjectID      int64
	Transaction    string
}

// TeamKeyed is one keyed transaction rendered in a listing row.
type TeamKeyed struct {
	ProjectID   int64
	Transaction string
}

// TeamKeyedSummary is one row of the team key transaction listing: the team,
// its key transaction count across every project it is linked to, and the
// keyed entries restricted to the requested projects.
type TeamKeyedSummary struct {
	TeamID int64
	Count  int64
	Keyed  []TeamKeyed
}
