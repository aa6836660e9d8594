// Package entities contains core business entities.
package entities

// Feature flags gating the API surfaces.
const (
	FeaturePerformanceView     = "performance-view"
	FeatureTeamKeyTransactions = "team-key-transactions"
	FeatureSCIMProvisioning    = "scim-provisioning"
)

// Organization is the tenant owning all records in this service.
type Organization struct {
	ID       int64
	Slug     string
	Name     string
	Features []string
}

// HasFeature reports whether a capability is enabled for the organization.
func (o *Organization) HasFeature(name string) bool {
	for _, f := range o.Features {
		if f == name {
			return true
		}
	}
	return false
}
