// Package quota enforces the fixed key transaction ceilings.
package quota

import "key-transactions-service/internal/entities"

// OwnerKind distinguishes the two owner scopes sharing the admit rule.
type OwnerKind uint8

const (
	// OwnerUser scopes the ceiling to one user across an organization.
	OwnerUser OwnerKind = iota + 1
	// OwnerTeam scopes the ceiling to one project-team link.
	OwnerTeam
)

// Owner identifies the scope a ceiling applies to.
type Owner struct {
	Kind OwnerKind
	ID   int64
}

// Limits holds the configured ceilings.
type Limits struct {
	// MaxKeyTransactions is the legacy per-owner ceiling across an organization.
	MaxKeyTransactions int
	// MaxTeamKeyTransactions is the ceiling per project-team link.
	MaxTeamKeyTransactions int
}

// DefaultLimits mirrors the product defaults.
var DefaultLimits = Limits{
	MaxKeyTransactions:     10,
	MaxTeamKeyTransactions: 100,
}

// Ceiling returns the limit applicable to the owner kind.
func (l Limits) Ceiling(kind OwnerKind) int {
	if kind == OwnerTeam {
		return l.MaxTeamKeyTransactions
	}
	return l.MaxKeyTransactions
}

// Admit decides whether a batch of newCandidates records may be added on top
// of existing ones. Admission is all or nothing: if the full batch would pass
// the ceiling the whole batch is rejected. Candidates that already exist must
// be excluded by the caller before admission, duplicates never count.
func Admit(owner Owner, existing, newCandidates int, limits Limits) error {
	if newCandidates == 0 {
		return nil
	}
	ceiling := limits.Ceiling(owner.Kind)
	if existing+newCandidates > ceiling {
		qe := &entities.QuotaError{Ceiling: ceiling}
		if owner.Kind == OwnerTeam {
			qe.TeamID = owner.ID
		}
		return qe
	}
	return nil
}
