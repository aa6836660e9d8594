// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound signals a missing resource or a disabled feature.
	ErrNotFound = errors.New("not found")
	// ErrProjectAccess signals a project outside the caller's organization.
	ErrProjectAccess = errors.New("project access denied")
	// ErrTooManyProjects signals more than one project on a key transaction write.
	ErrTooManyProjects = errors.New("only 1 project per key transaction")
	// ErrTeamNotLinked signals a team with no link to the target project.
	ErrTeamNotLinked = errors.New("team does not have access to project")
	// ErrMemberExists signals a provisioning conflict on an existing member.
	ErrMemberExists = errors.New("member exists")
	// ErrMemberNotFound signals a missing provisioned member.
	ErrMemberNotFound = errors.New("member not found")
	// ErrGroupNotFound signals a missing provisioning group.
	ErrGroupNotFound = errors.New("group not found")
	// ErrQuotaExceeded signals a key transaction ceiling violation.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrPermissionDenied signals the caller is not a member of a requested team.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidFilter signals an unsupported provisioning filter expression.
	ErrInvalidFilter = errors.New("invalid filter")
)

// ValidationError is a field-scoped input failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// PermissionError names the team the caller cannot access.
type PermissionError struct {
	TeamName string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("You do not have permission to access %s", e.TeamName)
}

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// QuotaError carries the ceiling a batch would have exceeded.
type QuotaError struct {
	Ceiling int
	TeamID  int64 // zero for the legacy per-owner ceiling
}

func (e *QuotaError) Error() string {
	if e.TeamID != 0 {
		return fmt.Sprintf("At most %d Key Transactions can be added for a team", e.Ceiling)
	}
	return fmt.Sprintf("At most %d Key Transactions can be added", e.Ceiling)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }
