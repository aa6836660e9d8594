package domain

import (
	"context"
	"regexp"
	"strings"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/scim"
)

// userNameFilter matches the only SCIM filter expression the service accepts,
// an exact userName comparison: userName eq "someone@example.com".
var userNameFilter = regexp.MustCompile(`^userName eq "([^"]+)"$`)

// Schemas returns the static SCIM resource schemas served by the provisioning
// surface.
func (u *Usecase) Schemas(ctx context.Context, orgSlug string) ([]scim.ResourceSchema, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning); err != nil {
		return nil, err
	}
	return scim.SchemaList, nil
}

// Members lists organization members for the SCIM Users endpoint. startIndex
// is 1-based per the SCIM protocol; filter narrows to an exact userName match.
func (u *Usecase) Members(ctx context.Context, orgSlug, filter string, startIndex, count int) ([]entities.OrgMember, int64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return nil, 0, err
	}

	email := ""
	if filter != "" {
		m := userNameFilter.FindStringSubmatch(filter)
		if m == nil {
			return nil, 0, entities.ErrInvalidFilter
		}
		email = m[1]
	}

	offset, limit := scimWindow(startIndex, count)
	return u.repo.Members(ctx, org.ID, email, offset, limit)
}

// MemberByID fetches one member for the SCIM Users/:id endpoint.
func (u *Usecase) MemberByID(ctx context.Context, orgSlug string, id int64) (*entities.OrgMember, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return nil, err
	}
	return u.repo.MemberByID(ctx, org.ID, id)
}

// CreateMember provisions a new organization member from a SCIM User. The
// userName doubles as the email address.
func (u *Usecase) CreateMember(ctx context.Context, orgSlug, email, displayName, externalID string) (*entities.OrgMember, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &entities.ValidationError{Field: "userName", Message: "This field is required."}
	}

	member, err := u.repo.CreateMember(ctx, entities.OrgMember{
		OrganizationID: org.ID,
		Email:          strings.ToLower(email),
		DisplayName:    displayName,
		SCIMExternalID: externalID,
	})
	if err != nil {
		u.log.Errorw("failed to provision member", "org", orgSlug, "error", err)
		return nil, err
	}
	return member, nil
}

// DeleteMember deprovisions a member.
func (u *Usecase) DeleteMember(ctx context.Context, orgSlug string, id int64) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return err
	}
	return u.repo.DeleteMember(ctx, org.ID, id)
}

// Groups lists organization teams as SCIM Groups.
func (u *Usecase) Groups(ctx context.Context, orgSlug string, startIndex, count int) ([]entities.Group, int64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return nil, 0, err
	}
	offset, limit := scimWindow(startIndex, count)
	return u.repo.Groups(ctx, org.ID, offset, limit)
}

// GroupByID fetches one team as a SCIM Group.
func (u *Usecase) GroupByID(ctx context.Context, orgSlug string, id int64) (*entities.Group, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	org, err := u.orgWithFeatures(ctx, orgSlug, entities.FeatureSCIMProvisioning)
	if err != nil {
		return nil, err
	}
	return u.repo.GroupByID(ctx, org.ID, id)
}

// scimWindow converts SCIM's 1-based startIndex and count into an offset
// window. Per RFC 7644 a negative count means zero, and zero returns no
// resources while totalResults is still reported.
func scimWindow(startIndex, count int) (offset, limit int) {
	if startIndex < 1 {
		startIndex = 1
	}
	if count < 0 {
		count = 0
	}
	if count > scim.DefaultCount {
		count = scim.DefaultCount
	}
	return startIndex - 1, count
}
