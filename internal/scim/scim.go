// Package scim holds SCIM 2.0 wire types and the static schema payloads
// served by the schema discovery endpoint.
package scim

// SCIM URNs.
const (
	MessageListResponse = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	MessageError        = "urn:ietf:params:scim:api:messages:2.0:Error"
	MessagePatchOp      = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
	SchemaUser          = "urn:ietf:params:scim:schemas:core:2.0:User"
	SchemaGroup         = "urn:ietf:params:scim:schemas:core:2.0:Group"
	SchemaSchema        = "urn:ietf:params:scim:schemas:core:2.0:Schema"
)

// DefaultCount is the default page size for SCIM list responses.
const DefaultCount = 100

// ListResponse is the SCIM list envelope. Resources keeps its SCIM
// capitalization on the wire.
type ListResponse struct {
	Schemas      []string `json:"schemas"`
	TotalResults int      `json:"totalResults"`
	StartIndex   int      `json:"startIndex"`
	ItemsPerPage int      `json:"itemsPerPage"`
	Resources    any      `json:"Resources"`
}

// NewListResponse wraps resources in the list envelope. startIndex is 1-based
// per RFC 7644.
func NewListResponse(total, startIndex, perPage int, resources any) ListResponse {
	return ListResponse{
		Schemas:      []string{MessageListResponse},
		TotalResults: total,
		StartIndex:   startIndex,
		ItemsPerPage: perPage,
		Resources:    resources,
	}
}

// Error is the SCIM error body.
type Error struct {
	Schemas  []string `json:"schemas"`
	Detail   string   `json:"detail,omitempty"`
	SCIMType string   `json:"scimType,omitempty"`
}

// NewError builds a SCIM error body with the given detail message.
func NewError(detail string) Error {
	return Error{Schemas: []string{MessageError}, Detail: detail}
}

// Canned error bodies.
var (
	ErrUserNotFound  = NewError("User not found.")
	ErrGroupNotFound = NewError("Group not found.")
	ErrUserExists    = NewError("User already exists in the database.")
	ErrInvalidFilter = Error{Schemas: []string{MessageError}, SCIMType: "invalidFilter"}
)

// Meta is the common resource metadata block.
type Meta struct {
	ResourceType string `json:"resourceType"`
	Location     string `json:"location,omitempty"`
}

// UserEmail is one entry of a User's emails attribute.
type UserEmail struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
	Type    string `json:"type"`
}

// User is the SCIM User resource, mapping to an organization member.
type User struct {
	Schemas    []string    `json:"schemas"`
	ID         string      `json:"id"`
	UserName   string      `json:"userName"`
	ExternalID string      `json:"externalId,omitempty"`
	Emails     []UserEmail `json:"emails"`
	Active     bool        `json:"active"`
	Meta       Meta        `json:"meta"`
}

// GroupMember is one entry of a Group's members attribute.
type GroupMember struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

// Group is the SCIM Group resource, mapping to a team.
type Group struct {
	Schemas     []string      `json:"schemas"`
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Members     []GroupMember `json:"members"`
	Meta        Meta          `json:"meta"`
}
