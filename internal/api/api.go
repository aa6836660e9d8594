// Package api holds the transport DTOs and route table for the HTTP surface.
package api

import (
	"github.com/gofiber/fiber/v2"
)

// KeyTransactionRequest is the body of key-transaction writes. Team carries
// team ids for the team-scoped kind; absent or empty means the legacy kind
// owned by the calling user.
type KeyTransactionRequest struct {
	Transaction string  `json:"transaction"`
	Team        []int64 `json:"team,omitempty"`
}

// TeamKeyedEntry is one element of the keyed-teams response.
type TeamKeyedEntry struct {
	Team string `json:"team"`
}

// KeyedTransaction is one keyed entry within a team listing row.
type KeyedTransaction struct {
	ProjectID   string `json:"project_id"`
	Transaction string `json:"transaction"`
}

// TeamKeyTransactions is one row of the key-transactions listing. Count spans
// every project the team is linked to, while Keyed holds only the entries on
// the requested projects.
type TeamKeyTransactions struct {
	Team  string             `json:"team"`
	Count int                `json:"count"`
	Keyed []KeyedTransaction `json:"keyed"`
}

// IsKeyResponse answers whether the caller keyed the transaction.
type IsKeyResponse struct {
	IsKey bool `json:"isKey"`
}

// KeyedCountResponse carries the legacy keyed-transaction count.
type KeyedCountResponse struct {
	Keyed int64 `json:"keyed"`
}

// Detail is the detail-level error body.
type Detail struct {
	Detail string `json:"detail"`
}

// FieldErrors is the field-scoped validation error body.
type FieldErrors map[string][]string

// SCIMUserRequest is the body of SCIM user provisioning requests. UserName is
// the member's email address.
type SCIMUserRequest struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName,omitempty"`
	ExternalID  string `json:"externalId,omitempty"`
}

// ServerInterface lists the handlers the route table binds.
type ServerInterface interface {
	GetKeyTransactions(c *fiber.Ctx) error
	PostKeyTransactions(c *fiber.Ctx) error
	DeleteKeyTransactions(c *fiber.Ctx) error
	GetKeyTransactionsList(c *fiber.Ctx) error
	GetIsKeyTransactions(c *fiber.Ctx) error
	GetLegacyKeyTransactionsCount(c *fiber.Ctx) error

	GetSCIMSchemas(c *fiber.Ctx) error
	GetSCIMUsers(c *fiber.Ctx) error
	PostSCIMUsers(c *fiber.Ctx) error
	GetSCIMUser(c *fiber.Ctx) error
	DeleteSCIMUser(c *fiber.Ctx) error
	GetSCIMGroups(c *fiber.Ctx) error
	GetSCIMGroup(c *fiber.Ctx) error
}

// RegisterHandlers binds the route table to a fiber router.
func RegisterHandlers(router fiber.Router, h ServerInterface) {
	org := router.Group("/api/0/organizations/:organization")
	org.Get("/key-transactions", h.GetKeyTransactions)
	org.Post("/key-transactions", h.PostKeyTransactions)
	org.Delete("/key-transactions", h.DeleteKeyTransactions)
	org.Get("/key-transactions-list", h.GetKeyTransactionsList)
	org.Get("/is-key-transactions", h.GetIsKeyTransactions)
	org.Get("/legacy-key-transactions-count", h.GetLegacyKeyTransactionsCount)

	scimGroup := router.Group("/scim/v2/organizations/:organization")
	scimGroup.Get("/Schemas", h.GetSCIMSchemas)
	scimGroup.Get("/Users", h.GetSCIMUsers)
	scimGroup.Post("/Users", h.PostSCIMUsers)
	scimGroup.Get("/Users/:member", h.GetSCIMUser)
	scimGroup.Delete("/Users/:member", h.DeleteSCIMUser)
	scimGroup.Get("/Groups", h.GetSCIMGroups)
	scimGroup.Get("/Groups/:team", h.GetSCIMGroup)
}
