package handlers_fiber

import (
	"net/http"

	"key-transactions-service/internal/api"
	"key-transactions-service/internal/mapper"
	"key-transactions-service/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostKeyTransactions marks a transaction as key. With a team field the mark
// applies per team on the project, otherwise it is owned by the calling user.
// Responds 201 when anything was created, 204 when every record already
// existed.
func (h *Handler) PostKeyTransactions(c *fiber.Ctx) error {
	var body api.KeyTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(api.Detail{Detail: "invalid body"})
	}
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	var created bool
	if len(body.Team) > 0 {
		created, err = h.uc.AddTeamKeyTransactions(c.Context(), userID, org, projects, body.Transaction, body.Team)
	} else {
		created, err = h.uc.AddKeyTransaction(c.Context(), userID, org, projects, body.Transaction)
	}
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return c.SendStatus(http.StatusCreated)
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteKeyTransactions unmarks a transaction, with the same team/legacy split
// as creation. Always 204 on success, records that never existed included.
func (h *Handler) DeleteKeyTransactions(c *fiber.Ctx) error {
	var body api.KeyTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(api.Detail{Detail: "invalid body"})
	}
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	if len(body.Team) > 0 {
		err = h.uc.RemoveTeamKeyTransactions(c.Context(), userID, org, projects, body.Transaction, body.Team)
	} else {
		err = h.uc.RemoveKeyTransaction(c.Context(), userID, org, projects, body.Transaction)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetKeyTransactions returns which of the requested teams marked the
// transaction as key on the project.
func (h *Handler) GetKeyTransactions(c *fiber.Ctx) error {
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	teamIDs, err := h.uc.TeamsKeyed(c.Context(), userID, org, projects, c.Query("transaction"), queryStrings(c, "team"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToTeamKeyedEntries(teamIDs))
}

// GetIsKeyTransactions reports whether the calling user marked the transaction.
func (h *Handler) GetIsKeyTransactions(c *fiber.Ctx) error {
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	isKey, err := h.uc.IsKeyTransaction(c.Context(), userID, org, projects, c.Query("transaction"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(api.IsKeyResponse{IsKey: isKey})
}

// GetLegacyKeyTransactionsCount counts user-owned key transactions on the
// requested projects across every owner.
func (h *Handler) GetLegacyKeyTransactionsCount(c *fiber.Ctx) error {
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	count, err := h.uc.CountKeyed(c.Context(), userID, org, projects)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(api.KeyedCountResponse{Keyed: count})
}
