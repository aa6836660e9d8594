package handlers_fiber

import (
	"errors"
	"net/http"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/mapper"
	"key-transactions-service/internal/pagination"
	"key-transactions-service/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetKeyTransactionsList renders the per-team key transaction listing with a
// Link pagination header. A team the caller cannot access fails the whole
// request with a bare string body, matching the upstream API shape.
func (h *Handler) GetKeyTransactionsList(c *fiber.Ctx) error {
	org := c.Params("organization")
	userID := middleware.UserID(c)
	projects, err := queryInts(c, "project")
	if err != nil {
		return writeError(c, err)
	}

	summaries, page, err := h.uc.ListTeamKeyTransactions(c.Context(), userID, org, projects, queryStrings(c, "team"), c.Query("cursor"))
	if err != nil {
		var permission *entities.PermissionError
		if errors.As(err, &permission) {
			return c.Status(http.StatusBadRequest).JSON("Error: " + permission.Error())
		}
		return writeError(c, err)
	}

	c.Set(fiber.HeaderLink, pagination.LinkHeader(c.BaseURL()+c.Path(), page))
	return c.Status(http.StatusOK).JSON(mapper.ToTeamKeyTransactionsList(summaries))
}
