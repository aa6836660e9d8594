package handlers_fiber

import (
	"errors"
	"net/http"
	"strconv"

	"key-transactions-service/internal/api"
	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/mapper"
	"key-transactions-service/internal/scim"

	"github.com/gofiber/fiber/v2"
)

// GetSCIMSchemas serves the static resource schema listing.
func (h *Handler) GetSCIMSchemas(c *fiber.Ctx) error {
	schemas, err := h.uc.Schemas(c.Context(), c.Params("organization"))
	if err != nil {
		return writeSCIMError(c, err, scim.ErrUserNotFound)
	}
	return c.Status(http.StatusOK).JSON(scim.NewListResponse(len(schemas), 1, len(schemas), schemas))
}

// GetSCIMUsers lists provisioned members, optionally filtered by userName.
func (h *Handler) GetSCIMUsers(c *fiber.Ctx) error {
	startIndex := c.QueryInt("startIndex", 1)
	count := c.QueryInt("count", scim.DefaultCount)

	members, total, err := h.uc.Members(c.Context(), c.Params("organization"), c.Query("filter"), startIndex, count)
	if err != nil {
		return writeSCIMError(c, err, scim.ErrUserNotFound)
	}
	return c.Status(http.StatusOK).JSON(scim.NewListResponse(int(total), startIndex, count, mapper.ToSCIMUsers(members)))
}

// GetSCIMUser fetches one provisioned member.
func (h *Handler) GetSCIMUser(c *fiber.Ctx) error {
	id, err := scimResourceID(c, "member")
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(scim.ErrUserNotFound)
	}
	member, err := h.uc.MemberByID(c.Context(), c.Params("organization"), id)
	if err != nil {
		return writeSCIMError(c, err, scim.ErrUserNotFound)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToSCIMUser(*member))
}

// PostSCIMUsers provisions a new member. An existing email conflicts with 409.
func (h *Handler) PostSCIMUsers(c *fiber.Ctx) error {
	var body api.SCIMUserRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(scim.NewError("invalid body"))
	}
	member, err := h.uc.CreateMember(c.Context(), c.Params("organization"), body.UserName, body.DisplayName, body.ExternalID)
	if err != nil {
		return writeSCIMError(c, err, scim.ErrUserNotFound)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToSCIMUser(*member))
}

// DeleteSCIMUser deprovisions a member.
func (h *Handler) DeleteSCIMUser(c *fiber.Ctx) error {
	id, err := scimResourceID(c, "member")
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(scim.ErrUserNotFound)
	}
	if err := h.uc.DeleteMember(c.Context(), c.Params("organization"), id); err != nil {
		return writeSCIMError(c, err, scim.ErrUserNotFound)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetSCIMGroups lists teams as SCIM Groups.
func (h *Handler) GetSCIMGroups(c *fiber.Ctx) error {
	startIndex := c.QueryInt("startIndex", 1)
	count := c.QueryInt("count", scim.DefaultCount)

	groups, total, err := h.uc.Groups(c.Context(), c.Params("organization"), startIndex, count)
	if err != nil {
		return writeSCIMError(c, err, scim.ErrGroupNotFound)
	}
	return c.Status(http.StatusOK).JSON(scim.NewListResponse(int(total), startIndex, count, mapper.ToSCIMGroups(groups)))
}

// GetSCIMGroup fetches one team as a SCIM Group.
func (h *Handler) GetSCIMGroup(c *fiber.Ctx) error {
	id, err := scimResourceID(c, "team")
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(scim.ErrGroupNotFound)
	}
	group, err := h.uc.GroupByID(c.Context(), c.Params("organization"), id)
	if err != nil {
		return writeSCIMError(c, err, scim.ErrGroupNotFound)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToSCIMGroup(*group))
}

func scimResourceID(c *fiber.Ctx, param string) (int64, error) {
	return strconv.ParseInt(c.Params(param), 10, 64)
}

// writeSCIMError renders domain errors as SCIM error bodies. notFound is the
// canned body matching the resource kind of the endpoint.
func writeSCIMError(c *fiber.Ctx, err error, notFound scim.Error) error {
	var validation *entities.ValidationError

	switch {
	case errors.Is(err, entities.ErrMemberNotFound), errors.Is(err, entities.ErrGroupNotFound):
		return c.Status(http.StatusNotFound).JSON(notFound)
	case errors.Is(err, entities.ErrMemberExists):
		return c.Status(http.StatusConflict).JSON(scim.ErrUserExists)
	case errors.Is(err, entities.ErrInvalidFilter):
		return c.Status(http.StatusBadRequest).JSON(scim.ErrInvalidFilter)
	case errors.As(err, &validation):
		return c.Status(http.StatusBadRequest).JSON(scim.NewError(validation.Message))
	case errors.Is(err, entities.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(api.Detail{Detail: "The requested resource does not exist"})
	default:
		return c.Status(http.StatusInternalServerError).JSON(scim.NewError("internal error"))
	}
}
