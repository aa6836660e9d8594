package handlers_fiber

import (
	"errors"
	"net/http"
	"strconv"

	"key-transactions-service/internal/api"
	"key-transactions-service/internal/entities"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	var validation *entities.ValidationError
	var permission *entities.PermissionError
	var quota *entities.QuotaError

	switch {
	case errors.As(err, &validation):
		return c.Status(http.StatusBadRequest).JSON(api.FieldErrors{
			validation.Field: {validation.Message},
		})
	case errors.As(err, &permission):
		return c.Status(http.StatusBadRequest).JSON(api.FieldErrors{
			"team": {permission.Error()},
		})
	case errors.As(err, &quota):
		return c.Status(http.StatusBadRequest).JSON(api.FieldErrors{
			"non_field_errors": {quota.Error()},
		})
	case errors.Is(err, entities.ErrTooManyProjects):
		return c.Status(http.StatusBadRequest).JSON(api.Detail{Detail: "Only 1 project per Key Transaction"})
	case errors.Is(err, entities.ErrTeamNotLinked):
		return c.Status(http.StatusBadRequest).JSON(api.Detail{Detail: "Team does not have access to project"})
	case errors.Is(err, entities.ErrProjectAccess):
		return c.Status(http.StatusForbidden).JSON(api.Detail{Detail: "You do not have permission to perform this action."})
	case errors.Is(err, entities.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(api.Detail{Detail: "The requested resource does not exist"})
	case errors.Is(err, entities.ErrInvalidArgument):
		return c.Status(http.StatusBadRequest).JSON(api.Detail{Detail: err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(api.Detail{Detail: "internal error"})
	}
}

// queryInts collects every occurrence of an integer query parameter, e.g.
// ?project=1&project=2.
func queryInts(c *fiber.Ctx, key string) ([]int64, error) {
	raw := c.Context().QueryArgs().PeekMulti(key)
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, &entities.ValidationError{Field: key, Message: "Invalid " + key + " parameter."}
		}
		out = append(out, id)
	}
	return out, nil
}

// queryStrings collects every occurrence of a query parameter.
func queryStrings(c *fiber.Ctx, key string) []string {
	raw := c.Context().QueryArgs().PeekMulti(key)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, string(v))
	}
	return out
}
