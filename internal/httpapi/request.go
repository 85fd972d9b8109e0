package httpapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NikhilSingh0745/mr-interview/internal/auth"
	"github.com/NikhilSingh0745/mr-interview/internal/validate"
)

// actorID resolves the acting user for audit stamps. The synthetic
// api-key principal carries no real user id and resolves to the zero
// id.
func actorID(c echo.Context) primitive.ObjectID {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// pathID validates the :id path parameter.
func pathID(c echo.Context, name string) (primitive.ObjectID, error) {
	v := validate.New()
	id := v.ObjectID(name, c.Param(name))
	if err := v.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// pageWindow validates page/pageSize query parameters.
func pageWindow(c echo.Context, v *validate.Violations) (page, pageSize int) {
	page = v.Page(queryInt(c, "page", v))
	pageSize = v.PageSize(queryInt(c, "pageSize", v))
	return page, pageSize
}

func queryInt(c echo.Context, name string, v *validate.Violations) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(name, "Must be a number")
		return 0
	}
	return n
}

// queryBool coerces an optional boolean query parameter.
func queryBool(c echo.Context, name string, v *validate.Violations) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		v.Add(name, "Must be true or false")
		return nil
	}
	return &b
}
