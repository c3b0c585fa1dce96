package http

import (
	"net/http"
	"strings"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/labstack/echo/v4"
)

// The gateway verifies tokens and forwards the caller in these headers.
const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserRoles = "X-User-Roles"

	principalKey = "principal"
)

func requirePrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(headerUserID))
		if id == "" {
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "missing " + headerUserID + " header",
			}
		}

		var roles []entity.Role
		for _, r := range strings.Split(c.Request().Header.Get(headerUserRoles), ",") {
			if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
				roles = append(roles, entity.Role(r))
			}
		}

		c.Set(principalKey, entity.Principal{
			ID:    id,
			Email: strings.TrimSpace(c.Request().Header.Get(headerUserEmail)),
			Roles: roles,
		})

		return next(c)
	}
}

func principalFrom(c echo.Context) entity.Principal {
	p, _ := c.Get(principalKey).(entity.Principal)
	return p
}
