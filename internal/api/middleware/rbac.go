package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// RBAC rejects requests whose token role is not in the allowed set. It is a
// coarse route-level gate; the per-record tier policy still runs in the
// services behind it.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
