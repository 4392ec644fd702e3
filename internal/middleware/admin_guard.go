package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard rejects any requester whose token role is not admin. It runs
// after JWTMiddleware, which is what populates the role.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access only"})
		}
		return next(c)
	}
}
