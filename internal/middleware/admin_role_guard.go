package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 管理者ロール（JWTのrole）
const RoleAdmin = "ADMIN"

// AuthJWTの後ろに置く。roleが無ければ401、違えば403
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || got == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if got != role {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}

func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(RoleAdmin)
}
