package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"
	cartSessionMaxLen = 64
	cartCookieMaxAge  = 30 * 24 * time.Hour
)

// ヘッダ優先、無ければcookie
func cartSessionFrom(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(CartSessionHeader)); validSession(v) {
		return v
	}
	if ck, err := c.Cookie(CartSessionCookie); err == nil && validSession(ck.Value) {
		return ck.Value
	}
	return ""
}

// 無ければ発行してcookieとヘッダで返す
func ensureCartSession(c echo.Context) string {
	if s := cartSessionFrom(c); s != "" {
		return s
	}
	s := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     CartSessionCookie,
		Value:    s,
		Path:     "/",
		MaxAge:   int(cartCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set(CartSessionHeader, s)
	return s
}

func validSession(s string) bool {
	if s == "" || len(s) > cartSessionMaxLen {
		return false
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
