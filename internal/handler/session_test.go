package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidSession(t *testing.T) {
	assert.True(t, validSession("3f2c1a9e-5b7d-4c1e-9a2b-1234567890ab"))
	assert.True(t, validSession("abc_DEF-123"))
	assert.False(t, validSession(""))
	assert.False(t, validSession("has space"))
	assert.False(t, validSession("semi;colon"))
	assert.False(t, validSession(strings.Repeat("a", 65)))
}

func TestCartSession_HeaderWinsOverCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(CartSessionHeader, "from-header")
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "from-cookie"})
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "from-header", cartSessionFrom(c))
}

func TestEnsureCartSession_IssuesCookieAndHeader(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/cart/items", nil), rec)

	s := ensureCartSession(c)
	assert.NotEmpty(t, s)
	assert.Equal(t, s, rec.Header().Get(CartSessionHeader))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), CartSessionCookie+"="+s)
}
