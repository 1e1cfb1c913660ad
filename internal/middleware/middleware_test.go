package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/infra/auth"
	"storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	Actor string `json:"actor"`
	Role  string `json:"role"`
}

func mustMakeJWT(t *testing.T, secret string, sub string, role string, exp int64, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  exp,
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		role, _ := c.Get(middleware.CtxUserRoleKey).(string)
		return c.JSON(http.StatusOK, mwOKResponse{Actor: middleware.Actor(c), Role: role})
	}, mw...)
	return e
}

func TestAuthJWT_Unauthorized(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "bad scheme", header: "Token abc.def.ghi"},
		{name: "empty bearer", header: "Bearer   "},
		{name: "bad signature", header: "Bearer " + mustMakeJWT(t, "wrong-secret", "admin", "ADMIN", future, jwt.SigningMethodHS256)},
		{name: "wrong alg", header: "Bearer " + mustMakeJWT(t, testSecret, "admin", "ADMIN", future, jwt.SigningMethodHS512)},
		{name: "expired", header: "Bearer " + mustMakeJWT(t, testSecret, "admin", "ADMIN", time.Now().Add(-time.Minute).Unix(), jwt.SigningMethodHS256)},
		{name: "missing sub", header: "Bearer " + mustMakeJWT(t, testSecret, "", "ADMIN", future, jwt.SigningMethodHS256)},
		{name: "missing role", header: "Bearer " + mustMakeJWT(t, testSecret, "admin", "", future, jwt.SigningMethodHS256)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := protectedEcho(middleware.AuthJWT(testSecret))

			rec := runRequest(t, e, "/protected", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る
func TestAuthJWT_Success_SetsContext(t *testing.T) {
	issuer, err := auth.NewJWTIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	raw, _, err := issuer.Issue("farm-admin", "ADMIN", time.Now())
	require.NoError(t, err)

	e := protectedEcho(middleware.AuthJWT(testSecret))
	rec := runRequest(t, e, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "farm-admin", body.Actor)
	assert.Equal(t, "ADMIN", body.Role)
}

// ?token= は websocket の upgrade のときだけ
func TestAuthJWT_QueryTokenOnlyForWebsocket(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, "farm-admin", "ADMIN", time.Now().Add(time.Hour).Unix(), jwt.SigningMethodHS256)
	e := protectedEcho(middleware.AuthJWT(testSecret))

	rec := runRequest(t, e, "/protected?token="+raw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+raw, nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	t.Run("missing context", func(t *testing.T) {
		e := protectedEcho(middleware.AdminRoleGuard())
		rec := runRequest(t, e, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non admin", func(t *testing.T) {
		raw := mustMakeJWT(t, testSecret, "someone", "USER", future, jwt.SigningMethodHS256)
		e := protectedEcho(middleware.AuthJWT(testSecret), middleware.AdminRoleGuard())
		rec := runRequest(t, e, "/protected", "Bearer "+raw)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "admin only", decodeMWError(t, rec).Error)
	})

	t.Run("admin", func(t *testing.T) {
		raw := mustMakeJWT(t, testSecret, "farm-admin", "ADMIN", future, jwt.SigningMethodHS256)
		e := protectedEcho(middleware.AuthJWT(testSecret), middleware.AdminRoleGuard())
		rec := runRequest(t, e, "/protected", "Bearer "+raw)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(middleware.RequestLogger(logger))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	rec := runRequest(t, e, "/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/ok", line["path"])
	assert.Equal(t, float64(200), line["status"])

	buf.Reset()
	rec = runRequest(t, e, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
