package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func request(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"front_desk"},
	})
	c, _ := request(token)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	var gotID string
	var gotRoles []string
	err := mw(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "user-1" {
		t.Errorf("user id = %q, want user-1", gotID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "front_desk" {
		t.Errorf("roles = %v, want [front_desk]", gotRoles)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	c, _ := request("")
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	signed, _ := token.SignedString([]byte("other-key"))
	c, _ := request(signed)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	c, _ := request(token)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		roles    []string
		required []string
		wantCode int
	}{
		{"matching role", []string{"front_desk"}, []string{"front_desk"}, 0},
		{"admin passes everything", []string{"admin"}, []string{"doctor"}, 0},
		{"missing role", []string{"front_desk"}, []string{"doctor"}, http.StatusForbidden},
		{"no roles", nil, []string{"doctor"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := signToken(t, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "u",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				Roles: tc.roles,
			})
			c, _ := request(token)

			chain := JWTMiddleware(JWTConfig{SigningKey: testKey})(
				RequireRole(tc.required...)(func(c echo.Context) error { return nil }))
			err := chain(c)

			if tc.wantCode == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tc.wantCode {
				t.Errorf("expected %d, got %v", tc.wantCode, err)
			}
		})
	}
}
