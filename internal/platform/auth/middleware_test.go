package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testConfig = Config{Secret: []byte("test-secret")}

func doRequest(t *testing.T, cfg Config, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestMiddleware_ValidToken(t *testing.T) {
	tok, err := IssueToken(testConfig, "user-1", []string{"staff"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, err := doRequest(t, testConfig, "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("got %d", rec.Code)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	_, err := doRequest(t, testConfig, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	_, err := doRequest(t, testConfig, "Token abc")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_WrongSecret(t *testing.T) {
	tok, err := IssueToken(Config{Secret: []byte("other-secret")}, "user-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = doRequest(t, testConfig, "Bearer "+tok)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	tok, err := IssueToken(testConfig, "user-1", nil, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = doRequest(t, testConfig, "Bearer "+tok)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_ContextValues(t *testing.T) {
	tok, err := IssueToken(testConfig, "user-7", []string{"staff", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(testConfig)(func(c echo.Context) error {
		ctx := c.Request().Context()
		if got := UserIDFromContext(ctx); got != "user-7" {
			t.Errorf("subject %q", got)
		}
		if got := RolesFromContext(ctx); len(got) != 2 || got[0] != "staff" {
			t.Errorf("roles %v", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_IssuerMismatch(t *testing.T) {
	issued := Config{Secret: []byte("test-secret"), Issuer: "medsched-dev"}
	tok, err := IssueToken(issued, "user-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verify := Config{Secret: []byte("test-secret"), Issuer: "medsched-prod"}
	_, err = doRequest(t, verify, "Bearer "+tok)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
