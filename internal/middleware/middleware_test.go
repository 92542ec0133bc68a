package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func setupAuthRouter(a *Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", a.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString(UsernameKey)})
	})
	return r
}

func TestAuthenticator(t *testing.T) {
	t.Run("valid_token", func(t *testing.T) {
		a := NewAuthenticator("test-secret", time.Hour)
		token, expiresAt, err := a.GenerateToken("alice")
		if err != nil {
			t.Fatal(err)
		}
		if time.Until(expiresAt) <= 0 {
			t.Error("expected expiry in the future")
		}

		rec := doRequest(setupAuthRouter(a), http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseBody(t, rec)["username"] != "alice" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"wrong_scheme", "Token abc"},
		{"garbage_token", "Bearer not-a-jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAuthenticator("test-secret", time.Hour)
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			rec := doRequest(setupAuthRouter(a), http.MethodGet, "/me", headers)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}

	t.Run("other_secret", func(t *testing.T) {
		token, _, _ := NewAuthenticator("one", time.Hour).GenerateToken("alice")
		if _, err := NewAuthenticator("two", time.Hour).ParseToken(token); err == nil {
			t.Error("expected token signed with another secret to be rejected")
		}
	})

	t.Run("expired", func(t *testing.T) {
		a := NewAuthenticator("test-secret", time.Minute)
		a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, _ := a.GenerateToken("alice")
		a.now = time.Now
		if _, err := a.ParseToken(token); err == nil {
			t.Error("expected expired token to be rejected")
		}
	})

	t.Run("revoked", func(t *testing.T) {
		a := NewAuthenticator("test-secret", time.Hour)
		token, _, _ := a.GenerateToken("alice")
		claims, err := a.ParseToken(token)
		if err != nil {
			t.Fatal(err)
		}

		a.Revoke(claims)
		if _, err := a.ParseToken(token); err == nil {
			t.Error("expected revoked token to be rejected")
		}

		other, _, _ := a.GenerateToken("alice")
		if _, err := a.ParseToken(other); err != nil {
			t.Errorf("revoking one token must not affect another: %v", err)
		}
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{"open_when_unconfigured", "", "", http.StatusOK},
		{"valid_key", "k1", "k1", http.StatusOK},
		{"wrong_key", "k1", "k2", http.StatusUnauthorized},
		{"missing_key", "k1", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/metrics", APIKeyMiddleware(tc.configured), func(c *gin.Context) { c.Status(http.StatusOK) })

			headers := map[string]string{}
			if tc.sent != "" {
				headers["X-API-Key"] = tc.sent
			}
			rec := doRequest(r, http.MethodGet, "/metrics", headers)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusUnauthorized && errorCode(t, rec) != "INVALID_API_KEY" {
				t.Errorf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.NoRoute(NotFound)
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrExpenseNotFound) })
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })

	rec := doRequest(r, http.MethodGet, "/app", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "EXPENSE_NOT_FOUND" {
		t.Errorf("unexpected app error response %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/plain", nil)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL_ERROR" {
		t.Errorf("unexpected plain error response %d %s", rec.Code, rec.Body.String())
	}
	if msg := parseBody(t, rec)["error"].(map[string]interface{})["message"]; msg == "db exploded" {
		t.Error("internal error details must not leak")
	}

	rec = doRequest(r, http.MethodGet, "/nowhere", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("unexpected no-route response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := doRequest(r, http.MethodGet, "/ping", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}

	const id = "0190b1c2-7d3e-7a4b-8c5d-6e7f8a9b0c1d"
	rec = doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": id})
	if rec.Header().Get("X-Request-ID") != id {
		t.Errorf("expected propagated request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}
