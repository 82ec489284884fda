package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookdeskhq/bookdesk/libs/auth"
)

const testSecret = "test-secret"

func testAuthHandler() *AuthHandler {
	return NewAuthHandler(nil, slog.Default(), testSecret)
}

func protectedRecorder(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var gotClient string
	h := testAuthHandler().RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			gotClient = claims.ClientID
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, &gotClient
}

func signTestToken(t *testing.T, clientID string) string {
	t.Helper()
	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:      "op-1",
		ClientID: clientID,
		Iat:      now.Unix(),
		Exp:      now.Add(time.Hour).Unix(),
	}, testSecret)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return token
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	h, _ := protectedRecorder(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_RejectsGarbageToken(t *testing.T) {
	h, _ := protectedRecorder(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_AcceptsValidTokenAndExposesClaims(t *testing.T) {
	h, gotClient := protectedRecorder(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "acme"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *gotClient != "acme" {
		t.Fatalf("expected claims client acme, got %q", *gotClient)
	}
}

func TestRequireAuth_RejectsCrossTenantQuery(t *testing.T) {
	h, gotClient := protectedRecorder(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?client=globex", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "acme"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if *gotClient != "" {
		t.Fatal("handler reached despite tenant mismatch")
	}
}

func TestRequireAuth_AllowsOwnTenantQuery(t *testing.T) {
	h, gotClient := protectedRecorder(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?client=acme", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "acme"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *gotClient != "acme" {
		t.Fatalf("expected claims client acme, got %q", *gotClient)
	}
}

func TestSameTenant(t *testing.T) {
	ctx := context.WithValue(context.Background(), claimsKey{}, &auth.Claims{ClientID: "acme"})
	if !sameTenant(ctx, "acme") {
		t.Fatal("own tenant rejected")
	}
	if sameTenant(ctx, "globex") {
		t.Fatal("foreign tenant accepted")
	}
	if sameTenant(context.Background(), "acme") {
		t.Fatal("missing claims accepted")
	}
}

func TestHashPassword_VerifiesWithBcrypt(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
}
