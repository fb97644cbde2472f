package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arvik-ai/runtime-bridge/internal/store"
)

func newTestAuthenticator(t *testing.T, required bool) *Authenticator {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return NewAuthenticator(s, required)
}

func TestGenerateAndVerifyKey(t *testing.T) {
	a := newTestAuthenticator(t, true)
	ctx := context.Background()

	key, record, err := a.GenerateKey(ctx, "ci")
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}
	if !strings.HasPrefix(key, "sk-") {
		t.Fatalf("unexpected key format: %q", key)
	}
	if record.Prefix != key[:7] {
		t.Fatalf("prefix mismatch: %q vs %q", record.Prefix, key[:7])
	}

	got, ok := a.Verify(ctx, key)
	if !ok {
		t.Fatalf("expected key to verify")
	}
	if got.ID != record.ID {
		t.Fatalf("record mismatch: %q vs %q", got.ID, record.ID)
	}

	if _, ok := a.Verify(ctx, "sk-0000000000"); ok {
		t.Fatalf("expected unknown key to fail")
	}
	if _, ok := a.Verify(ctx, "not-a-key"); ok {
		t.Fatalf("expected malformed key to fail")
	}
}

func TestMiddlewareEnforcesKey(t *testing.T) {
	a := newTestAuthenticator(t, true)
	key, _, err := a.GenerateKey(context.Background(), "ci")
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/assignments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with valid key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/assignments", nil)
	req.Header.Set("Authorization", "Bearer sk-bogus")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus key, got %d", rec.Code)
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	a := newTestAuthenticator(t, false)
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/assignments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through when auth disabled, got %d", rec.Code)
	}
}

func TestAdminPassword(t *testing.T) {
	a := newTestAuthenticator(t, true)
	ctx := context.Background()

	// Nothing set yet: everything fails closed.
	if a.VerifyAdmin(ctx, "swordfish") {
		t.Fatalf("expected verify to fail before a password is set")
	}
	if err := a.SetAdminPassword(ctx, "  "); err == nil {
		t.Fatalf("expected blank password to be rejected")
	}

	if err := a.SetAdminPassword(ctx, "swordfish"); err != nil {
		t.Fatalf("SetAdminPassword error: %v", err)
	}
	if !a.VerifyAdmin(ctx, "swordfish") {
		t.Fatalf("expected password to verify")
	}
	if a.VerifyAdmin(ctx, "marlin") {
		t.Fatalf("expected wrong password to fail")
	}

	// Replacing the password invalidates the old one.
	if err := a.SetAdminPassword(ctx, "rotated"); err != nil {
		t.Fatalf("SetAdminPassword error: %v", err)
	}
	if a.VerifyAdmin(ctx, "swordfish") {
		t.Fatalf("expected replaced password to fail")
	}
	if !a.VerifyAdmin(ctx, "rotated") {
		t.Fatalf("expected rotated password to verify")
	}
}

func TestAdminMiddleware(t *testing.T) {
	a := newTestAuthenticator(t, true)
	if err := a.SetAdminPassword(context.Background(), "swordfish"); err != nil {
		t.Fatalf("SetAdminPassword error: %v", err)
	}

	handler := a.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/keys", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without password, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/keys", nil)
	req.Header.Set(AdminPasswordHeader, "guess")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong password, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/keys", nil)
	req.Header.Set(AdminPasswordHeader, "swordfish")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with valid password, got %d", rec.Code)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("expected wrong password to fail")
	}
}
