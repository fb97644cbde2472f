// Package auth gates the control API behind API keys. Keys are issued once
// in plaintext and stored as sha256 hashes; the admin password used for key
// management is stored as a bcrypt hash.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/arvik-ai/runtime-bridge/internal/store"
)

// Authenticator issues and verifies control API keys.
type Authenticator struct {
	Store *store.Store
	// Required disables the middleware check when false; key issuance still
	// works so operators can prepare keys before enforcing them.
	Required bool
}

// NewAuthenticator wires an authenticator to the persistent store.
func NewAuthenticator(s *store.Store, required bool) *Authenticator {
	return &Authenticator{Store: s, Required: required}
}

// GenerateKey creates a new API key, persists its hash, and returns the
// plaintext exactly once.
func (a *Authenticator) GenerateKey(ctx context.Context, name string) (string, store.APIKeyRecord, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", store.APIKeyRecord{}, err
	}
	key := "sk-" + hex.EncodeToString(raw)

	record := store.APIKeyRecord{
		ID:        hex.EncodeToString(raw[:8]),
		Name:      name,
		Prefix:    key[:7],
		HashedKey: hashKey(key),
		CreatedAt: time.Now(),
	}

	if err := a.Store.CreateAPIKey(ctx, record); err != nil {
		return "", store.APIKeyRecord{}, err
	}
	return key, record, nil
}

// Verify checks a plaintext key against the store and touches its last-used
// timestamp on success.
func (a *Authenticator) Verify(ctx context.Context, key string) (store.APIKeyRecord, bool) {
	if !strings.HasPrefix(key, "sk-") {
		return store.APIKeyRecord{}, false
	}
	record, ok, err := a.Store.GetAPIKeyByHash(ctx, hashKey(key))
	if err != nil || !ok {
		return store.APIKeyRecord{}, false
	}
	_ = a.Store.TouchAPIKey(ctx, record.ID, time.Now())
	return record, true
}

// Middleware enforces Bearer key auth on the wrapped handler when Required.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Required {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		key, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, ok := a.Verify(r.Context(), strings.TrimSpace(key)); !ok {
			http.Error(w, "invalid api key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminPasswordHeader carries the admin password on key-management requests.
const AdminPasswordHeader = "X-Admin-Password"

// SetAdminPassword bcrypt-hashes the password and stores it, replacing any
// previous one. Key management stays locked until a password is set.
func (a *Authenticator) SetAdminPassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("auth: admin password must not be empty")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return a.Store.SetAdminPasswordHash(ctx, hash)
}

// VerifyAdmin checks a password against the stored admin hash. It fails when
// no password has been set.
func (a *Authenticator) VerifyAdmin(ctx context.Context, password string) bool {
	hash, ok, err := a.Store.AdminPasswordHash(ctx)
	if err != nil || !ok {
		return false
	}
	return CheckPassword(hash, password)
}

// AdminMiddleware gates key-management routes behind the admin password,
// independent of API-key enforcement so operators can mint the first key.
func (a *Authenticator) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get(AdminPasswordHeader)
		if password == "" {
			http.Error(w, "missing admin password", http.StatusUnauthorized)
			return
		}
		if !a.VerifyAdmin(r.Context(), password) {
			http.Error(w, "invalid admin password", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashPassword bcrypt-hashes an admin password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword verifies a password against its stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
