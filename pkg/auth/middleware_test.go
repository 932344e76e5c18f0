package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

// mockValidator implements TokenValidator for tests.
type mockValidator struct {
	claims *Claims
	err    error
}

func (m *mockValidator) ValidateToken(_ string) (*Claims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func TestResolveUser_NoTokenVerificationDisabled(t *testing.T) {
	mw := NewMiddleware(&mockValidator{}, false, zap.NewNop())

	var gotUser string
	handler := mw.ResolveUser(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotUser != AnonymousUser {
		t.Errorf("expected anonymous user, got %q", gotUser)
	}
}

func TestResolveUser_NoTokenVerificationEnabled(t *testing.T) {
	mw := NewMiddleware(&mockValidator{}, true, zap.NewNop())

	called := false
	handler := mw.ResolveUser(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Error("handler must not run without a token")
	}
}

func TestResolveUser_ValidToken(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "user-42"
	mw := NewMiddleware(&mockValidator{claims: claims}, true, zap.NewNop())

	var gotUser string
	handler := mw.ResolveUser(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotUser != "user-42" {
		t.Errorf("expected user-42, got %q", gotUser)
	}
}

func TestResolveUser_InvalidToken(t *testing.T) {
	mw := NewMiddleware(&mockValidator{err: errors.New("expired")}, true, zap.NewNop())

	handler := mw.ResolveUser(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an invalid token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(req); got != tt.expected {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.expected)
		}
	}
}
