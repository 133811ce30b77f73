package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/debttrack/debt-service/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthAcceptsValidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	var gotUserID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/debts", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "42", time.Hour))
	rr := httptest.NewRecorder()
	Auth(cfg)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUserID != 42 {
		t.Errorf("user id = %d, want 42", gotUserID)
	}
}

func TestAuthRejectsBadRequests(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached despite invalid credentials")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + signToken(t, "42", -time.Minute)},
		{"non-numeric subject", "Bearer " + signToken(t, "alice", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/debts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			Auth(cfg)(next).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "another-secret"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached despite forged token")
	})

	req := httptest.NewRequest("GET", "/api/debts", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signToken(t, "42", time.Hour)))
	rr := httptest.NewRecorder()
	Auth(cfg)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
