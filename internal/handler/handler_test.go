package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
	return req.WithContext(ctx)
}

func TestCreateDebtRequiresAuthContext(t *testing.T) {
	h := NewHandler(nil)
	req := httptest.NewRequest("POST", "/api/debts", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.CreateDebt(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestCreateDebtRejectsInvalidJSON(t *testing.T) {
	h := NewHandler(nil)
	rr := httptest.NewRecorder()
	h.CreateDebt(rr, authedRequest("POST", "/api/debts", `{"customer_name":`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateDebtRejectsMissingFields(t *testing.T) {
	h := NewHandler(nil)
	rr := httptest.NewRecorder()
	h.CreateDebt(rr, authedRequest("POST", "/api/debts", `{"amount": 100}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRecordPaymentRejectsBadInput(t *testing.T) {
	h := NewHandler(nil)
	tests := []struct {
		name string
		id   string
		body string
	}{
		{"negative amount", "3", `{"amount": -5, "payment_method": "cash"}`},
		{"zero amount", "3", `{"amount": 0, "payment_method": "cash"}`},
		{"unknown method", "3", `{"amount": 10, "payment_method": "barter"}`},
		{"bad date", "3", `{"amount": 10, "payment_method": "cash", "payment_date": "15/09/2026"}`},
		{"non-numeric id", "abc", `{"amount": 10, "payment_method": "cash"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(authedRequest("POST", "/api/debts/"+tt.id+"/payments", tt.body),
				map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()
			h.RecordPayment(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestIncreaseDebtRejectsMissingAmount(t *testing.T) {
	h := NewHandler(nil)
	req := mux.SetURLVars(authedRequest("POST", "/api/debts/3/increase", `{"reason": "more goods"}`),
		map[string]string{"id": "3"})
	rr := httptest.NewRecorder()
	h.IncreaseDebt(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdatePasswordRequiresToken(t *testing.T) {
	h := NewHandler(nil)
	req := httptest.NewRequest("POST", "/api/auth/update-password", strings.NewReader(`{"password": "new-password"}`))
	rr := httptest.NewRecorder()
	h.UpdatePassword(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	h := NewHandler(nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validationf("amount", "must be greater than 0"), http.StatusBadRequest},
		{"auth", apperr.Authf("invalid credentials"), http.StatusUnauthorized},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("outer"), apperr.ErrNotFound), http.StatusNotFound},
		{"persistence", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.respondError(rr, tt.err)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q, want application/json", ct)
			}
		})
	}
}

func TestLogoutIsStateless(t *testing.T) {
	h := NewHandler(nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest("POST", "/api/auth/logout", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}
