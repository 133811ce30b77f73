package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/service"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validate
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Persistence
// failures keep their message in the body, single attempt, no retry.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
		return
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": fieldErrs.Error()})
		return
	}
	var ae *apperr.AuthError
	if errors.As(err, &ae) {
		h.respond(w, http.StatusUnauthorized, map[string]string{"error": ae.Message})
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		h.respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	h.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// decode unmarshals the JSON body into v and runs struct validation
func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validationf("body", "invalid JSON: %v", err)
	}
	return h.validate.Struct(v)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf(name, "must be a positive integer")
	}
	return id, nil
}
