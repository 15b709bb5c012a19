package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"recuring/internal/model"
	"recuring/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, messageResponse{Message: msg})
}

// respondError maps service errors to status codes. Unknown errors are
// logged and reported as 500 without details.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respondMessage(w, http.StatusBadRequest, describeValidation(verrs))
	case errors.Is(err, model.ErrValidation):
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			respondMessage(w, http.StatusBadRequest, verr.Error())
			return
		}
		respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrConflict):
		respondMessage(w, http.StatusConflict, "Username or email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrUnauthenticated):
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
	default:
		log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be YYYY-MM-DD", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return model.NewValidationError("body", "is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewValidationError("body", "must be valid JSON")
	}
	return nil
}
