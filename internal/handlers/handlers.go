package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coinmate/internal/logger"
	"coinmate/internal/services"
	"coinmate/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to statuses. Unknown errors are
// logged and reported as "<operation>_failed".
func respondServiceError(w http.ResponseWriter, operation string, err error) {
	var (
		validationErr *validator.Error
		authErr       *services.AuthenticationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  validationErr.Error(),
			"fields": validationErr.Fields,
		})
	case errors.As(err, &authErr), errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		respondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, services.ErrNoRateAvailable):
		respondError(w, http.StatusServiceUnavailable, services.ErrNoRateAvailable.Error())
	default:
		logger.WithField("operation", operation).Errorf("request failed: %v", err)
		respondError(w, http.StatusInternalServerError, operation+"_failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

// queryInt returns nil for an absent parameter and a validation error for a
// malformed one.
func queryInt(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, validator.Field(key, "Must be an integer")
	}
	return &value, nil
}

func queryString(r *http.Request, key string) *string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	return &raw
}
