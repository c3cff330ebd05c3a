package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// StatusFor maps the error taxonomy onto HTTP statuses
func StatusFor(err error) int {
	switch {
	case contracts.IsInputError(err):
		return http.StatusBadRequest
	case contracts.IsConfigError(err):
		return http.StatusServiceUnavailable
	case contracts.IsDataQualityError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure writes err with its mapped status; internal errors are not echoed
func respondFailure(w http.ResponseWriter, log *logger.Logger, err error, msg string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error(msg)
		respondError(w, status, msg)
		return
	}
	log.WithError(err).Warn(msg)
	respondError(w, status, err.Error())
}
