package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success    bool     `json:"success"`
	Data       any      `json:"data,omitempty"`
	Error      string   `json:"error,omitempty"`
	Message    string   `json:"message,omitempty"`
	Details    []string `json:"details,omitempty"`
	Pagination any      `json:"pagination,omitempty"`
	Filters    any      `json:"filters,omitempty"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondData writes a successful envelope carrying data.
func RespondData(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	RespondJSON(w, logger, status, Envelope{Success: true, Data: data})
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, Envelope{Success: false, Error: message})
}

// RespondValidation writes a 400 envelope listing every rejected field.
func RespondValidation(w http.ResponseWriter, logger *slog.Logger, details []string) {
	RespondJSON(w, logger, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "Invalid input data",
		Details: details,
	})
}

// RespondInternal writes a 500 envelope titled title. The cause is only included when expose is true.
func RespondInternal(w http.ResponseWriter, logger *slog.Logger, title string, err error, expose bool) {
	body := Envelope{Success: false, Error: title}
	if expose && err != nil {
		body.Message = err.Error()
	}
	RespondJSON(w, logger, http.StatusInternalServerError, body)
}

// ParseID extracts and validates the ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil || id <= 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return 0, false
	}
	return id, true
}
