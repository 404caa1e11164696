// Package httputil provides HTTP response helpers and shared middleware.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Envelope is the uniform response shape: a success flag, optional payload,
// optional human-readable message. Absence of data means no data, not an
// error signal.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success writes a successful response with optional payload.
func Success(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

// SuccessMessage writes a successful response with payload and message.
func SuccessMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// Error writes a failure response with a human-readable message.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

// ValidationError writes a 400 response for malformed input.
// For validator.ValidationErrors the first failing field is named in the message.
func ValidationError(w http.ResponseWriter, err error) {
	message := "validation error"
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		message = "validation error: field " + e.Field() + " failed on " + e.Tag()
	} else if err != nil {
		message = "validation error: " + err.Error()
	}
	Error(w, http.StatusBadRequest, message)
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// JSON writes a raw JSON response without the envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
