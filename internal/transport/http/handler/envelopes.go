package handler

import (
	"encoding/json"
	"net/http"
)

// User-facing response strings. The product UI is Russian-only, so these
// are literal rather than localized.
const (
	msgCodeSent          = "Код отправлен на email"
	msgInvalidEmail      = "Некорректный email"
	msgEmailCodeRequired = "Email и код обязательны"
	msgInvalidCode       = "Неверный или истекший код"
	msgUnknownAction     = "Unknown action"
	msgMethodNotAllowed  = "Method not allowed"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserEnvelope wraps successful verification responses.
type UserEnvelope struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
}

// UserPayload is the authenticated identity returned to the client.
type UserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
