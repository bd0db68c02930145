package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/application/auth"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
)

// AuthHandler serves the single login endpoint.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

type authRequest struct {
	Action string `json:"action"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

// Action dispatches on the action field of the request body. The protocol
// is a single POST endpoint so browser clients only ever need one URL.
func (h *AuthHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			// Missing body behaves like an empty one.
			writeError(w, http.StatusBadRequest, msgUnknownAction)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch req.Action {
	case "request_code":
		h.requestCode(w, r, req)
	case "verify_code":
		h.verifyCode(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, msgUnknownAction)
	}
}

func (h *AuthHandler) requestCode(w http.ResponseWriter, r *http.Request, req authRequest) {
	if err := h.svc.RequestCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, msgInvalidEmail)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: msgCodeSent})
}

func (h *AuthHandler) verifyCode(w http.ResponseWriter, r *http.Request, req authRequest) {
	u, err := h.svc.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, msgEmailCodeRequired)
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, msgInvalidCode)
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{
		Success: true,
		User:    UserPayload{ID: u.UserID, Email: u.Email},
	})
}

// MethodNotAllowed is the router-level fallback for unsupported methods.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
