package handler

import (
	"net/http"

	"github.com/itchan-dev/aurum/shared/api"
	"github.com/itchan-dev/aurum/shared/utils"
)

// RequestMagicLink starts a simulated sign-in. The session signs in on its own
// once the delay passes; clients poll /v1/auth/me or watch the page.
func (h *Handler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	var body api.MagicLinkRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	p, started := h.signIn.Start(s, body.Email, body.Name)
	if !started {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, api.MagicLinkResponse{
		Message: "Magic link sent",
		Email:   p.Email,
		DelayMs: h.signInDelay.Milliseconds(),
	})
}

// CancelMagicLink dismisses the login, dropping any sign-in still in flight.
func (h *Handler) CancelMagicLink(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.DismissLogin()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	user := s.User()
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MeResponse{Identity: *user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.SignOut()
	utils.WriteJSON(w, http.StatusOK, api.LogoutResponse{Message: "Signed out"})
}
