package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/internal/view"
	"github.com/itchan-dev/aurum/shared/logger"
	"github.com/itchan-dev/aurum/shared/utils"
)

// Page handlers mutate the session and redirect back to the page (post/redirect/get).

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	page := h.renderer.BuildPage(s, h.directory, h.directory.Members())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Execute(w, view.PageTemplate, page); err != nil {
		logger.Log.Error("failed to render page", "session_id", s.Id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) ComposePost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	if _, err := h.chat.Compose(s, r.PostFormValue("text")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) UploadPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	b, err := h.saveUpload(w, r, s)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.chat.Upload(s, b.Upload())
	redirectHome(w, r)
}

func (h *Handler) SelectChannelPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.SelectChannel(chi.URLParam(r, "channel"))
	redirectHome(w, r)
}

func (h *Handler) OpenDmPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.OpenDm(chi.URLParam(r, "peer"))
	redirectHome(w, r)
}

func (h *Handler) SendDmPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	if _, err := h.chat.SendDm(s, chi.URLParam(r, "peer"), r.PostFormValue("text")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) ToggleTabPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	tab, ok := session.ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		http.Error(w, "Unknown tab", http.StatusBadRequest)
		return
	}
	s.ToggleTab(tab)
	redirectHome(w, r)
}

func (h *Handler) ArmReplyPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := parseMessageId(chi.URLParam(r, "message"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	s.ArmReply(id)
	redirectHome(w, r)
}

func (h *Handler) ClearReplyPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.ClearReply()
	redirectHome(w, r)
}

// LoginPost sends the simulated magic link. A blank email leaves the modal as is.
func (h *Handler) LoginPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.signIn.Start(s, r.PostFormValue("email"), r.PostFormValue("name"))
	redirectHome(w, r)
}

func (h *Handler) OpenLoginPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.OpenLogin()
	redirectHome(w, r)
}

func (h *Handler) DismissLoginPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.DismissLogin()
	redirectHome(w, r)
}

func (h *Handler) LogoutPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	s.SignOut()
	redirectHome(w, r)
}

func (h *Handler) SettingsPost(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "action") {
	case "open":
		s.OpenSettings()
	case "close":
		s.CloseSettings()
	case "notifications":
		s.ToggleNotifications()
	case "compact":
		s.ToggleCompact()
	default:
		http.Error(w, "Unknown settings action", http.StatusBadRequest)
		return
	}
	redirectHome(w, r)
}
