package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/itchan-dev/aurum/shared/api"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/utils"
)

func (h *Handler) GetChannels(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	channels := lo.Map(s.Store.Channels(), func(key domain.ChannelKey, _ int) api.ChannelResponse {
		return api.ChannelResponse{
			Key:      key,
			Label:    h.directory.ChannelLabel(key),
			Messages: s.Store.ChannelLen(key),
		}
	})
	utils.WriteJSON(w, http.StatusOK, api.ChannelListResponse{Channels: channels})
}

// GetChannelMessages lists a channel. Unknown channels are empty, not missing.
func (h *Handler) GetChannelMessages(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "channel")
	utils.WriteJSON(w, http.StatusOK, api.MessagesResponse{Key: key, Messages: s.Store.ChannelMessages(key)})
}

func (h *Handler) CreateChannelMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	var body api.SendMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.chat.SendToChannel(s, chi.URLParam(r, "channel"), body.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if msg == nil {
		// blank after trimming
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.MessageResponse{Message: *msg})
}

func (h *Handler) CreateChannelUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	b, err := h.saveUpload(w, r, s)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg := h.chat.UploadToChannel(s, chi.URLParam(r, "channel"), b.Upload())
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{Message: msg, Blob: blobResponse(b)})
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	parent, err := parseMessageId(chi.URLParam(r, "message"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.SendMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	reply, err := h.chat.Reply(s, chi.URLParam(r, "channel"), parent, body.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.ReplyResponse{Parent: parent, Reply: *reply})
}

func (h *Handler) GetDms(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.DmListResponse{Peers: s.Store.DmPeers()})
}

func (h *Handler) GetDmThread(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	peer := chi.URLParam(r, "peer")
	utils.WriteJSON(w, http.StatusOK, api.MessagesResponse{Key: peer, Messages: s.Store.DmThread(peer)})
}

func (h *Handler) CreateDmMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	var body api.SendMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.chat.SendDm(s, chi.URLParam(r, "peer"), body.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.MessageResponse{Message: *msg})
}

func (h *Handler) CreateDmUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	b, err := h.saveUpload(w, r, s)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg := h.chat.UploadToDm(s, chi.URLParam(r, "peer"), b.Upload())
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{Message: msg, Blob: blobResponse(b)})
}

func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.MemberListResponse{Members: h.directory.Members()})
}
