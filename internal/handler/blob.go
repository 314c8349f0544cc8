package handler

import (
	"bytes"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/aurum/internal/storage/blob"
	"github.com/itchan-dev/aurum/shared/utils"
)

// ServeBlob returns an uploaded file to the session that uploaded it. Only
// images are shown inline; anything else downloads.
func (h *Handler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	b, err := h.blobs.Open(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if b.Owner != s.Id {
		utils.WriteErrorAndStatusCode(w, blob.ErrNotFound)
		return
	}

	disposition := "attachment"
	if strings.HasPrefix(b.MimeType, "image/") {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", b.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": b.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, b.Name, b.CreatedAt, bytes.NewReader(b.Data))
}
