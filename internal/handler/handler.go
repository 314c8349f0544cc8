package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	mw "github.com/itchan-dev/aurum/internal/middleware"
	"github.com/itchan-dev/aurum/internal/service"
	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/internal/storage/blob"
	"github.com/itchan-dev/aurum/internal/view"
	"github.com/itchan-dev/aurum/shared/api"
	"github.com/itchan-dev/aurum/shared/domain"
	internal_errors "github.com/itchan-dev/aurum/shared/errors"
	"github.com/itchan-dev/aurum/shared/validation"
)

// uploadField is the multipart field carrying the file on both the page and the API
const uploadField = "file"

type Handler struct {
	chat        service.ChatService
	signIn      service.SignInService
	directory   service.DirectoryService
	renderer    *view.Renderer
	blobs       *blob.Storage
	maxUpload   int64
	signInDelay time.Duration
}

func New(chat service.ChatService, signIn service.SignInService, directory service.DirectoryService, renderer *view.Renderer, blobs *blob.Storage, maxUpload int64, signInDelay time.Duration) *Handler {
	return &Handler{
		chat:        chat,
		signIn:      signIn,
		directory:   directory,
		renderer:    renderer,
		blobs:       blobs,
		maxUpload:   maxUpload,
		signInDelay: signInDelay,
	}
}

// MaxRequestSize is the body cap for upload forms: the file plus form framing.
func (h *Handler) MaxRequestSize() int64 {
	return validation.CalculateMaxRequestSize(h.maxUpload, 1<<20)
}

// mustSession returns the request's session. Routes are always mounted behind
// SessionAuth.Load, so a missing session is a wiring bug.
func mustSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s := mw.GetSession(r)
	if s == nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// saveUpload stores the file of an upload form under the session. The form may
// already be parsed by the CSRF middleware.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request, s *session.Session) (*blob.Blob, error) {
	if r.MultipartForm == nil {
		if err := validation.ValidateAndParseMultipart(r, w, h.MaxRequestSize()); err != nil {
			return nil, internal_errors.New(
				fmt.Sprintf("File exceeds the limit of %.0f MB", validation.FormatSizeMB(h.maxUpload)),
				http.StatusRequestEntityTooLarge,
			)
		}
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, internal_errors.BadRequest("No file selected")
		}
		return nil, internal_errors.BadRequest("Invalid upload")
	}
	defer file.Close()

	return h.blobs.Save(s.Id, header.Filename, header.Header.Get("Content-Type"), file)
}

func parseMessageId(param string) (domain.MsgId, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, internal_errors.BadRequest("Invalid message id: must be an integer")
	}
	return id, nil
}

func blobResponse(b *blob.Blob) api.BlobResponse {
	return api.BlobResponse{
		URL:      b.URI(),
		Name:     b.Name,
		MimeType: b.MimeType,
		Size:     b.Size,
		Width:    b.Width,
		Height:   b.Height,
	}
}
