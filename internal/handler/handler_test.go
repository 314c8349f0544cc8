package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	mw "github.com/itchan-dev/aurum/internal/middleware"
	"github.com/itchan-dev/aurum/internal/service"
	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/internal/storage/blob"
	"github.com/itchan-dev/aurum/internal/store"
	"github.com/itchan-dev/aurum/internal/view"
	"github.com/itchan-dev/aurum/shared/config"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/validation"
)

type MockSignInService struct {
	StartFunc func(s *session.Session, email, name string) (*service.PendingSignIn, bool)
}

func (m *MockSignInService) Start(s *session.Session, email, name string) (*service.PendingSignIn, bool) {
	if m.StartFunc != nil {
		return m.StartFunc(s, email, name)
	}
	return &service.PendingSignIn{Email: email}, true
}

type fakePending struct{}

func (fakePending) Cancel() bool { return true }

var testPublic = &config.Public{
	DefaultChannel: "general",
	Channels: []config.ChannelSeed{
		{Key: "general", Label: "# general", Messages: []domain.Message{
			{Id: 1, Author: "admin@you", Content: "Welcome"},
			{Id: 2, Author: "mod@you", Content: "Upload an image", Replies: []domain.Reply{{Id: "2-1", Author: "alice@you", Content: "Copy that!"}}},
		}},
		{Key: "media", Label: "# media"},
	},
	DmThreads: []config.DmThreadSeed{
		{Peer: "alice@you", Messages: []domain.Message{{Id: 1001, Author: "alice@you", Content: "Hey there!"}}},
	},
	Members: []domain.User{
		{Email: "alice@you", Name: "Alice", Presence: domain.PresenceOnline},
		{Email: "bob@you", Name: "Bob", Presence: domain.PresenceOffline},
	},
}

const (
	testMaxLen    = 50
	testMaxUpload = 1 << 20
)

type testEnv struct {
	h      *Handler
	s      *session.Session
	blobs  *blob.Storage
	signIn *MockSignInService
}

func newSession(id string) *session.Session {
	st := store.New(store.NewClockIds(nil))
	service.Seeder(testPublic)(st)
	return session.New(id, st, testPublic.DefaultChannel, time.Now())
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	renderer, err := view.NewRenderer(testMaxUpload)
	require.NoError(t, err)

	env := &testEnv{
		s:      newSession("sid"),
		blobs:  blob.New(testMaxUpload),
		signIn: &MockSignInService{},
	}
	env.h = New(
		service.NewChat(validation.NewMessageValidator(testMaxLen)),
		env.signIn,
		service.NewDirectory(testPublic),
		renderer,
		env.blobs,
		testMaxUpload,
		900*time.Millisecond,
	)
	return env
}

// router mounts every route with the env's session attached, skipping cookie and CSRF checks.
func (env *testEnv) router() *chi.Mux {
	h := env.h
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, mw.WithSession(r, env.s))
		})
	})

	r.Get("/", h.Index)
	r.Post("/compose", h.ComposePost)
	r.Post("/upload", h.UploadPost)
	r.Post("/channels/{channel}", h.SelectChannelPost)
	r.Post("/dms/{peer}", h.OpenDmPost)
	r.Post("/dms/{peer}/send", h.SendDmPost)
	r.Post("/tabs/{tab}", h.ToggleTabPost)
	r.Post("/reply/clear", h.ClearReplyPost)
	r.Post("/reply/{message}", h.ArmReplyPost)
	r.Post("/login", h.LoginPost)
	r.Post("/login/open", h.OpenLoginPost)
	r.Post("/login/dismiss", h.DismissLoginPost)
	r.Post("/logout", h.LogoutPost)
	r.Post("/settings/{action}", h.SettingsPost)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/channels", h.GetChannels)
		r.Get("/channels/{channel}/messages", h.GetChannelMessages)
		r.Post("/channels/{channel}/messages", h.CreateChannelMessage)
		r.Post("/channels/{channel}/uploads", h.CreateChannelUpload)
		r.Post("/channels/{channel}/messages/{message}/replies", h.CreateReply)
		r.Get("/dms", h.GetDms)
		r.Get("/dms/{peer}", h.GetDmThread)
		r.Post("/dms/{peer}/messages", h.CreateDmMessage)
		r.Post("/dms/{peer}/uploads", h.CreateDmUpload)
		r.Get("/members", h.GetMembers)
		r.Post("/auth/magic_link", h.RequestMagicLink)
		r.Delete("/auth/magic_link", h.CancelMagicLink)
		r.Get("/auth/me", h.Me)
		r.Post("/auth/logout", h.Logout)
		r.Get("/ws", h.Stream)
	})

	r.Get("/blob/{id}", h.ServeBlob)
	r.Get("/health", h.Health)
	return r
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router().ServeHTTP(rr, req)
	return rr
}

func createRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, target, bytes.NewBuffer(body))
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 212, G: 175, B: 55, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func signIn(s *session.Session, email string) {
	p := fakePending{}
	s.BeginSignIn(p)
	s.CompleteSignIn(p, domain.NewIdentity(email, ""))
}
