package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/aurum/internal/service"
	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/internal/storage/blob"
	"github.com/itchan-dev/aurum/shared/domain"
)

func assertRedirectHome(t *testing.T, code int, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, code)
	assert.Equal(t, "/", location)
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(createRequest(t, http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "# general")
	assert.Contains(t, body, "Welcome")
	assert.Contains(t, body, "Copy that!")
	// fresh sessions start at the login modal
	assert.Contains(t, body, `action="/login"`)
}

func TestComposePost(t *testing.T) {
	t.Run("appends to the active channel", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(formRequest("/compose", url.Values{"text": {"  hello  "}}))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		msgs := env.s.Store.ChannelMessages("general")
		require.Len(t, msgs, 3)
		assert.Equal(t, "hello", msgs[2].Content)
		assert.Equal(t, domain.GuestAuthor, msgs[2].Author)
	})

	t.Run("blank text changes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(formRequest("/compose", url.Values{"text": {"   "}}))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		assert.Len(t, env.s.Store.ChannelMessages("general"), 2)
	})

	t.Run("too long", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(formRequest("/compose", url.Values{"text": {strings.Repeat("a", testMaxLen+1)}}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Text is too long")
		assert.Len(t, env.s.Store.ChannelMessages("general"), 2)
	})

	t.Run("signed-in author in open dm", func(t *testing.T) {
		env := newTestEnv(t)
		signIn(env.s, "me@you")
		env.s.OpenDm("alice@you")

		rr := env.do(formRequest("/compose", url.Values{"text": {"hi alice"}}))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		thread := env.s.Store.DmThread("alice@you")
		require.Len(t, thread, 2)
		assert.Equal(t, "me@you", thread[1].Author)
		assert.Len(t, env.s.Store.ChannelMessages("general"), 2)
	})

	t.Run("armed reply", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(formRequest("/reply/2", nil))
		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))

		rr = env.do(formRequest("/compose", url.Values{"text": {"agreed"}}))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		msgs := env.s.Store.ChannelMessages("general")
		require.Len(t, msgs, 2)
		require.Len(t, msgs[1].Replies, 2)
		assert.Equal(t, "2-2", msgs[1].Replies[1].Id)
		assert.Nil(t, env.s.View().ReplyTarget)
	})
}

func TestUploadPost(t *testing.T) {
	t.Run("image goes inline", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(uploadRequest(t, "/upload", "dot.png", pngBytes(t)))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		msgs := env.s.Store.ChannelMessages("general")
		require.Len(t, msgs, 3)
		assert.Empty(t, msgs[2].Content)
		assert.True(t, strings.HasPrefix(msgs[2].Image, "/blob/"))

		b, err := env.blobs.Open(strings.TrimPrefix(msgs[2].Image, blob.PathPrefix))
		require.NoError(t, err)
		assert.Equal(t, "image/png", b.MimeType)
		assert.Equal(t, env.s.Id, b.Owner)
	})

	t.Run("other files keep their link as content", func(t *testing.T) {
		env := newTestEnv(t)
		env.s.OpenDm("bob@you")
		rr := env.do(uploadRequest(t, "/upload", "notes.txt", []byte("plain notes")))

		assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
		thread := env.s.Store.DmThread("bob@you")
		require.Len(t, thread, 1)
		assert.Equal(t, thread[0].Image, thread[0].Content)
	})

	t.Run("malformed multipart", func(t *testing.T) {
		env := newTestEnv(t)
		req := formRequest("/upload", url.Values{"text": {"x"}})
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

		rr := env.do(req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Len(t, env.s.Store.ChannelMessages("general"), 2)
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(t)
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("text", "x"))
		require.NoError(t, w.Close())
		req := createRequest(t, http.MethodPost, "/upload", body.Bytes())
		req.Header.Set("Content-Type", w.FormDataContentType())

		rr := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "No file selected")
	})

	t.Run("empty file", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(uploadRequest(t, "/upload", "empty.txt", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, env.blobs.Len())
	})
}

func TestNavigation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(formRequest("/dms/bob@you", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Equal(t, "bob@you", env.s.View().ActiveDm)
	// opening a dm doesn't create the thread
	assert.Empty(t, env.s.Store.DmThread("bob@you"))

	rr = env.do(formRequest("/channels/media", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	v := env.s.View()
	assert.Equal(t, "media", v.ActiveChannel)
	assert.False(t, v.IsDM())

	rr = env.do(formRequest("/dms/bob@you/send", url.Values{"text": {"yo"}}))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Len(t, env.s.Store.DmThread("bob@you"), 1)
	assert.Equal(t, "bob@you", env.s.View().ActiveDm)
}

func TestToggleTabPost(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(formRequest("/tabs/members", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Equal(t, session.TabMembers, env.s.View().LeftTab)

	rr = env.do(formRequest("/tabs/members", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Equal(t, session.TabNone, env.s.View().LeftTab)

	rr = env.do(formRequest("/tabs/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReplyPosts(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(formRequest("/reply/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(formRequest("/reply/1", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	require.NotNil(t, env.s.View().ReplyTarget)
	assert.Equal(t, domain.MsgId(1), *env.s.View().ReplyTarget)

	rr = env.do(formRequest("/reply/clear", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Nil(t, env.s.View().ReplyTarget)
}

func TestLoginPosts(t *testing.T) {
	env := newTestEnv(t)
	var gotEmail, gotName string
	env.signIn.StartFunc = func(s *session.Session, email, name string) (*service.PendingSignIn, bool) {
		gotEmail, gotName = email, name
		return &service.PendingSignIn{Email: email}, true
	}

	rr := env.do(formRequest("/login", url.Values{"email": {"x@y.com"}, "name": {"X"}}))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Equal(t, "x@y.com", gotEmail)
	assert.Equal(t, "X", gotName)

	rr = env.do(formRequest("/login/dismiss", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.False(t, env.s.View().ShowLogin)

	rr = env.do(formRequest("/login/open", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.True(t, env.s.View().ShowLogin)

	signIn(env.s, "x@y.com")
	require.NotNil(t, env.s.User())
	rr = env.do(formRequest("/logout", nil))
	assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
	assert.Nil(t, env.s.User())
	assert.True(t, env.s.View().ShowLogin)
}

func TestSettingsPost(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		action string
		check  func(v session.View) bool
	}{
		{"open", func(v session.View) bool { return v.ShowSettings }},
		{"notifications", func(v session.View) bool { return !v.Notifications }},
		{"compact", func(v session.View) bool { return v.Compact }},
		{"close", func(v session.View) bool { return !v.ShowSettings }},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			rr := env.do(formRequest("/settings/"+tt.action, nil))
			assertRedirectHome(t, rr.Code, rr.Header().Get("Location"))
			assert.True(t, tt.check(env.s.View()))
		})
	}

	rr := env.do(formRequest("/settings/explode", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
