package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/aurum/internal/service"
	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/shared/api"
)

func TestRequestMagicLink(t *testing.T) {
	route := "/v1/auth/magic_link"

	t.Run("started", func(t *testing.T) {
		env := newTestEnv(t)
		env.signIn.StartFunc = func(s *session.Session, email, name string) (*service.PendingSignIn, bool) {
			assert.Equal(t, env.s, s)
			assert.Equal(t, " x@y.com ", email)
			assert.Equal(t, "X", name)
			return &service.PendingSignIn{Email: "x@y.com"}, true
		}

		rr := env.do(createRequest(t, http.MethodPost, route, []byte(`{"email":" x@y.com ","name":"X"}`)))

		require.Equal(t, http.StatusAccepted, rr.Code)
		resp := decode[api.MagicLinkResponse](t, rr.Body.Bytes())
		assert.Equal(t, "x@y.com", resp.Email)
		assert.Equal(t, int64(900), resp.DelayMs)
	})

	t.Run("blank email", func(t *testing.T) {
		env := newTestEnv(t)
		env.signIn.StartFunc = func(s *session.Session, email, name string) (*service.PendingSignIn, bool) {
			return nil, false
		}

		rr := env.do(createRequest(t, http.MethodPost, route, []byte(`{"email":"   "}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Email is required")
	})

	t.Run("missing email", func(t *testing.T) {
		env := newTestEnv(t)
		env.signIn.StartFunc = func(s *session.Session, email, name string) (*service.PendingSignIn, bool) {
			t.Fatal("sign-in must not start")
			return nil, false
		}

		rr := env.do(createRequest(t, http.MethodPost, route, []byte(`{"name":"X"}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCancelMagicLink(t *testing.T) {
	env := newTestEnv(t)
	p := &cancelCounter{}
	env.s.BeginSignIn(p)

	rr := env.do(createRequest(t, http.MethodDelete, "/v1/auth/magic_link", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, p.calls)
	assert.False(t, env.s.View().SignInSent)
	assert.False(t, env.s.View().ShowLogin)
}

type cancelCounter struct{ calls int }

func (c *cancelCounter) Cancel() bool {
	c.calls++
	return true
}

func TestMeAndLogout(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(createRequest(t, http.MethodGet, "/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	signIn(env.s, "alice@you")
	rr = env.do(createRequest(t, http.MethodGet, "/v1/auth/me", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[api.MeResponse](t, rr.Body.Bytes())
	assert.Equal(t, "alice@you", me.Email)
	assert.Equal(t, "alice", me.Name)

	rr = env.do(createRequest(t, http.MethodPost, "/v1/auth/logout", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Signed out")
	assert.Nil(t, env.s.User())
}
