package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/logger"
)

type SignInService interface {
	Start(s *session.Session, email, name string) (*PendingSignIn, bool)
}

type signInState int32

const (
	statePending signInState = iota
	stateResolved
	stateCancelled
)

// PendingSignIn is one simulated magic link in flight. It either resolves
// after the delay or is cancelled, never both.
type PendingSignIn struct {
	Email    domain.Email
	identity domain.Identity
	state    atomic.Int32
	cancel   context.CancelFunc
	done     chan struct{}
}

func (p *PendingSignIn) Cancel() bool {
	if !p.state.CompareAndSwap(int32(statePending), int32(stateCancelled)) {
		return false
	}
	p.cancel()
	signInsTotal.WithLabelValues("cancelled").Inc()
	return true
}

// Done is closed once the sign-in resolved or was cancelled.
func (p *PendingSignIn) Done() <-chan struct{} {
	return p.done
}

type MagicLink struct {
	ctx   context.Context
	delay time.Duration
}

// NewMagicLink simulates sending a link that is "clicked" after delay.
// Pending sign-ins are abandoned when ctx is done.
func NewMagicLink(ctx context.Context, delay time.Duration) SignInService {
	return &MagicLink{ctx: ctx, delay: delay}
}

// Start begins a sign-in for the session. A blank email does nothing and
// returns false. Starting again replaces any sign-in already in flight.
func (m *MagicLink) Start(s *session.Session, email, name string) (*PendingSignIn, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false
	}

	ctx, cancel := context.WithCancel(m.ctx)
	p := &PendingSignIn{
		Email:    email,
		identity: domain.NewIdentity(email, strings.TrimSpace(name)),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.BeginSignIn(p)
	signInsTotal.WithLabelValues("started").Inc()
	logger.Log.Info("magic link sent", "session_id", s.Id, "email", email)

	go m.wait(ctx, s, p)
	return p, true
}

func (m *MagicLink) wait(ctx context.Context, s *session.Session, p *PendingSignIn) {
	defer close(p.done)
	defer p.cancel()

	timer := time.NewTimer(m.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		if !p.state.CompareAndSwap(int32(statePending), int32(stateResolved)) {
			return
		}
		if s.CompleteSignIn(p, p.identity) {
			signInsTotal.WithLabelValues("resolved").Inc()
			logger.Log.Info("signed in", "session_id", s.Id, "email", p.identity.Email)
		}
	case <-ctx.Done():
	}
}
