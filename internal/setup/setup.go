package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/aurum/internal/handler"
	sessionmw "github.com/itchan-dev/aurum/internal/middleware"
	"github.com/itchan-dev/aurum/internal/service"
	"github.com/itchan-dev/aurum/internal/session"
	"github.com/itchan-dev/aurum/internal/storage/blob"
	"github.com/itchan-dev/aurum/internal/view"
	"github.com/itchan-dev/aurum/shared/config"
	jwt_internal "github.com/itchan-dev/aurum/shared/jwt"
	"github.com/itchan-dev/aurum/shared/logger"
	rl "github.com/itchan-dev/aurum/shared/middleware/ratelimiter"
	"github.com/itchan-dev/aurum/shared/validation"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config      *config.Config
	Sessions    *session.Manager
	Blobs       *blob.Storage
	SessionAuth *sessionmw.SessionAuth
	Handler     *handler.Handler
}

// SetupDependencies initializes all dependencies required for the application.
// Pending sign-ins are abandoned when ctx is done.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	public := &cfg.Public

	renderer, err := view.NewRenderer(public.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	blobs := blob.New(public.MaxUploadSize)
	sessions := session.NewManager(service.Seeder(public), public.DefaultChannel, public.SessionTTL, public.MaxSessions)
	// uploads live exactly as long as the session that made them
	sessions.OnExpire(func(s *session.Session) {
		if n := blobs.DeleteOwner(s.Id); n > 0 {
			logger.Log.Debug("dropped session uploads", "session_id", s.Id, "count", n)
		}
	})

	jwt := jwt_internal.New(cfg.JwtKey(), cfg.JwtTTL())
	// every cookie-less request would otherwise seed a fresh store
	starts := rl.NewUserRateLimiter(rl.PerMinute(public.SessionStartsPerMinute), public.SessionStartBurst, time.Hour)
	sessionAuth := sessionmw.NewSessionAuth(jwt, sessions, cfg.JwtTTL(), public.SecureCookies, starts)

	chat := service.NewChat(validation.NewMessageValidator(public.MessageTextMaxLen))
	signIn := service.NewMagicLink(ctx, public.SignInDelay)
	directory := service.NewDirectory(public)

	h := handler.New(chat, signIn, directory, renderer, blobs, public.MaxUploadSize, public.SignInDelay)

	return &Dependencies{
		Config:      cfg,
		Sessions:    sessions,
		Blobs:       blobs,
		SessionAuth: sessionAuth,
		Handler:     h,
	}, nil
}
