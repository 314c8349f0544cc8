package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sessionmw "github.com/itchan-dev/aurum/internal/middleware"
	"github.com/itchan-dev/aurum/internal/setup"
	mw "github.com/itchan-dev/aurum/shared/middleware"
	"github.com/itchan-dev/aurum/shared/middleware/metrics"
	rl "github.com/itchan-dev/aurum/shared/middleware/ratelimiter"
)

// New creates the router with all routes.
// IMPORTANT! limiters set with .Use limit requests for all routes of that group combined
func New(deps *setup.Dependencies) *chi.Mux {
	public := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Session-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(mw.SecurityPolicy{HTTPS: public.SecureCookies, CSP: mw.PageCSP}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// one limiter per route group, shared by the page and the API
	signInLimit := mw.RateLimit(rl.NewUserRateLimiter(rl.PerMinute(public.SignInRatePerMinute), public.SignInBurst, time.Hour), mw.GetIP)

	r.Group(func(r chi.Router) {
		// every visitor gets a session, so cap how fast they can be made
		r.Use(mw.GlobalRateLimit(rl.NewUserRateLimiter(1000, 1000, time.Hour)))
		r.Use(deps.SessionAuth.Load())

		r.Get("/blob/{id}", h.ServeBlob)

		// Page routes: html forms carrying the session's csrf token
		r.Group(func(r chi.Router) {
			r.Use(sessionmw.ValidateCSRFToken(h.MaxRequestSize()))

			r.Get("/", h.Index)
			r.Post("/compose", h.ComposePost)
			r.Post("/upload", h.UploadPost)
			r.Post("/channels/{channel}", h.SelectChannelPost)
			r.Post("/dms/{peer}", h.OpenDmPost)
			r.Post("/dms/{peer}/send", h.SendDmPost)
			r.Post("/tabs/{tab}", h.ToggleTabPost)
			r.Post("/reply/clear", h.ClearReplyPost)
			r.Post("/reply/{message}", h.ArmReplyPost)
			r.With(signInLimit).Post("/login", h.LoginPost)
			r.Post("/login/open", h.OpenLoginPost)
			r.Post("/login/dismiss", h.DismissLoginPost)
			r.Post("/logout", h.LogoutPost)
			r.Post("/settings/{action}", h.SettingsPost)
		})

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))

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

			r.With(signInLimit).Post("/auth/magic_link", h.RequestMagicLink)
			r.Delete("/auth/magic_link", h.CancelMagicLink)
			r.With(sessionmw.NeedUser()).Get("/auth/me", h.Me)
			r.Post("/auth/logout", h.Logout)

			r.Get("/ws", h.Stream)
		})
	})

	return r
}
