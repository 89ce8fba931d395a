package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"stable-app-go/internal/config"
	"stable-app-go/internal/metrics"
	"stable-app-go/internal/transport/httpserver/handler"
	"stable-app-go/internal/transport/httpserver/middleware"
	"stable-app-go/pkg/logger"
)

// RouterDeps carries what the router mounts. AuthLimiter guards the public sign-in and sign-up
// routes; UserLimiter guards every authenticated route.
type RouterDeps struct {
	Handlers    *handler.Handlers
	Auth        *middleware.Auth
	AuthLimiter *middleware.RateLimiter
	UserLimiter *middleware.RateLimiter
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg config.Config, deps RouterDeps, log logger.Logger) http.Handler {
	handlers := deps.Handlers

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	if cfg.MetricsEnabled && deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthLimiter.Middleware)

			r.Post("/auth/sign-up", handlers.SignUp)
			r.Post("/auth/sign-in", handlers.SignIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)
			r.Use(deps.UserLimiter.Middleware)

			r.Post("/auth/sign-out", handlers.SignOut)
			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/users/me", handlers.GetMe)
			r.Patch("/users/me", handlers.UpdateMe)
			r.Put("/users/me/push-token", handlers.UpdatePushToken)

			r.Get("/stables", handlers.ListStables)
			r.Post("/stables", handlers.CreateStable)
			r.Get("/stables/me", handlers.GetStableMe)
			r.Get("/stables/me/members", handlers.ListStableMembers)
			r.Post("/stables/me/invitations", handlers.InviteMember)
			r.Get("/stables/me/horses", handlers.ListStableHorses)
			r.Get("/stables/me/events", handlers.ListEvents)
			r.Post("/stables/me/events", handlers.CreateEvent)
			r.Post("/stables/me/events/recurring", handlers.GenerateRecurringEvents)
			r.Get("/stables/me/calendar.ics", handlers.ExportCalendar)
			r.Get("/stables/me/announcements", handlers.ListAnnouncements)
			r.Post("/stables/me/announcements", handlers.PostAnnouncement)

			r.Get("/invitations/me", handlers.GetPendingInvitation)
			r.Post("/invitations/{id}/accept", handlers.AcceptInvitation)
			r.Post("/invitations/{id}/decline", handlers.DeclineInvitation)

			r.Get("/horses/me", handlers.ListMyHorses)
			r.Post("/horses", handlers.CreateHorse)
			r.Put("/horses/{id}", handlers.ReplaceHorse)

			r.Patch("/events/{id}", handlers.UpdateEvent)
			r.Delete("/events/{id}", handlers.DeleteEvent)
			r.Post("/events/{id}/signup", handlers.SignUpForEvent)
			r.Delete("/events/{id}/signup", handlers.ResignFromEvent)
		})
	})

	return r
}
